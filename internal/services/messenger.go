package services

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/n8n"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/models"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/phone"
)

// Relay posts payloads to the configured N8N webhook.
type Relay interface {
	Send(ctx context.Context, url string, payload n8n.Message) (*n8n.Reply, error)
}

// Settings is the slice of the options store the messenger reads.
type Settings interface {
	N8NWebhookURL() string
	EvolutionConfig() (serverURL, apiKey, instance string, ok bool)
	SiteURL() string
}

// SubmissionLog persists form submissions for auditing.
type SubmissionLog interface {
	RecordFormSubmission(sub *models.FormSubmission) error
}

// ChatMessage is one chat-widget turn.
type ChatMessage struct {
	Message   string
	SessionID string
	PageURL   string
	PageTitle string
	UserAgent string
}

// ChatResult is the reply surfaced to the widget.
type ChatResult struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id"`
}

// FormRequest is one contact-form submission.
type FormRequest struct {
	Name      string
	Email     string
	Whatsapp  string
	Message   string
	PageURL   string
	PageTitle string
	UserAgent string
}

// FormResult reports where the workflow's answer will arrive.
type FormResult struct {
	Message          string `json:"message"`
	WhatsappResponse bool   `json:"whatsapp_response"`
	SessionID        string `json:"session_id"`
}

// Messenger builds the N8N workflow payloads for the chat widget and the
// contact form and relays them to the configured webhook. It does not
// deliver messages itself; the workflow owns delivery.
type Messenger struct {
	relay    Relay
	settings Settings
	audit    SubmissionLog
}

// NewMessenger creates a new Messenger.
func NewMessenger(relay Relay, settings Settings, audit SubmissionLog) (*Messenger, error) {
	if relay == nil {
		return nil, fmt.Errorf("relay cannot be nil")
	}
	if settings == nil {
		return nil, fmt.Errorf("settings cannot be nil")
	}
	if audit == nil {
		return nil, fmt.Errorf("submission log cannot be nil")
	}
	return &Messenger{relay: relay, settings: settings, audit: audit}, nil
}

// SendChatMessage relays one chat-widget turn to the workflow and returns
// its textual reply, or a stock acknowledgement when the workflow answers
// elsewhere.
func (m *Messenger) SendChatMessage(ctx context.Context, msg ChatMessage) (*ChatResult, error) {
	if strings.TrimSpace(msg.Message) == "" {
		return nil, &ValidationError{Field: "message", Reason: "cannot be empty"}
	}

	webhook := m.settings.N8NWebhookURL()
	if webhook == "" {
		return nil, &ValidationError{Field: "webhook", Reason: "N8N webhook is not configured"}
	}

	sessionID := msg.SessionID
	if sessionID == "" {
		sessionID = fmt.Sprintf("web_%d_%s", time.Now().Unix(), uuid.NewString())
	}

	payload := n8n.Message{
		ChatInput:  msg.Message,
		SessionID:  sessionID,
		Source:     "n8n_chat_widget",
		SourceType: "chat_widget",
		Channel:    "chat_widget",
		PageURL:    msg.PageURL,
		PageTitle:  msg.PageTitle,
		UserAgent:  msg.UserAgent,
		Timestamp:  time.Now().Format(time.RFC3339),
		UserInfo:   &n8n.UserInfo{Assunto: "Chat Widget"},
		ResponseConfig: &n8n.ResponseConfig{
			ShouldRespond:  true,
			ResponseTarget: "chat_widget",
		},
		Metadata: &n8n.Metadata{
			WordPress: true,
			SiteURL:   m.settings.SiteURL(),
			AjaxProxy: true,
		},
		Provider: m.provider(),
	}

	reply, err := m.relay.Send(ctx, webhook, payload)
	if err != nil {
		return nil, err
	}

	output := reply.Output
	if output == "" {
		output = "Mensagem recebida! Em breve entraremos em contato."
	}

	return &ChatResult{Message: output, SessionID: sessionID}, nil
}

// SendFormSubmission relays one contact-form submission. The visitor's
// WhatsApp number becomes the session key, so the workflow can answer over
// WhatsApp; a fallback session id covers flows that answer in the form.
func (m *Messenger) SendFormSubmission(ctx context.Context, req FormRequest) (*FormResult, error) {
	if err := validateFormRequest(req); err != nil {
		return nil, err
	}

	webhook := m.settings.N8NWebhookURL()
	if webhook == "" {
		return nil, &ValidationError{Field: "webhook", Reason: "N8N webhook is not configured"}
	}

	canonical, err := phone.Normalize(req.Whatsapp)
	if err != nil {
		return nil, &ValidationError{Field: "whatsapp", Reason: "not a recognizable Brazilian phone number"}
	}
	identity := phone.Identity(canonical)
	fallbackSession := fmt.Sprintf("form_%d_%s", time.Now().Unix(), uuid.NewString())

	fromMe := false
	payload := n8n.Message{
		ChatInput:  formatFormMessage(req),
		Action:     "sendMessage",
		SessionID:  identity,
		RemoteJID:  identity,
		Source:     "web_form",
		SourceType: "formulario_site",
		Channel:    "web_form",
		PushName:   req.Name,
		FromMe:     &fromMe,
		UserInfo: &n8n.UserInfo{
			Nome:     &req.Name,
			Email:    &req.Email,
			Whatsapp: &req.Whatsapp,
			Telefone: &req.Whatsapp,
		},
		ResponseConfig: &n8n.ResponseConfig{
			ShouldRespond:     true,
			ResponseTarget:    "whatsapp",
			FormSessionID:     fallbackSession,
			WhatsappSessionID: identity,
		},
		Metadata: &n8n.Metadata{
			PageURL:        req.PageURL,
			PageTitle:      req.PageTitle,
			UserAgent:      req.UserAgent,
			Timestamp:      time.Now().Format(time.RFC3339),
			PhoneFormatted: identity,
			WordPress:      true,
			SiteURL:        m.settings.SiteURL(),
			AjaxProxy:      true,
		},
		Provider: m.provider(),
	}

	sub := &models.FormSubmission{
		Name:      req.Name,
		Email:     req.Email,
		Whatsapp:  canonical,
		SessionID: identity,
		Status:    models.SubmissionStatusSent,
	}

	_, err = m.relay.Send(ctx, webhook, payload)
	if err != nil {
		sub.Status = models.SubmissionStatusFailed
		sub.Error = err.Error()
		if logErr := m.audit.RecordFormSubmission(sub); logErr != nil {
			log.Error().Err(logErr).Msg("Failed to record form submission")
		}
		return nil, err
	}

	if logErr := m.audit.RecordFormSubmission(sub); logErr != nil {
		log.Error().Err(logErr).Msg("Failed to record form submission")
	}

	result := &FormResult{
		Message:          fmt.Sprintf("Mensagem enviada com sucesso! A resposta será enviada para seu WhatsApp: %s", req.Whatsapp),
		WhatsappResponse: true,
		SessionID:        identity,
	}
	log.Info().Str("sessionId", identity).Msg("Form submission relayed to N8N")
	return result, nil
}

// provider builds the Evolution connection block, or nil when the gateway
// is not fully configured. The block never reaches the frontend.
func (m *Messenger) provider() *n8n.Provider {
	serverURL, apiKey, instance, ok := m.settings.EvolutionConfig()
	if !ok {
		return nil
	}
	return &n8n.Provider{
		InstanceName: instance,
		ServerURL:    strings.TrimRight(serverURL, "/"),
		APIKey:       apiKey,
	}
}

func validateFormRequest(req FormRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return &ValidationError{Field: "nome", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Email) == "" {
		return &ValidationError{Field: "email", Reason: "cannot be empty"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return &ValidationError{Field: "email", Reason: "not a valid e-mail address"}
	}
	if strings.TrimSpace(req.Whatsapp) == "" {
		return &ValidationError{Field: "whatsapp", Reason: "cannot be empty"}
	}
	if strings.TrimSpace(req.Message) == "" {
		return &ValidationError{Field: "mensagem", Reason: "cannot be empty"}
	}
	return nil
}

// formatFormMessage renders the submission as the chat message the
// workflow's agent reads.
func formatFormMessage(req FormRequest) string {
	var b strings.Builder
	b.WriteString("**Nova solicitação via formulário:**\n\n")
	b.WriteString("**Nome:** " + req.Name + "\n")
	b.WriteString("**E-mail:** " + req.Email + "\n")
	if req.Whatsapp != "" {
		b.WriteString("**WhatsApp:** " + req.Whatsapp + "\n")
	}
	b.WriteString("**Mensagem:**\n" + req.Message + "\n\n")
	pageURL := req.PageURL
	if pageURL == "" {
		pageURL = "Não informado"
	}
	b.WriteString("**Página:** " + pageURL + "\n")
	b.WriteString("**Data:** " + time.Now().Format("02/01/2006 15:04:05"))
	return b.String()
}
