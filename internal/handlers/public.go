package handlers

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/services"
)

// PublicHandler is the visitor-facing surface: the chat widget proxy, the
// contact form and WhatsApp number validation.
type PublicHandler struct {
	messenger *services.Messenger
	validator *services.Validator
}

// NewPublicHandler creates a new PublicHandler.
func NewPublicHandler(messenger *services.Messenger, validator *services.Validator) (*PublicHandler, error) {
	if messenger == nil {
		return nil, fmt.Errorf("messenger cannot be nil")
	}
	if validator == nil {
		return nil, fmt.Errorf("validator cannot be nil")
	}
	return &PublicHandler{messenger: messenger, validator: validator}, nil
}

// Register attaches the public routes to the router.
func (h *PublicHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/chat/message", h.SendChatMessage).Methods(http.MethodPost)
	r.HandleFunc("/api/form/submit", h.SubmitForm).Methods(http.MethodPost)
	r.HandleFunc("/api/whatsapp/validate", h.ValidateWhatsapp).Methods(http.MethodPost)
}

// SendChatMessage relays one chat turn to the N8N workflow.
func (h *PublicHandler) SendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Message   string `json:"message"`
		SessionID string `json:"session_id"`
		PageURL   string `json:"page_url"`
		PageTitle string `json:"page_title"`
		UserAgent string `json:"user_agent"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.messenger.SendChatMessage(r.Context(), services.ChatMessage{
		Message:   req.Message,
		SessionID: req.SessionID,
		PageURL:   req.PageURL,
		PageTitle: req.PageTitle,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, result)
}

// SubmitForm relays one contact-form submission to the N8N workflow.
func (h *PublicHandler) SubmitForm(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Nome      string `json:"nome"`
		Email     string `json:"email"`
		Whatsapp  string `json:"whatsapp"`
		Mensagem  string `json:"mensagem"`
		PageURL   string `json:"page_url"`
		PageTitle string `json:"page_title"`
		UserAgent string `json:"user_agent"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	result, err := h.messenger.SendFormSubmission(r.Context(), services.FormRequest{
		Name:      req.Nome,
		Email:     req.Email,
		Whatsapp:  req.Whatsapp,
		Message:   req.Mensagem,
		PageURL:   req.PageURL,
		PageTitle: req.PageTitle,
		UserAgent: req.UserAgent,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, result)
}

// ValidateWhatsapp normalizes a typed phone number and checks it against
// the gateway's WhatsApp registry.
func (h *PublicHandler) ValidateWhatsapp(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Whatsapp string `json:"whatsapp"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	check, err := h.validator.Validate(r.Context(), req.Whatsapp)
	if err != nil {
		respondError(w, err)
		return
	}

	if !check.Exists {
		respondJSON(w, http.StatusOK, envelope{Success: false, Error: "Esse número não é WhatsApp, digite um número válido."})
		return
	}

	respondSuccess(w, http.StatusOK, check)
}
