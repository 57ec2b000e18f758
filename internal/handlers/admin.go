package handlers

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/services"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/store"
)

// WebhookTester posts a synthetic payload to a target URL and reports
// reachability only.
type WebhookTester interface {
	TestWebhook(ctx context.Context, url string) error
}

// AdminHandler is the integration-management surface, the service's
// replacement for the plugin's admin AJAX actions. Authentication happens
// upstream; requests reaching these handlers are trusted.
type AdminHandler struct {
	reconciler *services.Reconciler
	store      *store.Store
	tester     WebhookTester
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(reconciler *services.Reconciler, st *store.Store, tester WebhookTester) (*AdminHandler, error) {
	if reconciler == nil {
		return nil, fmt.Errorf("reconciler cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if tester == nil {
		return nil, fmt.Errorf("webhook tester cannot be nil")
	}
	return &AdminHandler{reconciler: reconciler, store: st, tester: tester}, nil
}

// Register attaches the admin routes to the router.
func (h *AdminHandler) Register(r *mux.Router) {
	r.HandleFunc("/api/integrations", h.GetIntegrations).Methods(http.MethodGet)
	r.HandleFunc("/api/integrations", h.CreateIntegration).Methods(http.MethodPost)
	r.HandleFunc("/api/integrations/{id}/toggle", h.ToggleIntegration).Methods(http.MethodPost)
	r.HandleFunc("/api/integrations/{id}/webhook", h.RepairWebhook).Methods(http.MethodPut)
	r.HandleFunc("/api/webhook", h.GetWebhook).Methods(http.MethodGet)
	r.HandleFunc("/api/webhook/test", h.TestWebhook).Methods(http.MethodPost)
}

// GetIntegrations refreshes the remote record set and returns the
// classified snapshot with its summary.
func (h *AdminHandler) GetIntegrations(w http.ResponseWriter, r *http.Request) {
	snap, err := h.reconciler.Refresh(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, snap)
}

// CreateIntegration creates a new record on the gateway. The webhook URL
// defaults to the plugin's configured one when the request omits it.
func (h *AdminHandler) CreateIntegration(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WebhookURL  string `json:"webhook_url"`
		Description string `json:"description"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if req.WebhookURL == "" {
		req.WebhookURL = h.store.N8NWebhookURL()
	}

	created, err := h.reconciler.Create(r.Context(), req.WebhookURL, req.Description)
	if err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusCreated, map[string]interface{}{
		"message":     "Integração N8N criada com sucesso!",
		"integration": created,
	})
}

// ToggleIntegration enables or disables one record.
func (h *AdminHandler) ToggleIntegration(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		Enabled bool `json:"enabled"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.reconciler.Toggle(r.Context(), id, req.Enabled); err != nil {
		respondError(w, err)
		return
	}

	status := "desativada"
	if req.Enabled {
		status = "ativada"
	}
	respondSuccess(w, http.StatusOK, fmt.Sprintf("Integração %s com sucesso!", status))
}

// RepairWebhook rewrites one record's webhook URL.
func (h *AdminHandler) RepairWebhook(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]

	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}

	if err := h.reconciler.RepairWebhook(r.Context(), id, req.WebhookURL); err != nil {
		respondError(w, err)
		return
	}

	respondSuccess(w, http.StatusOK, "Webhook atualizado com sucesso!")
}

// GetWebhook returns the locally configured webhook URL.
func (h *AdminHandler) GetWebhook(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, http.StatusOK, map[string]string{"webhook": h.store.N8NWebhookURL()})
}

// TestWebhook checks that a webhook URL is reachable.
func (h *AdminHandler) TestWebhook(w http.ResponseWriter, r *http.Request) {
	var req struct {
		WebhookURL string `json:"webhook_url"`
	}
	if err := decodeBody(r, &req); err != nil {
		respondError(w, err)
		return
	}
	if req.WebhookURL == "" {
		respondError(w, &services.ValidationError{Field: "webhook_url", Reason: "cannot be empty"})
		return
	}

	if err := h.tester.TestWebhook(r.Context(), req.WebhookURL); err != nil {
		log.Error().Err(err).Str("url", req.WebhookURL).Msg("Webhook test failed")
		respondJSON(w, http.StatusBadGateway, envelope{Success: false, Error: err.Error()})
		return
	}

	respondSuccess(w, http.StatusOK, "Webhook testado com sucesso!")
}
