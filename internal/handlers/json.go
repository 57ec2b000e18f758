package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/adapters/evolution"
	"github.com/RelaxSolucoes/wp-ai-agent-n8n/internal/services"
)

// envelope mirrors the wp_send_json_success / wp_send_json_error shape the
// admin frontend already consumes.
type envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func respondJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		log.Error().Err(err).Msg("Failed to encode JSON response")
	}
}

func respondSuccess(w http.ResponseWriter, statusCode int, data interface{}) {
	respondJSON(w, statusCode, envelope{Success: true, Data: data})
}

func respondError(w http.ResponseWriter, err error) {
	respondJSON(w, statusForError(err), envelope{Success: false, Error: err.Error()})
}

// statusForError maps the service error kinds onto HTTP statuses. Gateway
// failures keep their full text in the envelope; nothing is collapsed into
// a generic message.
func statusForError(err error) int {
	var validation *services.ValidationError
	var notFound *services.NotFoundError
	var protocol *evolution.ProtocolError
	var transport *evolution.TransportError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrRefreshInFlight):
		return http.StatusTooManyRequests
	case errors.As(err, &protocol), errors.As(err, &transport):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decodeBody(r *http.Request, dst interface{}) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &services.ValidationError{Field: "body", Reason: "malformed JSON request body"}
	}
	return nil
}
