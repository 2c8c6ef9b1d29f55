package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/xplainit/xplainit-be/internal/models"
	"github.com/xplainit/xplainit-be/internal/services"
)

// ExplainHandler handles HTTP requests for explanation generation and
// history.
type ExplainHandler struct {
	service services.ExplainServiceProvider
}

// NewExplainHandler creates a new ExplainHandler.
func NewExplainHandler(service services.ExplainServiceProvider) *ExplainHandler {
	return &ExplainHandler{service: service}
}

// ExplainPayload defines the structure for explain requests. Omitted
// preferences fall back to service-side defaults.
type ExplainPayload struct {
	Topic    string `json:"topic"`
	Level    string `json:"level"`
	Tone     string `json:"tone"`
	Language string `json:"language"`
	Extras   string `json:"extras"`
}

// Explain generates an explanation for the authenticated caller.
func (h *ExplainHandler) Explain(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	var payload ExplainPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	exp, err := h.service.Explain(r.Context(), user, services.ExplainRequest{
		Topic:    payload.Topic,
		Level:    payload.Level,
		Tone:     payload.Tone,
		Language: payload.Language,
		Extras:   payload.Extras,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyTopic):
			http.Error(w, "Topic must not be empty", http.StatusBadRequest)
		case errors.Is(err, services.ErrGenerationFailed):
			http.Error(w, "Explanation generation failed", http.StatusBadGateway)
		default:
			log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to create explanation")
			http.Error(w, "Failed to create explanation", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(exp)
}

// History returns the caller's most recent explanations, newest first.
func (h *ExplainHandler) History(w http.ResponseWriter, r *http.Request) {
	user, ok := UserFromContext(r.Context())
	if !ok {
		http.Error(w, "Could not retrieve user from token", http.StatusInternalServerError)
		return
	}

	exps, err := h.service.History(r.Context(), user)
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Msg("Failed to retrieve history")
		http.Error(w, "Failed to retrieve history", http.StatusInternalServerError)
		return
	}
	if exps == nil {
		exps = []models.Explanation{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"explanations": exps,
		"total_count":  len(exps),
	})
}
