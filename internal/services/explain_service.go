package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/xplainit/xplainit-be/internal/generator"
	"github.com/xplainit/xplainit-be/internal/models"
	"github.com/xplainit/xplainit-be/internal/storage"
)

var (
	// ErrEmptyTopic rejects explain requests whose topic is empty after
	// trimming.
	ErrEmptyTopic = errors.New("topic must not be empty")
	// ErrGenerationFailed means the generator call itself failed; nothing
	// was persisted.
	ErrGenerationFailed = errors.New("explanation generation failed")
)

// HistoryLimit caps how many explanations a history call returns.
const HistoryLimit = 20

// Defaults applied when a request omits a preference.
const (
	DefaultLevel    = "Beginner"
	DefaultTone     = "Casual"
	DefaultLanguage = "English"
)

// ExplainRequest is one explain call's input, before defaults.
type ExplainRequest struct {
	Topic    string
	Level    string
	Tone     string
	Language string
	Extras   string
}

// ExplainServiceProvider defines the interface for explanation services.
type ExplainServiceProvider interface {
	Explain(ctx context.Context, user models.User, req ExplainRequest) (models.Explanation, error)
	History(ctx context.Context, user models.User) ([]models.Explanation, error)
}

// ExplainService composes the generator collaborator and the explanation
// ledger. The caller is resolved before any of this runs.
type ExplainService struct {
	store   storage.Store
	gen     generator.Generator
	timeout time.Duration
}

// NewExplainService creates a new ExplainService. The timeout bounds each
// generator call.
func NewExplainService(store storage.Store, gen generator.Generator, timeout time.Duration) *ExplainService {
	return &ExplainService{store: store, gen: gen, timeout: timeout}
}

// Explain generates an explanation for the topic and persists it. A
// generator transport failure or timeout aborts the whole operation with
// ErrGenerationFailed and writes nothing; error prose the provider
// returns as its text is stored like any other result.
func (s *ExplainService) Explain(ctx context.Context, user models.User, req ExplainRequest) (models.Explanation, error) {
	topic := strings.TrimSpace(req.Topic)
	if topic == "" {
		return models.Explanation{}, ErrEmptyTopic
	}

	settings := models.ExplanationSettings{
		Level:    req.Level,
		Tone:     req.Tone,
		Language: req.Language,
		Extras:   req.Extras,
	}
	if settings.Level == "" {
		settings.Level = DefaultLevel
	}
	if settings.Tone == "" {
		settings.Tone = DefaultTone
	}
	if settings.Language == "" {
		settings.Language = DefaultLanguage
	}

	genCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	text, err := s.gen.Generate(genCtx, generator.Request{
		Topic:    topic,
		Level:    settings.Level,
		Tone:     settings.Tone,
		Language: settings.Language,
		Extras:   settings.Extras,
	})
	if err != nil {
		log.Error().Err(err).Str("user_id", user.ID).Str("topic", topic).Msg("Generator call failed")
		return models.Explanation{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}

	exp := models.Explanation{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		Topic:     topic,
		Text:      text,
		Settings:  settings,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.store.CreateExplanation(ctx, &exp); err != nil {
		return models.Explanation{}, fmt.Errorf("persist explanation: %w", err)
	}
	return exp, nil
}

// History returns the caller's most recent explanations, newest first.
func (s *ExplainService) History(ctx context.Context, user models.User) ([]models.Explanation, error) {
	return s.store.ListExplanationsByUser(ctx, user.ID, HistoryLimit)
}
