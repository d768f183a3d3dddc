package ai

import (
	"context"
	"errors"

	"github.com/plaum/appointment-backend/internal/models"
)

// ErrMissingAPIKey is a configuration error, not a stage failure: the
// pipeline surfaces it to the caller instead of falling back.
var ErrMissingAPIKey = errors.New("GEMINI_API_KEY is not set")

type ExtractRequest struct {
	RawText       string
	ReferenceDate string
	Timezone      string
}

type NormalizeRequest struct {
	Entities      models.Entities
	ReferenceDate string
	Timezone      string
}

// Adapter is the generative-AI backend behind stages 2 and 3. Any error from
// either call (transport, schema, credentials) leaves the returned value
// unusable; the pipeline decides whether to fall back or abort.
type Adapter interface {
	ExtractEntities(ctx context.Context, req ExtractRequest) (models.EntityExtraction, error)
	Normalize(ctx context.Context, req NormalizeRequest) (models.Normalization, error)
}

// Disabled is wired when no API key is configured. Every call fails with
// ErrMissingAPIKey so the pipeline reports a configuration error.
type Disabled struct{}

func (Disabled) ExtractEntities(context.Context, ExtractRequest) (models.EntityExtraction, error) {
	return models.EntityExtraction{}, ErrMissingAPIKey
}

func (Disabled) Normalize(context.Context, NormalizeRequest) (models.Normalization, error) {
	return models.Normalization{}, ErrMissingAPIKey
}
