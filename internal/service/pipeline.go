package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/plaum/appointment-backend/internal/ai"
	"github.com/plaum/appointment-backend/internal/models"
	"github.com/plaum/appointment-backend/internal/ocr"
)

// ErrMissingInput terminates a request before any stage runs.
var ErrMissingInput = errors.New("no text or image input provided")

// TextInputConfidence is the fixed stage 1 confidence for plain-text input,
// where no uncertainty was introduced by extraction.
const TextInputConfidence = 0.9

const clarificationMessage = "Ambiguous date/time or department"

// Input carries one appointment request. Image takes precedence when both
// fields are set.
type Input struct {
	Text  string
	Image []byte
}

// Pipeline runs the four stages: text extraction, entity extraction,
// date/time normalization, and assembly. The AI-backed stages degrade to the
// rule-based fallbacks on failure; that substitution is invisible to the
// caller. A nil Now means time.Now.
type Pipeline struct {
	OCR      *ocr.Service
	AI       ai.Adapter
	Logger   zerolog.Logger
	Location *time.Location
	Now      func() time.Time
}

// Process turns a raw request into a PipelineResult. The returned error is a
// request error (missing input, undecodable image, missing AI credentials);
// clarification outcomes are not errors and come back in the result status.
func (p *Pipeline) Process(ctx context.Context, in Input) (models.PipelineResult, error) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	referenceDate := now().In(p.Location).Format("2006-01-02")
	tz := p.Location.String()

	// Stage 1: extraction.
	var step1 models.ExtractionResult
	switch {
	case len(in.Image) > 0:
		extracted, err := p.OCR.ExtractText(ctx, in.Image)
		if err != nil {
			return models.PipelineResult{}, err
		}
		step1 = extracted
	case strings.TrimSpace(in.Text) != "":
		step1 = models.ExtractionResult{RawText: in.Text, Confidence: TextInputConfidence}
	default:
		return models.PipelineResult{}, ErrMissingInput
	}

	// Stage 2: entity extraction, falling back on failure.
	step2, err := p.AI.ExtractEntities(ctx, ai.ExtractRequest{
		RawText:       step1.RawText,
		ReferenceDate: referenceDate,
		Timezone:      tz,
	})
	if err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			return models.PipelineResult{}, err
		}
		p.Logger.Warn().Err(err).Msg("entity extraction failed, using fallback")
		step2 = FallbackExtractEntities(step1.RawText)
	}

	result := models.PipelineResult{Step1: &step1, Step2: &step2}

	// Completeness gate: all three entities are required to continue.
	if step2.Entities.DatePhrase == nil || step2.Entities.TimePhrase == nil || step2.Entities.Department == nil {
		result.Status = models.StatusNeedsClarification
		result.Message = clarificationMessage
		return result, nil
	}

	// Stage 3: normalization, falling back on failure.
	step3, err := p.AI.Normalize(ctx, ai.NormalizeRequest{
		Entities:      step2.Entities,
		ReferenceDate: referenceDate,
		Timezone:      tz,
	})
	if err != nil {
		if errors.Is(err, ai.ErrMissingAPIKey) {
			return models.PipelineResult{}, err
		}
		p.Logger.Warn().Err(err).Msg("normalization failed, using fallback")
		step3 = FallbackNormalize(step2.Entities, referenceDate, p.Location)
	}
	result.Step3 = &step3

	// Validity gate: step3 stays in the response for diagnostic visibility
	// even when the gate fails.
	if !normalizedValid(step3.Normalized, tz) {
		result.Status = models.StatusNeedsClarification
		result.Message = clarificationMessage
		return result, nil
	}

	// Stage 4: assembly.
	result.Step4 = &models.Booking{
		Appointment: models.Appointment{
			Department: MapDepartment(*step2.Entities.Department),
			Date:       *step3.Normalized.Date,
			Time:       *step3.Normalized.Time,
			TZ:         tz,
		},
		Status: models.StatusOK,
	}
	result.Status = models.StatusOK
	return result, nil
}

func normalizedValid(n models.Normalized, tz string) bool {
	return n.Date != nil && IsValidISODate(*n.Date) &&
		n.Time != nil && IsValidTimeHHMM(*n.Time) &&
		n.TZ != nil && *n.TZ == tz
}
