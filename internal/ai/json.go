package ai

import (
	"encoding/json"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/plaum/appointment-backend/internal/models"
)

var errNonJSON = errors.New("model returned non-JSON output")

var contractValidator = validator.New()

// recoverJSON returns the JSON document carried by a model response. Models
// in JSON mode occasionally wrap the document in prose or fences; when the
// raw text is not valid JSON, the slice between the outermost braces is
// tried before giving up.
func recoverJSON(text string) ([]byte, error) {
	trimmed := strings.TrimSpace(text)
	if json.Valid([]byte(trimmed)) {
		return []byte(trimmed), nil
	}
	first := strings.Index(trimmed, "{")
	last := strings.LastIndex(trimmed, "}")
	if first >= 0 && last > first {
		slice := trimmed[first : last+1]
		if json.Valid([]byte(slice)) {
			return []byte(slice), nil
		}
	}
	return nil, errNonJSON
}

// Wire contracts for model output. Nullable fields reject empty strings and
// confidences must land in [0,1]; anything else is a schema failure that
// triggers the fallback upstream.
type entitiesContract struct {
	Entities struct {
		DatePhrase *string `json:"date_phrase" validate:"omitempty,min=1"`
		TimePhrase *string `json:"time_phrase" validate:"omitempty,min=1"`
		Department *string `json:"department" validate:"omitempty,min=1"`
	} `json:"entities"`
	Confidence *float64 `json:"entities_confidence" validate:"required,min=0,max=1"`
}

type normalizationContract struct {
	Normalized struct {
		Date *string `json:"date" validate:"omitempty,min=1"`
		Time *string `json:"time" validate:"omitempty,min=1"`
		TZ   *string `json:"tz" validate:"omitempty,min=1"`
	} `json:"normalized"`
	Confidence *float64 `json:"normalization_confidence" validate:"required,min=0,max=1"`
}

func decodeEntities(raw []byte) (models.EntityExtraction, error) {
	var c entitiesContract
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.EntityExtraction{}, err
	}
	if err := contractValidator.Struct(c); err != nil {
		return models.EntityExtraction{}, err
	}
	return models.EntityExtraction{
		Entities: models.Entities{
			DatePhrase: c.Entities.DatePhrase,
			TimePhrase: c.Entities.TimePhrase,
			Department: c.Entities.Department,
		},
		Confidence: *c.Confidence,
	}, nil
}

func decodeNormalization(raw []byte) (models.Normalization, error) {
	var c normalizationContract
	if err := json.Unmarshal(raw, &c); err != nil {
		return models.Normalization{}, err
	}
	if err := contractValidator.Struct(c); err != nil {
		return models.Normalization{}, err
	}
	return models.Normalization{
		Normalized: models.Normalized{
			Date: c.Normalized.Date,
			Time: c.Normalized.Time,
			TZ:   c.Normalized.TZ,
		},
		Confidence: *c.Confidence,
	}, nil
}
