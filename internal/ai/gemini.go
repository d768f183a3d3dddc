package ai

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/plaum/appointment-backend/internal/models"
)

const (
	defaultModel = "gemini-2.0-flash"

	extractSystem   = "You extract appointment entities from user text. Return only valid JSON."
	normalizeSystem = "You normalize appointment date/time phrases. Return only valid JSON."
)

// Gemini talks to the Gemini API in JSON mode and validates the response
// against the stage contracts.
type Gemini struct {
	APIKey string
	Model  string
}

type entityPrompt struct {
	Task           string          `json:"task"`
	CurrentDate    string          `json:"current_date"`
	Timezone       string          `json:"timezone"`
	RawText        string          `json:"raw_text"`
	OutputContract json.RawMessage `json:"output_contract"`
	Rules          []string        `json:"rules"`
	Examples       json.RawMessage `json:"examples"`
}

type normalizePrompt struct {
	Task           string          `json:"task"`
	CurrentDate    string          `json:"current_date"`
	Timezone       string          `json:"timezone"`
	Entities       models.Entities `json:"entities"`
	OutputContract json.RawMessage `json:"output_contract"`
	Rules          []string        `json:"rules"`
	Examples       json.RawMessage `json:"examples"`
}

var entityOutputContract = json.RawMessage(`{
  "entities": {
    "date_phrase": "string or null",
    "time_phrase": "string or null",
    "department": "string or null"
  },
  "entities_confidence": "number 0..1"
}`)

var entityExamples = json.RawMessage(`[
  {
    "input": "Book dentist next Friday at 3pm",
    "output": {
      "entities": {
        "date_phrase": "next Friday",
        "time_phrase": "3pm",
        "department": "dentist"
      },
      "entities_confidence": 0.85
    }
  }
]`)

var normalizeOutputContract = json.RawMessage(`{
  "normalized": {
    "date": "YYYY-MM-DD or null",
    "time": "HH:mm 24h or null",
    "tz": "fixed operating timezone"
  },
  "normalization_confidence": "number 0..1"
}`)

var normalizeExamples = json.RawMessage(`[
  {
    "current_date": "2025-09-20",
    "entities": {
      "date_phrase": "next Friday",
      "time_phrase": "3pm",
      "department": "dentist"
    },
    "output": {
      "normalized": {"date": "2025-09-26", "time": "15:00", "tz": "Asia/Kolkata"},
      "normalization_confidence": 0.9
    }
  }
]`)

func (g Gemini) ExtractEntities(ctx context.Context, req ExtractRequest) (models.EntityExtraction, error) {
	prompt := entityPrompt{
		Task:           "extract_entities",
		CurrentDate:    req.ReferenceDate,
		Timezone:       req.Timezone,
		RawText:        req.RawText,
		OutputContract: entityOutputContract,
		Rules: []string{
			"Use the raw_text only.",
			"If missing or unclear, output null for that field.",
			"Department should be a short noun like dentist, cardiology, dermatologist.",
			"Confidence reflects how complete and unambiguous the extraction is.",
		},
		Examples: entityExamples,
	}
	raw, err := g.generateJSON(ctx, extractSystem, prompt)
	if err != nil {
		return models.EntityExtraction{}, err
	}
	return decodeEntities(raw)
}

func (g Gemini) Normalize(ctx context.Context, req NormalizeRequest) (models.Normalization, error) {
	prompt := normalizePrompt{
		Task:           "normalize_datetime",
		CurrentDate:    req.ReferenceDate,
		Timezone:       req.Timezone,
		Entities:       req.Entities,
		OutputContract: normalizeOutputContract,
		Rules: []string{
			"Compute relative dates using current_date as the reference date.",
			"If date_phrase is relative (next Friday, tomorrow), resolve it to an absolute YYYY-MM-DD.",
			"If time_phrase uses am/pm, convert to 24h HH:mm.",
			"If unclear (e.g., missing time), return null for that field.",
			"tz must be " + req.Timezone + " if any fields are present.",
		},
		Examples: normalizeExamples,
	}
	raw, err := g.generateJSON(ctx, normalizeSystem, prompt)
	if err != nil {
		return models.Normalization{}, err
	}
	return decodeNormalization(raw)
}

func (g Gemini) generateJSON(ctx context.Context, system string, prompt any) ([]byte, error) {
	if strings.TrimSpace(g.APIKey) == "" {
		return nil, ErrMissingAPIKey
	}
	user, err := json.MarshalIndent(prompt, "", "  ")
	if err != nil {
		return nil, err
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(g.APIKey))
	if err != nil {
		return nil, err
	}
	defer client.Close()

	name := g.Model
	if strings.TrimSpace(name) == "" {
		name = defaultModel
	}
	model := client.GenerativeModel(name)
	model.SetTemperature(0.2)
	model.SetMaxOutputTokens(700)
	model.GenerationConfig.ResponseMIMEType = "application/json"
	model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	resp, err := model.GenerateContent(ctx, genai.Text(user))
	if err != nil {
		return nil, err
	}
	return recoverJSON(responseText(resp))
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	return b.String()
}

var _ Adapter = Gemini{}
