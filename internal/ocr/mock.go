package ocr

import (
	"context"

	"github.com/plaum/appointment-backend/internal/models"
)

// MockEngine returns a canned recognition result. For local development and
// tests without an OCR sidecar.
type MockEngine struct {
	Text       string
	Confidence float64
}

func (m MockEngine) Recognize(ctx context.Context, png []byte) (models.ExtractionResult, error) {
	return models.ExtractionResult{RawText: m.Text, Confidence: m.Confidence}, nil
}

var _ Engine = MockEngine{}
