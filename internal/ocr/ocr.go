package ocr

import (
	"context"
	"errors"

	"github.com/plaum/appointment-backend/internal/models"
)

// ErrImageDecode marks input that could not be decoded as an image. It is a
// request error, not a stage failure.
var ErrImageDecode = errors.New("invalid or unsupported image file")

// Engine recognizes text in a normalized PNG image.
type Engine interface {
	Recognize(ctx context.Context, png []byte) (models.ExtractionResult, error)
}
