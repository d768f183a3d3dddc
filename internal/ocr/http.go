package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/plaum/appointment-backend/internal/models"
)

// HTTPEngine talks to an OCR sidecar. The sidecar loads its recognition
// model on first use, so the factory warms it up before handing the engine
// out; after that a request is a single POST per image.
type HTTPEngine struct {
	BaseURL string
	Client  *http.Client
}

type recognizeResponse struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence"`
}

func (e HTTPEngine) Recognize(ctx context.Context, png []byte) (models.ExtractionResult, error) {
	if e.Client == nil {
		e.Client = &http.Client{Timeout: 60 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, strings.TrimRight(e.BaseURL, "/")+"/recognize", bytes.NewReader(png))
	if err != nil {
		return models.ExtractionResult{}, err
	}
	req.Header.Set("Content-Type", "image/png")

	resp, err := e.Client.Do(req)
	if err != nil {
		return models.ExtractionResult{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.ExtractionResult{}, fmt.Errorf("ocr http error: %s", resp.Status)
	}

	var r recognizeResponse
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return models.ExtractionResult{}, err
	}
	return models.ExtractionResult{
		RawText:    strings.TrimSpace(r.Text),
		Confidence: clampConfidence(r.Confidence / 100),
	}, nil
}

func (e HTTPEngine) warmup(ctx context.Context) error {
	if e.Client == nil {
		e.Client = &http.Client{Timeout: 60 * time.Second}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.TrimRight(e.BaseURL, "/")+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := e.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("ocr warmup error: %s", resp.Status)
	}
	return nil
}

// HTTPEngineFactory returns an engine factory for the shared lazy handle.
func HTTPEngineFactory(baseURL string) func(ctx context.Context) (Engine, error) {
	return func(ctx context.Context) (Engine, error) {
		e := HTTPEngine{BaseURL: baseURL}
		if err := e.warmup(ctx); err != nil {
			return nil, err
		}
		return e, nil
	}
}

// Sidecar confidence arrives on a 0..100 scale.
func clampConfidence(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
