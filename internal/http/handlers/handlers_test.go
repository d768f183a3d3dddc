package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/plaum/appointment-backend/internal/ai"
	"github.com/plaum/appointment-backend/internal/models"
	"github.com/plaum/appointment-backend/internal/ocr"
	"github.com/plaum/appointment-backend/internal/service"
)

type failingAdapter struct{}

func (failingAdapter) ExtractEntities(context.Context, ai.ExtractRequest) (models.EntityExtraction, error) {
	return models.EntityExtraction{}, errors.New("backend unavailable")
}

func (failingAdapter) Normalize(context.Context, ai.NormalizeRequest) (models.Normalization, error) {
	return models.Normalization{}, errors.New("backend unavailable")
}

func testRouter() *gin.Engine {
	loc := time.FixedZone("Asia/Kolkata", 5*3600+30*60)
	pipeline := &service.Pipeline{
		OCR:      &ocr.Service{},
		AI:       failingAdapter{},
		Logger:   zerolog.Nop(),
		Location: loc,
		Now: func() time.Time {
			return time.Date(2025, 9, 20, 12, 0, 0, 0, loc)
		},
	}
	h := &Handler{
		Pipeline:  pipeline,
		Validator: validator.New(),
		Logger:    zerolog.Nop(),
	}

	r := gin.New()
	r.GET("/healthz", h.Healthz)
	r.POST("/api/process", h.Process)
	return r
}

func tinyPNG(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 8, 8))); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestHealthz(t *testing.T) {
	r := testRouter()
	req, _ := http.NewRequest(http.MethodGet, "/healthz", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
}

func TestProcessTextHappyPath(t *testing.T) {
	r := testRouter()
	body := bytes.NewBufferString(`{"text": "Book dentist next Friday at 3pm"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res models.PipelineResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %q (%s)", res.Status, res.Message)
	}
	if res.Step4 == nil || res.Step4.Appointment.Department != "Dentistry" {
		t.Fatalf("unexpected step4: %+v", res.Step4)
	}
}

func TestProcessClarificationPath(t *testing.T) {
	r := testRouter()
	body := bytes.NewBufferString(`{"text": "I need an appointment"}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/process", body)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("clarification is not an HTTP error, got %d", w.Code)
	}
	var res models.PipelineResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Status != models.StatusNeedsClarification {
		t.Fatalf("expected needs_clarification, got %q", res.Status)
	}
	if res.Step3 != nil || res.Step4 != nil {
		t.Fatalf("expected null step3/step4")
	}
}

func TestProcessMissingInput(t *testing.T) {
	r := testRouter()
	req, _ := http.NewRequest(http.MethodPost, "/api/process", bytes.NewBufferString(`{}`))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "MISSING_INPUT") {
		t.Fatalf("expected MISSING_INPUT, got %s", w.Body.String())
	}
}

func TestProcessTextTooLong(t *testing.T) {
	r := testRouter()
	payload, _ := json.Marshal(map[string]string{"text": strings.Repeat("a", 5001)})
	req, _ := http.NewRequest(http.MethodPost, "/api/process", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestProcessRejectsUnsupportedFileType(t *testing.T) {
	r := testRouter()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="note.txt"`)
	header.Set("Content-Type", "text/plain")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write([]byte("not an image")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, "/api/process", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), "UNSUPPORTED_MEDIA") {
		t.Fatalf("expected UNSUPPORTED_MEDIA, got %s", w.Body.String())
	}
}

func TestProcessImageInputUsesOCR(t *testing.T) {
	loc := time.FixedZone("Asia/Kolkata", 5*3600+30*60)
	pipeline := &service.Pipeline{
		OCR: &ocr.Service{NewEngine: func(ctx context.Context) (ocr.Engine, error) {
			return ocr.MockEngine{Text: "Book dentist next Friday at 3pm", Confidence: 0.8}, nil
		}},
		AI:       failingAdapter{},
		Logger:   zerolog.Nop(),
		Location: loc,
		Now: func() time.Time {
			return time.Date(2025, 9, 20, 12, 0, 0, 0, loc)
		},
	}
	h := &Handler{Pipeline: pipeline, Validator: validator.New(), Logger: zerolog.Nop()}
	r := gin.New()
	r.POST("/api/process", h.Process)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="file"; filename="note.png"`)
	header.Set("Content-Type", "image/png")
	part, err := writer.CreatePart(header)
	if err != nil {
		t.Fatalf("create part: %v", err)
	}
	if _, err := part.Write(tinyPNG(t)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}

	req, _ := http.NewRequest(http.MethodPost, "/api/process", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var res models.PipelineResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if res.Step1 == nil || res.Step1.Confidence != 0.8 {
		t.Fatalf("expected OCR confidence 0.8, got %+v", res.Step1)
	}
	if res.Status != models.StatusOK {
		t.Fatalf("expected status ok, got %q", res.Status)
	}
}
