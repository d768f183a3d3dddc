package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/plaum/appointment-backend/internal/ai"
	"github.com/plaum/appointment-backend/internal/ocr"
	"github.com/plaum/appointment-backend/internal/service"
)

const maxImageBytes = 6 << 20

var allowedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
	"image/jpg":  true,
	"image/webp": true,
}

type Handler struct {
	Pipeline  *service.Pipeline
	Validator *validator.Validate
	Logger    zerolog.Logger
	Timeout   time.Duration
}

type ProcessTextRequest struct {
	Text string `json:"text" validate:"omitempty,max=5000"`
}

func (h *Handler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// @Summary Process an appointment request
// @Description Accepts free text or a photographed note and runs the four-stage pipeline
// @Tags process
// @Accept json
// @Accept multipart/form-data
// @Produce json
// @Param text formData string false "Appointment request text"
// @Param file formData file false "Photographed note (png, jpg/jpeg, webp)"
// @Success 200 {object} models.PipelineResult
// @Failure 400 {object} map[string]any
// @Failure 413 {object} map[string]any
// @Failure 500 {object} map[string]any
// @Router /api/process [post]
func (h *Handler) Process(c *gin.Context) {
	input, ok := h.readInput(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if h.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.Timeout)
		defer cancel()
	}

	result, err := h.Pipeline.Process(ctx, input)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrMissingInput):
			writeError(c, http.StatusBadRequest, "MISSING_INPUT", "Provide either JSON body {text} or a file upload", nil)
		case errors.Is(err, ocr.ErrImageDecode):
			writeError(c, http.StatusBadRequest, "INVALID_IMAGE", "Invalid or unsupported image file", nil)
		case errors.Is(err, ai.ErrMissingAPIKey):
			writeError(c, http.StatusInternalServerError, "AI_CONFIG_ERROR", "AI backend is not configured", nil)
		default:
			h.Logger.Error().Err(err).Msg("pipeline failed")
			writeError(c, http.StatusInternalServerError, "PIPELINE_ERROR", "Processing failed", err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, result)
}

// readInput pulls text and/or an image out of the request. On a request
// error it writes the response itself and returns ok=false.
func (h *Handler) readInput(c *gin.Context) (service.Input, bool) {
	var input service.Input

	if strings.HasPrefix(c.ContentType(), "multipart/form-data") {
		input.Text = c.PostForm("text")
		file, err := c.FormFile("file")
		if err == nil {
			if file.Size > maxImageBytes {
				writeError(c, http.StatusRequestEntityTooLarge, "FILE_TOO_LARGE", "File exceeds the 6 MB limit", nil)
				return service.Input{}, false
			}
			if !allowedImageTypes[file.Header.Get("Content-Type")] {
				writeError(c, http.StatusBadRequest, "UNSUPPORTED_MEDIA", "Unsupported file type. Use png, jpg/jpeg, or webp.", nil)
				return service.Input{}, false
			}
			f, err := file.Open()
			if err != nil {
				writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read uploaded file", err.Error())
				return service.Input{}, false
			}
			defer f.Close()
			buf, err := io.ReadAll(f)
			if err != nil {
				writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Failed to read uploaded file", err.Error())
				return service.Input{}, false
			}
			input.Image = buf
		}
		return input, true
	}

	if c.Request.ContentLength > 0 {
		var req ProcessTextRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body", err.Error())
			return service.Input{}, false
		}
		if err := h.Validator.Struct(req); err != nil {
			writeError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid request body", err.Error())
			return service.Input{}, false
		}
		input.Text = req.Text
	}
	return input, true
}

func writeError(c *gin.Context, status int, code string, message string, details any) {
	c.JSON(status, gin.H{
		"error": gin.H{
			"code":    code,
			"message": message,
			"details": details,
		},
	})
}
