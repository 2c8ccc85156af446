package api

import (
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sonory/soundscape-go/internal/conf"
)

// maxUploadSize caps uploaded audio files at 10 MB.
const maxUploadSize = 10 * 1024 * 1024

// AnalyzeAudioRequest is the JSON body for URL-based analysis.
type AnalyzeAudioRequest struct {
	AudioURL   string `json:"audio_url"`
	TopK       *int   `json:"top_k,omitempty"`
	MaxRetries *int   `json:"max_retries,omitempty"`
}

// AnalyzeAudio handles POST /api/v1/analyze/audio.
func (c *Controller) AnalyzeAudio(ctx echo.Context) error {
	var req AnalyzeAudioRequest
	if err := ctx.Bind(&req); err != nil {
		return c.errorResponse(ctx, http.StatusBadRequest, "invalid request body")
	}

	if req.AudioURL == "" {
		return c.errorResponse(ctx, http.StatusBadRequest, "audio_url is required")
	}

	topK := conf.DefaultTopK
	if req.TopK != nil {
		topK = *req.TopK
	}
	if topK < 1 || topK > 20 {
		return c.errorResponse(ctx, http.StatusBadRequest, "top_k must be between 1 and 20")
	}

	maxRetries := c.Settings.Audio.MaxRetries
	if req.MaxRetries != nil {
		maxRetries = *req.MaxRetries
	}
	if maxRetries < 0 || maxRetries > 10 {
		return c.errorResponse(ctx, http.StatusBadRequest, "max_retries must be between 0 and 10")
	}

	result, err := c.Analyzer.AnalyzeURL(ctx.Request().Context(), req.AudioURL, topK, maxRetries)
	if err != nil {
		return c.analysisError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, result)
}

// AnalyzeAudioUpload handles POST /api/v1/analyze/audio/upload.
func (c *Controller) AnalyzeAudioUpload(ctx echo.Context) error {
	topK := conf.DefaultTopK
	if v := ctx.FormValue("top_k"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil {
			return c.errorResponse(ctx, http.StatusBadRequest, "top_k must be an integer")
		}
		topK = parsed
	}
	if topK < 1 || topK > 20 {
		return c.errorResponse(ctx, http.StatusBadRequest, "top_k must be between 1 and 20")
	}

	fileHeader, err := ctx.FormFile("file")
	if err != nil {
		return c.errorResponse(ctx, http.StatusBadRequest, "file is required")
	}

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType != "" &&
		!strings.Contains(strings.ToLower(contentType), "audio/") &&
		!strings.Contains(strings.ToLower(contentType), "video/") {
		return c.errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("unsupported file type: %s", contentType))
	}

	if fileHeader.Size > maxUploadSize {
		return c.errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("file too large: %d bytes (max: %d)", fileHeader.Size, maxUploadSize))
	}

	file, err := fileHeader.Open()
	if err != nil {
		return c.errorResponse(ctx, http.StatusBadRequest, "cannot read uploaded file")
	}
	defer func() {
		_ = file.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(file, maxUploadSize+1))
	if err != nil {
		return c.errorResponse(ctx, http.StatusBadRequest, "cannot read uploaded file")
	}
	if len(data) > maxUploadSize {
		return c.errorResponse(ctx, http.StatusBadRequest,
			fmt.Sprintf("file too large (max: %d)", maxUploadSize))
	}
	if len(data) == 0 {
		return c.errorResponse(ctx, http.StatusBadRequest, "empty file uploaded")
	}

	result, err := c.Analyzer.AnalyzeBytes(ctx.Request().Context(), data, fileHeader.Filename, topK)
	if err != nil {
		return c.analysisError(ctx, err)
	}

	return ctx.JSON(http.StatusOK, result)
}

// HealthResponse is the payload for the health endpoint.
type HealthResponse struct {
	Status    string  `json:"status"`
	Service   string  `json:"service"`
	Version   string  `json:"version"`
	Timestamp float64 `json:"timestamp"`
	Details   any     `json:"details,omitempty"`
}

// HealthCheck handles GET /api/v1/health. Responds 503 when the service
// cannot accept analysis requests.
func (c *Controller) HealthCheck(ctx echo.Context) error {
	health := c.Analyzer.HealthCheck()

	status := "healthy"
	code := http.StatusOK
	if !health.Healthy {
		status = "unhealthy"
		code = http.StatusServiceUnavailable
	}

	return ctx.JSON(code, HealthResponse{
		Status:    status,
		Service:   ServiceName,
		Version:   ServiceVersion,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		Details:   health,
	})
}

// StatsResponse is the payload for the stats endpoint.
type StatsResponse struct {
	Service    string         `json:"service"`
	Statistics map[string]any `json:"statistics"`
	Timestamp  float64        `json:"timestamp"`
}

// Stats handles GET /api/v1/stats.
func (c *Controller) Stats(ctx echo.Context) error {
	return ctx.JSON(http.StatusOK, StatsResponse{
		Service:    ServiceName,
		Statistics: c.Analyzer.Stats(),
		Timestamp:  float64(time.Now().UnixNano()) / 1e9,
	})
}
