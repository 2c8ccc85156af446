package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/sonory/soundscape-go/internal/errors"
	"github.com/sonory/soundscape-go/internal/myaudio"
	"github.com/sonory/soundscape-go/internal/yamnet"
)

// ErrorResponse is the structured error payload.
type ErrorResponse struct {
	Error     string  `json:"error"`
	Message   string  `json:"message"`
	Timestamp float64 `json:"timestamp"`
	RequestID string  `json:"request_id,omitempty"`
}

// clientFaultSentinels are pipeline errors caused by the request itself.
var clientFaultSentinels = []error{
	myaudio.ErrInvalidSource,
	myaudio.ErrUnsupportedFormat,
	myaudio.ErrEmptyInput,
	myaudio.ErrEmptySignal,
	myaudio.ErrTooShort,
	myaudio.ErrSilent,
	myaudio.ErrInvalidSamples,
}

// errorStatus maps a pipeline error to an HTTP status code.
func errorStatus(err error) int {
	for _, sentinel := range clientFaultSentinels {
		if errors.Is(err, sentinel) {
			return http.StatusBadRequest
		}
	}
	if errors.Is(err, myaudio.ErrFileNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, yamnet.ErrNotInitialized) {
		return http.StatusServiceUnavailable
	}
	// Download failures reflect the remote source, not this service
	if errors.Is(err, myaudio.ErrFetchExhausted) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// analysisError converts a pipeline error into a structured response.
func (c *Controller) analysisError(ctx echo.Context, err error) error {
	code := errorStatus(err)

	if code >= http.StatusInternalServerError {
		c.logger.Error("analysis failed", "error", err, "status", code)
	} else {
		c.logger.Warn("analysis rejected", "error", err, "status", code)
	}

	return c.errorResponse(ctx, code, err.Error())
}

// errorResponse writes the structured error payload.
func (c *Controller) errorResponse(ctx echo.Context, code int, message string) error {
	requestID, _ := ctx.Get("request_id").(string)
	return ctx.JSON(code, ErrorResponse{
		Error:     http.StatusText(code),
		Message:   message,
		Timestamp: float64(time.Now().UnixNano()) / 1e9,
		RequestID: requestID,
	})
}
