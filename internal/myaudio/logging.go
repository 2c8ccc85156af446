package myaudio

import (
	"log/slog"

	"github.com/sonory/soundscape-go/internal/logging"
)

// GetLogger returns the audio pipeline logger.
func GetLogger() *slog.Logger {
	if l := logging.ForService("audio"); l != nil {
		return l
	}
	return slog.Default().With("service", "audio")
}
