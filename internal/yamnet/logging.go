package yamnet

import (
	"log/slog"

	"github.com/sonory/soundscape-go/internal/logging"
)

// GetLogger returns the classifier logger.
func GetLogger() *slog.Logger {
	if l := logging.ForService("yamnet"); l != nil {
		return l
	}
	return slog.Default().With("service", "yamnet")
}
