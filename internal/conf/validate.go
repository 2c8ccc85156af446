package conf

import (
	"github.com/sonory/soundscape-go/internal/errors"
)

// ValidateSettings checks the loaded configuration for invalid values and
// fills in values that can only be resolved at runtime.
func ValidateSettings(settings *Settings) error {
	if settings.Model.TopK < 1 || settings.Model.TopK > 20 {
		return errors.Newf("model.topk must be between 1 and 20, got %d", settings.Model.TopK).
			Category(errors.CategoryConfiguration).
			Context("setting", "model.topk").
			Build()
	}

	if settings.Model.Threads < 0 {
		settings.Model.Threads = 0
	}

	if settings.Audio.MaxRetries < 0 || settings.Audio.MaxRetries > 10 {
		return errors.Newf("audio.maxretries must be between 0 and 10, got %d", settings.Audio.MaxRetries).
			Category(errors.CategoryConfiguration).
			Context("setting", "audio.maxretries").
			Build()
	}

	if settings.Audio.FetchTimeout <= 0 {
		return errors.Newf("audio.fetchtimeout must be positive, got %d", settings.Audio.FetchTimeout).
			Category(errors.CategoryConfiguration).
			Context("setting", "audio.fetchtimeout").
			Build()
	}

	if settings.Audio.RMSScale <= 0 {
		settings.Audio.RMSScale = DefaultRMSScale
	}

	if settings.Soundscape.MinScore < 0 || settings.Soundscape.MinScore >= 1 {
		return errors.Newf("soundscape.minscore must be in [0, 1), got %g", settings.Soundscape.MinScore).
			Category(errors.CategoryConfiguration).
			Context("setting", "soundscape.minscore").
			Build()
	}

	if settings.Audio.FfmpegPath == "" {
		settings.Audio.FfmpegPath = GetFfmpegBinaryName()
	}

	return nil
}
