package myaudio

import (
	"fmt"
	"math"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
)

// maxSamples is the truncation point for the preprocessed waveform.
const maxSamples = int(conf.MaxClipDuration * conf.SampleRate)

// validateSamples rejects waveforms the classifier cannot analyze. Order
// matters: emptiness first, then duration, then content checks. Overlong
// input is not an error, it is truncated downstream.
func validateSamples(samples []float32, sampleRate int) error {
	if len(samples) == 0 {
		return errors.New(ErrEmptySignal).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	duration := float64(len(samples)) / float64(sampleRate)
	if duration < conf.MinClipDuration {
		return errors.New(fmt.Errorf("%w: %.3fs, minimum is %.1fs", ErrTooShort, duration, conf.MinClipDuration)).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Context("duration", duration).
			Build()
	}

	allZero := true
	for _, s := range samples {
		if math.IsNaN(float64(s)) || math.IsInf(float64(s), 0) {
			return errors.New(ErrInvalidSamples).
				Component("myaudio").
				Category(errors.CategoryValidation).
				Build()
		}
		if s != 0 {
			allZero = false
		}
	}
	if allZero {
		return errors.New(ErrSilent).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	return nil
}

// preprocessWaveform converts a validated waveform into classifier input:
// resample to the target rate, truncate to the maximum clip length, then
// scale by the RMS level and clip to [-1, 1].
func (p *Processor) preprocessWaveform(samples []float32, sampleRate int) ([]float32, ProcessingInfo) {
	info := ProcessingInfo{
		OriginalSampleRate: sampleRate,
		TargetSampleRate:   conf.SampleRate,
	}

	if sampleRate != conf.SampleRate {
		resampled, err := ResampleAudio(samples, sampleRate, conf.SampleRate)
		if err == nil {
			samples = resampled
			info.Resampled = true
		} else {
			// Resampling only fails on invalid rates, which validation
			// already excludes; keep the original waveform if it does.
			p.log.Error("resampling failed", "error", err)
		}
	}

	if len(samples) > maxSamples {
		p.log.Warn("audio exceeds maximum duration, truncating",
			"duration", float64(len(samples))/float64(conf.SampleRate),
			"max_duration", conf.MaxClipDuration)
		samples = samples[:maxSamples]
		info.Truncated = true
	}

	samples = p.normalizeRMS(samples)
	info.Normalized = true

	return samples, info
}

// normalizeRMS scales the waveform by its RMS level times the configured
// scale factor, then clips to [-1, 1]. Near-silent input is left untouched.
func (p *Processor) normalizeRMS(samples []float32) []float32 {
	var sumSquares float64
	for _, s := range samples {
		sumSquares += float64(s) * float64(s)
	}
	rms := math.Sqrt(sumSquares / float64(len(samples)))
	if rms < 1e-10 {
		return samples
	}

	scale := float32(1.0 / (rms * p.settings.Audio.RMSScale))
	out := make([]float32, len(samples))
	for i, s := range samples {
		v := s * scale
		if v > 1 {
			v = 1
		} else if v < -1 {
			v = -1
		}
		out[i] = v
	}
	return out
}

// logDiagnostics emits waveform statistics at debug level.
func (p *Processor) logDiagnostics(samples []float32, metadata Metadata) {
	if !p.settings.Debug {
		return
	}

	var peak float32
	var sumSquares float64
	zeroCrossings := 0
	for i, s := range samples {
		if a := float32(math.Abs(float64(s))); a > peak {
			peak = a
		}
		sumSquares += float64(s) * float64(s)
		if i > 0 && (s >= 0) != (samples[i-1] >= 0) {
			zeroCrossings++
		}
	}
	rms := 0.0
	if len(samples) > 0 {
		rms = math.Sqrt(sumSquares / float64(len(samples)))
	}

	p.log.Debug("waveform diagnostics",
		"format", metadata.Format,
		"source_rate", metadata.SampleRate,
		"source_duration", metadata.Duration,
		"peak", peak,
		"rms", rms,
		"zero_crossings", zeroCrossings)
}
