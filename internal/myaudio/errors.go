package myaudio

import (
	"github.com/sonory/soundscape-go/internal/errors"
)

// Sentinel errors for audio acquisition and validation. Callers match these
// with errors.Is; the enhanced error wrapper carries context on top.
var (
	// ErrInvalidSource indicates a URL with an unsupported or missing scheme.
	ErrInvalidSource = errors.NewStd("invalid audio source URL")

	// ErrUnsupportedFormat indicates a file extension outside the supported set.
	ErrUnsupportedFormat = errors.NewStd("unsupported audio format")

	// ErrEmptyInput indicates a zero-length byte payload.
	ErrEmptyInput = errors.NewStd("audio input is empty")

	// ErrFetchExhausted indicates all download attempts failed.
	ErrFetchExhausted = errors.NewStd("audio download failed after all retries")

	// ErrFileNotFound indicates the given path does not exist.
	ErrFileNotFound = errors.NewStd("audio file not found")

	// ErrTranscodeFailed indicates ffmpeg could not produce a WAV file.
	ErrTranscodeFailed = errors.NewStd("audio transcoding failed")

	// ErrDecodeFailed indicates the decoder could not read the audio file.
	ErrDecodeFailed = errors.NewStd("audio decoding failed")

	// ErrEmptySignal indicates a decoded waveform with zero samples.
	ErrEmptySignal = errors.NewStd("audio signal is empty")

	// ErrTooShort indicates a waveform below the minimum analyzable duration.
	ErrTooShort = errors.NewStd("audio signal is too short")

	// ErrSilent indicates a waveform where every sample is zero.
	ErrSilent = errors.NewStd("audio signal is silent")

	// ErrInvalidSamples indicates NaN or Inf values in the waveform.
	ErrInvalidSamples = errors.NewStd("audio signal contains invalid samples")
)
