// Package myaudio handles audio acquisition (URL, raw bytes, local file),
// container decoding and waveform preprocessing for the classifier.
package myaudio

import (
	"log/slog"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/httpclient"
)

// supportedFormats are the file extensions the processor accepts.
var supportedFormats = []string{".wav", ".mp3", ".webm", ".m4a", ".flac", ".ogg"}

// Metadata describes the decoded source audio before preprocessing.
type Metadata struct {
	Duration   float64 `json:"duration"`
	SampleRate int     `json:"sample_rate"`
	Channels   int     `json:"channels"`
	Format     string  `json:"format"`
	FileSize   int64   `json:"file_size"`
}

// ProcessingInfo records what the preprocessor did to the waveform.
type ProcessingInfo struct {
	OriginalSampleRate int  `json:"original_sample_rate"`
	TargetSampleRate   int  `json:"target_sample_rate"`
	Resampled          bool `json:"resampled"`
	Truncated          bool `json:"truncated"`
	Normalized         bool `json:"normalized"`
}

// ProcessedAudio is a classifier-ready waveform: mono float32 at the target
// sample rate, RMS-normalized and capped at the maximum clip duration.
type ProcessedAudio struct {
	Samples    []float32
	SampleRate int
	Metadata   Metadata
	Info       ProcessingInfo
}

// Duration returns the processed waveform length in seconds.
func (p *ProcessedAudio) Duration() float64 {
	if p.SampleRate == 0 {
		return 0
	}
	return float64(len(p.Samples)) / float64(p.SampleRate)
}

// Processor turns audio sources into classifier-ready waveforms.
type Processor struct {
	settings *conf.Settings
	client   *httpclient.Client
	log      *slog.Logger
}

// NewProcessor creates a Processor using the given settings. The HTTP client
// is shared across all fetches.
func NewProcessor(settings *conf.Settings) *Processor {
	return &Processor{
		settings: settings,
		client:   httpclient.New(nil),
		log:      GetLogger(),
	}
}

// Close releases the processor's pooled network connections.
func (p *Processor) Close() {
	p.client.Close()
}
