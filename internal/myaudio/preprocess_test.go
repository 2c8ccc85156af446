package myaudio

import (
	"math"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
)

func newTestProcessor(t *testing.T) *Processor {
	t.Helper()
	settings := &conf.Settings{}
	settings.Audio.RMSScale = conf.DefaultRMSScale
	settings.Audio.FetchTimeout = 5
	settings.Audio.FfmpegPath = "ffmpeg"
	p := NewProcessor(settings)
	t.Cleanup(p.Close)
	return p
}

// sineWave generates a test tone.
func sineWave(freq float64, sampleRate int, duration float64) []float32 {
	n := int(duration * float64(sampleRate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
	}
	return samples
}

func TestValidateSamples(t *testing.T) {
	tests := []struct {
		name       string
		samples    []float32
		sampleRate int
		wantErr    error
	}{
		{"empty signal", []float32{}, 16000, ErrEmptySignal},
		{"too short", make([]float32, 100), 16000, ErrTooShort},
		{"silent", make([]float32, 16000), 16000, ErrSilent},
		{"valid", sineWave(440, 16000, 1.0), 16000, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateSamples(tt.samples, tt.sampleRate)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSamples_NaN(t *testing.T) {
	samples := sineWave(440, 16000, 1.0)
	samples[500] = float32(math.NaN())

	err := validateSamples(samples, 16000)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidSamples)
}

func TestValidateSamples_Inf(t *testing.T) {
	samples := sineWave(440, 16000, 1.0)
	samples[0] = float32(math.Inf(1))

	err := validateSamples(samples, 16000)
	assert.ErrorIs(t, err, ErrInvalidSamples)
}

func TestValidateSamples_ShortBeatsContentChecks(t *testing.T) {
	// A short silent signal reports too-short, not silent
	err := validateSamples(make([]float32, 100), 16000)
	assert.ErrorIs(t, err, ErrTooShort)
	assert.NotErrorIs(t, err, ErrSilent)
}

func TestValidateSamples_LongIsNotAnError(t *testing.T) {
	samples := sineWave(440, 16000, 35.0)
	assert.NoError(t, validateSamples(samples, 16000))
}

func TestPreprocessWaveform_Resamples(t *testing.T) {
	p := newTestProcessor(t)

	samples := sineWave(440, 44100, 5.0)
	out, info := p.preprocessWaveform(samples, 44100)

	assert.True(t, info.Resampled)
	assert.Equal(t, 44100, info.OriginalSampleRate)
	assert.Equal(t, conf.SampleRate, info.TargetSampleRate)
	// 5s at 16 kHz
	assert.InDelta(t, 80000, len(out), 2)
}

func TestPreprocessWaveform_Truncates(t *testing.T) {
	p := newTestProcessor(t)

	samples := sineWave(440, 16000, 35.0)
	out, info := p.preprocessWaveform(samples, 16000)

	assert.True(t, info.Truncated)
	assert.False(t, info.Resampled)
	assert.Len(t, out, maxSamples)
	assert.Len(t, out, 480000)
}

func TestPreprocessWaveform_Normalizes(t *testing.T) {
	p := newTestProcessor(t)

	samples := sineWave(440, 16000, 1.0)
	out, info := p.preprocessWaveform(samples, 16000)

	assert.True(t, info.Normalized)

	var sumSquares float64
	for _, s := range out {
		sumSquares += float64(s) * float64(s)
		assert.LessOrEqual(t, s, float32(1.0))
		assert.GreaterOrEqual(t, s, float32(-1.0))
	}
	rms := math.Sqrt(sumSquares / float64(len(out)))

	// RMS scaled to 1/RMSScale
	assert.InDelta(t, 1.0/conf.DefaultRMSScale, rms, 0.01)
}

func TestPreprocessWaveform_OutputRate(t *testing.T) {
	p := newTestProcessor(t)

	for _, rate := range []int{8000, 16000, 22050, 44100, 48000} {
		samples := sineWave(440, rate, 2.0)
		_, info := p.preprocessWaveform(samples, rate)
		assert.Equal(t, conf.SampleRate, info.TargetSampleRate, "rate %d", rate)
	}
}

func TestProcessBytes_Empty(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.ProcessBytes(t.Context(), nil, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrEmptyInput)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}

func TestProcessFile_NotFound(t *testing.T) {
	p := newTestProcessor(t)

	_, err := p.ProcessFile(t.Context(), "/nonexistent/audio.wav")
	assert.ErrorIs(t, err, ErrFileNotFound)
}

func TestProcessFile_UnsupportedFormat(t *testing.T) {
	p := newTestProcessor(t)

	path := t.TempDir() + "/notes.txt"
	require.NoError(t, os.WriteFile(path, []byte("not audio"), 0o644))

	_, err := p.ProcessFile(t.Context(), path)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}

func TestDetermineExtension(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		hint string
		want string
	}{
		{"hint wins", []byte("RIFF1234WAVE"), "clip.flac", ".flac"},
		{"riff magic", []byte("RIFF1234WAVE"), "", ".wav"},
		{"flac magic", []byte("fLaC0000"), "", ".flac"},
		{"ogg magic", []byte("OggS0000"), "", ".ogg"},
		{"id3 magic", []byte("ID3\x04\x00"), "", ".mp3"},
		{"mp3 sync", []byte{0xFF, 0xFB, 0x90, 0x00}, "", ".mp3"},
		{"ebml magic", []byte{0x1A, 0x45, 0xDF, 0xA3, 0x00}, "", ".webm"},
		{"unknown defaults to wav", []byte{0x00, 0x01, 0x02, 0x03}, "", ".wav"},
		{"bad hint falls back to sniffing", []byte("fLaC0000"), "clip.xyz", ".flac"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, determineExtension(tt.data, tt.hint))
		})
	}
}
