package conf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonory/soundscape-go/internal/errors"
)

func validSettings() *Settings {
	s := &Settings{}
	s.Model.TopK = DefaultTopK
	s.Audio.MaxRetries = DefaultMaxRetries
	s.Audio.FetchTimeout = 30
	s.Audio.RMSScale = DefaultRMSScale
	s.Soundscape.MinScore = DefaultMinScore
	return s
}

func TestValidateSettings_Valid(t *testing.T) {
	s := validSettings()
	require.NoError(t, ValidateSettings(s))
}

func TestValidateSettings_TopKRange(t *testing.T) {
	for _, topK := range []int{0, -1, 21, 100} {
		s := validSettings()
		s.Model.TopK = topK
		err := ValidateSettings(s)
		require.Error(t, err, "topk %d", topK)
		assert.True(t, errors.IsCategory(err, errors.CategoryConfiguration))
	}
}

func TestValidateSettings_MaxRetriesRange(t *testing.T) {
	for _, retries := range []int{-1, 11} {
		s := validSettings()
		s.Audio.MaxRetries = retries
		assert.Error(t, ValidateSettings(s), "retries %d", retries)
	}
}

func TestValidateSettings_FetchTimeout(t *testing.T) {
	s := validSettings()
	s.Audio.FetchTimeout = 0
	assert.Error(t, ValidateSettings(s))
}

func TestValidateSettings_MinScoreRange(t *testing.T) {
	for _, minScore := range []float64{-0.1, 1.0, 1.5} {
		s := validSettings()
		s.Soundscape.MinScore = minScore
		assert.Error(t, ValidateSettings(s), "minscore %g", minScore)
	}

	s := validSettings()
	s.Soundscape.MinScore = 0
	assert.NoError(t, ValidateSettings(s))
}

func TestValidateSettings_FillsDefaults(t *testing.T) {
	s := validSettings()
	s.Audio.RMSScale = 0
	s.Audio.FfmpegPath = ""
	s.Model.Threads = -2

	require.NoError(t, ValidateSettings(s))
	assert.InDelta(t, DefaultRMSScale, s.Audio.RMSScale, 1e-9)
	assert.Equal(t, GetFfmpegBinaryName(), s.Audio.FfmpegPath)
	assert.Equal(t, 0, s.Model.Threads)
}
