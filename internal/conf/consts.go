package conf

// Audio pipeline constants. The classifier consumes mono float32 PCM at a
// fixed sample rate, so these are not configurable.
const (
	// SampleRate is the waveform sample rate the classifier expects.
	SampleRate = 16000

	// NumChannels is the channel count of the preprocessed waveform.
	NumChannels = 1

	// BitDepth of the PCM data produced by the transcoder.
	BitDepth = 16

	// MaxClipDuration is the longest waveform in seconds fed to the
	// classifier. Longer input is truncated, not rejected.
	MaxClipDuration = 30.0

	// MinClipDuration is the shortest analyzable waveform in seconds.
	MinClipDuration = 0.1
)

// Tunable defaults, overridable through configuration.
const (
	DefaultTopK       = 5
	DefaultMaxRetries = 3
	DefaultRMSScale   = 10.0
	DefaultMinScore   = 0.001
)
