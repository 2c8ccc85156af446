package yamnet

import (
	"fmt"

	tflite "github.com/tphakala/go-tflite"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
	"github.com/sonory/soundscape-go/internal/soundscape"
)

// Predict runs inference on a waveform and returns one score per taxonomy
// class. The waveform must be mono float32 at the model's sample rate. The
// model emits a frames-by-classes score matrix; scores are averaged over the
// frame axis.
func (m *Model) Predict(samples []float32, sampleRate int) ([]soundscape.ClassScore, error) {
	if !m.IsInitialized() {
		return nil, errors.New(ErrNotInitialized).
			Component("yamnet").
			Category(errors.CategoryState).
			Build()
	}

	if sampleRate != conf.SampleRate {
		return nil, errors.Newf("model requires %d Hz input, got %d Hz", conf.SampleRate, sampleRate).
			Component("yamnet").
			Category(errors.CategoryValidation).
			Context("sample_rate", sampleRate).
			Build()
	}

	if len(samples) == 0 {
		return nil, errors.Newf("empty waveform").
			Component("yamnet").
			Category(errors.CategoryValidation).
			Build()
	}

	// Locking prevents concurrent access to the interpreter
	m.mu.Lock()
	defer m.mu.Unlock()

	inputTensor := m.interpreter.GetInputTensor(0)
	if inputTensor == nil {
		return nil, fmt.Errorf("cannot get input tensor")
	}

	// The model accepts arbitrary-length waveforms, resize when the input
	// length changed since the last invocation
	if inputTensor.Dim(0) != len(samples) {
		if status := m.interpreter.ResizeInputTensor(0, []int32{int32(len(samples))}); status != tflite.OK {
			return nil, fmt.Errorf("input tensor resize failed: %v", status)
		}
		if status := m.interpreter.AllocateTensors(); status != tflite.OK {
			return nil, fmt.Errorf("tensor allocation failed: %v", status)
		}
		inputTensor = m.interpreter.GetInputTensor(0)
	}

	copy(inputTensor.Float32s(), samples)

	if status := m.interpreter.Invoke(); status != tflite.OK {
		return nil, fmt.Errorf("tensor invoke failed: %v", status)
	}

	outputTensor := m.interpreter.GetOutputTensor(0)
	if outputTensor == nil {
		return nil, fmt.Errorf("cannot get output tensor")
	}

	numClasses := outputTensor.Dim(outputTensor.NumDims() - 1)
	if numClasses != len(m.classNames) {
		return nil, fmt.Errorf("model emits %d classes but class map has %d entries", numClasses, len(m.classNames))
	}

	totalElements := 1
	for d := 0; d < outputTensor.NumDims(); d++ {
		totalElements *= outputTensor.Dim(d)
	}

	raw := make([]float32, totalElements)
	copy(raw, outputTensor.Float32s())

	mean := meanFrameScores(raw, numClasses)

	scores := make([]soundscape.ClassScore, numClasses)
	for i, name := range m.classNames {
		scores[i] = soundscape.ClassScore{Name: name, Score: mean[i]}
	}

	return scores, nil
}

// meanFrameScores averages a flattened frames-by-classes matrix over the
// frame axis. A single-frame output passes through unchanged.
func meanFrameScores(raw []float32, numClasses int) []float64 {
	mean := make([]float64, numClasses)
	if numClasses == 0 || len(raw) < numClasses {
		return mean
	}

	numFrames := len(raw) / numClasses
	for f := 0; f < numFrames; f++ {
		base := f * numClasses
		for c := 0; c < numClasses; c++ {
			mean[c] += float64(raw[base+c])
		}
	}
	for c := range mean {
		mean[c] /= float64(numFrames)
	}

	return mean
}
