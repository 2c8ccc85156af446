package myaudio

import (
	"math"

	"github.com/sonory/soundscape-go/internal/errors"
)

// Resampler filter parameters. A Kaiser-windowed sinc kernel with beta 8.6
// gives roughly 90 dB of stopband attenuation, enough that aliasing stays
// below the classifier's sensitivity.
const (
	resampleZeroCrossings = 16
	resampleKaiserBeta    = 8.6
)

// ResampleAudio resamples the given audio slice from the original sample rate
// to the target sample rate using a Kaiser-windowed sinc interpolation filter.
// When downsampling, the kernel cutoff is scaled to act as the anti-aliasing
// low-pass filter.
func ResampleAudio(audio []float32, originalRate, targetRate int) ([]float32, error) {
	if originalRate <= 0 || targetRate <= 0 {
		return nil, errors.Newf("invalid sample rate: original %d, target %d", originalRate, targetRate).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Build()
	}

	if originalRate == targetRate {
		return audio, nil
	}
	if len(audio) == 0 {
		return audio, nil
	}

	ratio := float64(targetRate) / float64(originalRate)
	newLength := int(math.Floor(float64(len(audio)) * ratio))
	if newLength == 0 {
		newLength = 1
	}
	resampled := make([]float32, newLength)

	// Cutoff relative to the original rate's Nyquist. Below 1.0 only when
	// downsampling, where the filter must also reject aliases.
	cutoff := 1.0
	if ratio < 1.0 {
		cutoff = ratio
	}

	// Filter half-width in input samples, widened when downsampling so the
	// narrower passband keeps the same number of zero crossings.
	halfWidth := float64(resampleZeroCrossings) / cutoff
	i0Beta := besselI0(resampleKaiserBeta)

	for i := range newLength {
		center := float64(i) / ratio

		left := int(math.Ceil(center - halfWidth))
		right := int(math.Floor(center + halfWidth))
		if left < 0 {
			left = 0
		}
		if right > len(audio)-1 {
			right = len(audio) - 1
		}

		var acc, weightSum float64
		for j := left; j <= right; j++ {
			x := float64(j) - center
			w := sincKaiser(x, cutoff, halfWidth, i0Beta)
			acc += w * float64(audio[j])
			weightSum += w
		}

		// Normalizing by the weight sum keeps DC gain at unity near the edges
		if weightSum != 0 {
			resampled[i] = float32(acc / weightSum)
		}
	}

	return resampled, nil
}

// sincKaiser evaluates the windowed-sinc kernel at offset x input samples
// from the interpolation center.
func sincKaiser(x, cutoff, halfWidth, i0Beta float64) float64 {
	if math.Abs(x) >= halfWidth {
		return 0
	}

	// Kaiser window
	t := x / halfWidth
	window := besselI0(resampleKaiserBeta*math.Sqrt(1-t*t)) / i0Beta

	return cutoff * sinc(cutoff*x) * window
}

func sinc(x float64) float64 {
	if x == 0 {
		return 1
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// besselI0 computes the zeroth-order modified Bessel function of the first
// kind via its power series. Converges quickly for the argument range the
// Kaiser window uses.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	half := x / 2
	for k := 1; k < 32; k++ {
		term *= (half / float64(k)) * (half / float64(k))
		sum += term
		if term < 1e-12*sum {
			break
		}
	}
	return sum
}
