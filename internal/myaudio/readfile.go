package myaudio

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/tphakala/flac"

	"github.com/sonory/soundscape-go/internal/errors"
)

func getAudioDivisor(bitDepth int) (float32, error) {
	switch bitDepth {
	case 16:
		return 32768.0, nil
	case 24:
		return 8388608.0, nil
	case 32:
		return 2147483648.0, nil
	default:
		return 0, errors.Newf("unsupported audio file bit depth: %d", bitDepth).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Context("bit_depth", bitDepth).
			Build()
	}
}

// decodeFile reads a local audio file into mono float32 samples. WAV and FLAC
// are decoded natively; every other supported container goes through ffmpeg
// and is decoded from the resulting WAV.
func (p *Processor) decodeFile(ctx context.Context, path, ext string) (samples []float32, sampleRate, channels int, err error) {
	switch ext {
	case ".wav":
		return p.readWAV(path)
	case ".flac":
		return p.readFLAC(path)
	default:
		wavPath, err := p.transcodeToWAV(ctx, path)
		if err != nil {
			return nil, 0, 0, err
		}
		defer func() {
			_ = os.Remove(wavPath)
		}()
		return p.readWAV(wavPath)
	}
}

func (p *Processor) readWAV(path string) (samples []float32, sampleRate, channels int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	decoder := wav.NewDecoder(file)
	decoder.ReadInfo()
	if !decoder.IsValidFile() {
		return nil, 0, 0, errors.New(fmt.Errorf("%w: input is not a valid WAV audio file", ErrDecodeFailed)).
			Component("myaudio").
			Category(errors.CategoryAudio).
			FileContext(path, 0).
			Build()
	}

	if decoder.NumChans != 1 && decoder.NumChans != 2 {
		return nil, 0, 0, errors.New(fmt.Errorf("%w: unsupported number of channels: %d", ErrDecodeFailed, decoder.NumChans)).
			Component("myaudio").
			Category(errors.CategoryAudio).
			Build()
	}

	divisor, err := getAudioDivisor(int(decoder.BitDepth))
	if err != nil {
		return nil, 0, 0, err
	}

	sampleRate = int(decoder.SampleRate)
	channels = int(decoder.NumChans)

	buf := &audio.IntBuffer{
		Data:   make([]int, 65536),
		Format: &audio.Format{SampleRate: sampleRate, NumChannels: channels},
	}

	for {
		n, err := decoder.PCMBuffer(buf)
		if err != nil {
			return nil, 0, 0, errors.New(fmt.Errorf("%w: %w", ErrDecodeFailed, err)).
				Component("myaudio").
				Category(errors.CategoryAudio).
				FileContext(path, 0).
				Build()
		}
		if n == 0 {
			break
		}

		data := buf.Data[:n]
		if channels == 2 {
			// Downmix interleaved stereo by averaging channel pairs
			for i := 0; i+1 < len(data); i += 2 {
				left := float32(data[i]) / divisor
				right := float32(data[i+1]) / divisor
				samples = append(samples, (left+right)/2)
			}
		} else {
			for _, sample := range data {
				samples = append(samples, float32(sample)/divisor)
			}
		}
	}

	return samples, sampleRate, channels, nil
}

func (p *Processor) readFLAC(path string) (samples []float32, sampleRate, channels int, err error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, 0, 0, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			FileContext(path, 0).
			Build()
	}
	defer func() {
		_ = file.Close()
	}()

	decoder, err := flac.NewDecoder(file)
	if err != nil {
		return nil, 0, 0, errors.New(fmt.Errorf("%w: %w", ErrDecodeFailed, err)).
			Component("myaudio").
			Category(errors.CategoryAudio).
			FileContext(path, 0).
			Build()
	}

	if p.settings.Debug {
		p.log.Debug("decoding FLAC",
			"sample_rate", decoder.SampleRate,
			"bits_per_sample", decoder.BitsPerSample,
			"channels", decoder.NChannels)
	}

	divisor, err := getAudioDivisor(decoder.BitsPerSample)
	if err != nil {
		return nil, 0, 0, err
	}

	sampleRate = decoder.SampleRate
	channels = decoder.NChannels
	bytesPerSample := decoder.BitsPerSample / 8
	frameStride := bytesPerSample * channels

	for {
		frame, err := decoder.Next()
		if err == io.EOF {
			break
		} else if err != nil {
			return nil, 0, 0, errors.New(fmt.Errorf("%w: %w", ErrDecodeFailed, err)).
				Component("myaudio").
				Category(errors.CategoryAudio).
				FileContext(path, 0).
				Build()
		}

		for i := 0; i+frameStride <= len(frame); i += frameStride {
			var sum float32
			for ch := 0; ch < channels; ch++ {
				offset := i + ch*bytesPerSample
				var sample int32
				switch decoder.BitsPerSample {
				case 16:
					sample = int32(int16(binary.LittleEndian.Uint16(frame[offset:])))
				case 24:
					sample = int32(frame[offset]) | int32(frame[offset+1])<<8 | int32(frame[offset+2])<<16
					// Sign-extend 24-bit values
					if sample&0x800000 != 0 {
						sample |= ^int32(0xFFFFFF)
					}
				case 32:
					sample = int32(binary.LittleEndian.Uint32(frame[offset:]))
				}
				sum += float32(sample) / divisor
			}
			samples = append(samples, sum/float32(channels))
		}
	}

	return samples, sampleRate, channels, nil
}
