package myaudio

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"time"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
)

// transcodeTimeout bounds a single ffmpeg invocation.
const transcodeTimeout = 60 * time.Second

// transcodeToWAV converts any container ffmpeg understands into mono 16-bit
// PCM WAV at the target sample rate. The caller owns the returned temp file
// and must remove it.
func (p *Processor) transcodeToWAV(ctx context.Context, inputPath string) (string, error) {
	outFile, err := os.CreateTemp("", "soundscape-transcode-*.wav")
	if err != nil {
		return "", errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Context("operation", "create-transcode-output").
			Build()
	}
	outPath := outFile.Name()
	_ = outFile.Close()

	cmdCtx, cancel := context.WithTimeout(ctx, transcodeTimeout)
	defer cancel()

	start := time.Now()
	cmd := exec.CommandContext(cmdCtx, p.settings.Audio.FfmpegPath,
		"-hide_banner",
		"-loglevel", "error",
		"-i", inputPath,
		"-acodec", "pcm_s16le",
		"-ac", strconv.Itoa(conf.NumChannels),
		"-ar", strconv.Itoa(conf.SampleRate),
		"-y",
		outPath,
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		_ = os.Remove(outPath)
		return "", errors.New(fmt.Errorf("%w: %w", ErrTranscodeFailed, err)).
			Component("myaudio").
			Category(errors.CategoryTranscode).
			Context("ffmpeg_output", string(output)).
			Timing("transcode", time.Since(start)).
			FileContext(inputPath, 0).
			Build()
	}

	// ffmpeg can exit zero without writing output for some corrupt inputs
	if info, statErr := os.Stat(outPath); statErr != nil || info.Size() == 0 {
		_ = os.Remove(outPath)
		return "", errors.New(fmt.Errorf("%w: no output produced", ErrTranscodeFailed)).
			Component("myaudio").
			Category(errors.CategoryTranscode).
			FileContext(inputPath, 0).
			Build()
	}

	p.log.Debug("transcoded to WAV",
		"input", inputPath,
		"duration_ms", time.Since(start).Milliseconds())

	return outPath, nil
}
