package myaudio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/sonory/soundscape-go/internal/errors"
)

// maxDownloadSize caps remote audio downloads at 100 MB.
const maxDownloadSize = 100 * 1024 * 1024

// FetchURL downloads audio from an HTTP or HTTPS URL. maxRetries is the
// number of additional attempts after the first one fails. The last cause is
// wrapped into ErrFetchExhausted when every attempt fails.
func (p *Processor) FetchURL(ctx context.Context, rawURL string, maxRetries int) ([]byte, error) {
	parsed, err := url.Parse(rawURL)
	if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") {
		return nil, errors.New(fmt.Errorf("%w: %q", ErrInvalidSource, rawURL)).
			Component("myaudio").
			Category(errors.CategoryValidation).
			NetworkContext(rawURL, 0).
			Build()
	}

	if maxRetries < 0 {
		maxRetries = 0
	}

	timeout := time.Duration(p.settings.Audio.FetchTimeout) * time.Second

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			p.log.Warn("retrying audio download",
				"url", rawURL,
				"attempt", attempt+1,
				"max_attempts", maxRetries+1)
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(time.Duration(attempt) * time.Second):
			}
		}

		data, contentType, err := p.fetchOnce(ctx, rawURL, timeout)
		if err == nil {
			p.log.Debug("audio downloaded",
				"url", rawURL,
				"bytes", len(data),
				"content_type", contentType)
			return data, nil
		}
		lastErr = err
	}

	return nil, errors.New(fmt.Errorf("%w: %w", ErrFetchExhausted, lastErr)).
		Component("myaudio").
		Category(errors.CategoryNetwork).
		NetworkContext(rawURL, timeout).
		Context("attempts", maxRetries+1).
		Build()
}

func (p *Processor) fetchOnce(ctx context.Context, rawURL string, timeout time.Duration) ([]byte, string, error) {
	fetchCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resp, err := p.client.Get(fetchCtx, rawURL)
	if err != nil {
		return nil, "", err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("unexpected status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxDownloadSize+1))
	if err != nil {
		return nil, "", err
	}
	if len(data) > maxDownloadSize {
		return nil, "", fmt.Errorf("response exceeds %d bytes", maxDownloadSize)
	}
	if len(data) == 0 {
		return nil, "", fmt.Errorf("empty response body")
	}

	return data, resp.Header.Get("Content-Type"), nil
}

// ProcessURL downloads audio from a URL and runs the full processing pipeline.
func (p *Processor) ProcessURL(ctx context.Context, rawURL string, maxRetries int) (*ProcessedAudio, error) {
	data, err := p.FetchURL(ctx, rawURL, maxRetries)
	if err != nil {
		return nil, err
	}
	return p.ProcessBytes(ctx, data, filepath.Base(rawURL))
}

// ProcessBytes decodes and preprocesses an in-memory audio payload. The
// filename hint, when present, decides the container format; otherwise the
// format is sniffed from magic bytes. The payload is staged in a temp file so
// the file decoders and ffmpeg can operate on it.
func (p *Processor) ProcessBytes(ctx context.Context, data []byte, filenameHint string) (*ProcessedAudio, error) {
	if len(data) == 0 {
		return nil, errors.New(ErrEmptyInput).
			Component("myaudio").
			Category(errors.CategoryValidation).
			Build()
	}

	ext := determineExtension(data, filenameHint)

	tmpFile, err := os.CreateTemp("", "soundscape-*"+ext)
	if err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Context("operation", "create-temp-file").
			Build()
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Context("operation", "write-temp-file").
			Build()
	}
	if err := tmpFile.Close(); err != nil {
		return nil, errors.New(err).
			Component("myaudio").
			Category(errors.CategoryFileIO).
			Context("operation", "close-temp-file").
			Build()
	}

	return p.ProcessFile(ctx, tmpPath)
}

// ProcessFile decodes and preprocesses a local audio file.
func (p *Processor) ProcessFile(ctx context.Context, path string) (*ProcessedAudio, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, errors.New(fmt.Errorf("%w: %s", ErrFileNotFound, path)).
			Component("myaudio").
			Category(errors.CategoryNotFound).
			FileContext(path, 0).
			Build()
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !slices.Contains(supportedFormats, ext) {
		return nil, errors.New(fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)).
			Component("myaudio").
			Category(errors.CategoryValidation).
			FileContext(path, info.Size()).
			Build()
	}

	samples, sampleRate, channels, err := p.decodeFile(ctx, path, ext)
	if err != nil {
		return nil, err
	}

	metadata := Metadata{
		Duration:   float64(len(samples)) / float64(sampleRate),
		SampleRate: sampleRate,
		Channels:   channels,
		Format:     strings.TrimPrefix(ext, "."),
		FileSize:   info.Size(),
	}

	if err := validateSamples(samples, sampleRate); err != nil {
		return nil, err
	}

	processed, procInfo := p.preprocessWaveform(samples, sampleRate)

	p.logDiagnostics(processed, metadata)

	return &ProcessedAudio{
		Samples:    processed,
		SampleRate: procInfo.TargetSampleRate,
		Metadata:   metadata,
		Info:       procInfo,
	}, nil
}

// determineExtension picks a container extension from the filename hint or,
// failing that, from magic bytes. Defaults to .wav.
func determineExtension(data []byte, filenameHint string) string {
	if filenameHint != "" {
		ext := strings.ToLower(filepath.Ext(filenameHint))
		if slices.Contains(supportedFormats, ext) {
			return ext
		}
	}

	if len(data) >= 4 && bytes.HasPrefix(data, []byte("RIFF")) {
		return ".wav"
	}
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("fLaC")) {
		return ".flac"
	}
	if len(data) >= 4 && bytes.HasPrefix(data, []byte("OggS")) {
		return ".ogg"
	}
	if len(data) >= 3 && (bytes.HasPrefix(data, []byte("ID3")) ||
		(data[0] == 0xFF && (data[1]&0xE0) == 0xE0)) {
		return ".mp3"
	}
	// EBML header used by webm containers
	if len(data) >= 4 && bytes.HasPrefix(data, []byte{0x1A, 0x45, 0xDF, 0xA3}) {
		return ".webm"
	}
	head := data
	if len(head) > 100 {
		head = head[:100]
	}
	if bytes.Contains(head, []byte("webm")) {
		return ".webm"
	}

	return ".wav"
}
