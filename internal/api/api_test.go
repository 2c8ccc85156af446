package api

import (
	"bytes"
	"encoding/json"
	"math"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sonory/soundscape-go/internal/analyzer"
	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/myaudio"
	"github.com/sonory/soundscape-go/internal/observability"
	"github.com/sonory/soundscape-go/internal/soundscape"
	"github.com/sonory/soundscape-go/internal/yamnet"
)

type fakeClassifier struct {
	scores      []soundscape.ClassScore
	initialized bool
}

func (f *fakeClassifier) Predict(samples []float32, sampleRate int) ([]soundscape.ClassScore, error) {
	return f.scores, nil
}

func (f *fakeClassifier) IsInitialized() bool {
	return f.initialized
}

func newTestController(t *testing.T, classifier analyzer.Classifier) *Controller {
	t.Helper()

	settings := &conf.Settings{}
	settings.Audio.RMSScale = conf.DefaultRMSScale
	settings.Audio.FetchTimeout = 5
	settings.Audio.MaxRetries = conf.DefaultMaxRetries
	settings.WebServer.Port = "8080"

	processor := myaudio.NewProcessor(settings)
	t.Cleanup(processor.Close)

	anlz := analyzer.New(classifier, processor, soundscape.DefaultTaxonomy(0), 0)
	return New(settings, anlz, nil)
}

func healthyClassifier() *fakeClassifier {
	return &fakeClassifier{
		initialized: true,
		scores: []soundscape.ClassScore{
			{Name: "Car", Score: 0.8},
			{Name: "Bird", Score: 0.3},
		},
	}
}

// toneWAVBytes encodes a one-second 440 Hz mono WAV clip.
func toneWAVBytes(t *testing.T) []byte {
	t.Helper()

	path := filepath.Join(t.TempDir(), "tone.wav")
	out, err := os.Create(path)
	require.NoError(t, err)

	const sampleRate = 16000
	data := make([]int, sampleRate)
	for i := range data {
		data[i] = int(0.5 * 32767 * math.Sin(2*math.Pi*440*float64(i)/float64(sampleRate)))
	}

	encoder := wav.NewEncoder(out, sampleRate, 16, 1, 1)
	require.NoError(t, encoder.Write(&audio.IntBuffer{
		Data:           data,
		Format:         &audio.Format{SampleRate: sampleRate, NumChannels: 1},
		SourceBitDepth: 16,
	}))
	require.NoError(t, encoder.Close())
	require.NoError(t, out.Close())

	payload, err := os.ReadFile(path)
	require.NoError(t, err)
	return payload
}

func postJSON(c *Controller, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set(echoHeaderContentType, "application/json")
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)
	return rec
}

const echoHeaderContentType = "Content-Type"

// multipartUpload builds a multipart body with one file part.
func multipartUpload(t *testing.T, fieldName, fileName, contentType string, payload []byte, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}

	header := textproto.MIMEHeader{}
	header.Set("Content-Disposition", `form-data; name="`+fieldName+`"; filename="`+fileName+`"`)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	part, err := writer.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(payload)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	return body, writer.FormDataContentType()
}

func TestAnalyzeAudio_MissingURL(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	rec := postJSON(c, "/api/v1/analyze/audio", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "audio_url")
	assert.NotEmpty(t, resp.RequestID)
}

func TestAnalyzeAudio_InvalidBody(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	rec := postJSON(c, "/api/v1/analyze/audio", `{not json`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAudio_TopKOutOfRange(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	for _, body := range []string{
		`{"audio_url": "https://example.com/a.wav", "top_k": 0}`,
		`{"audio_url": "https://example.com/a.wav", "top_k": 21}`,
		`{"audio_url": "https://example.com/a.wav", "top_k": -5}`,
	} {
		rec := postJSON(c, "/api/v1/analyze/audio", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestAnalyzeAudio_MaxRetriesOutOfRange(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	for _, body := range []string{
		`{"audio_url": "https://example.com/a.wav", "max_retries": -1}`,
		`{"audio_url": "https://example.com/a.wav", "max_retries": 11}`,
	} {
		rec := postJSON(c, "/api/v1/analyze/audio", body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, "body %s", body)
	}
}

func TestAnalyzeAudio_UnsupportedScheme(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	rec := postJSON(c, "/api/v1/analyze/audio", `{"audio_url": "ftp://example.com/a.wav"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAudioUpload_Success(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	body, contentType := multipartUpload(t, "file", "clip.wav", "audio/wav", toneWAVBytes(t), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var result analyzer.Result
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	require.NotEmpty(t, result.Classifications)
	assert.Equal(t, soundscape.CategoryCar, result.Classifications[0].Label)
	assert.NotEmpty(t, result.Environment.PrimaryType)
	assert.Contains(t, result.PerformanceMetrics, "inference_time")
}

func TestAnalyzeAudioUpload_MissingFile(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	body, contentType := multipartUpload(t, "other", "clip.wav", "audio/wav", []byte("x"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAnalyzeAudioUpload_BadContentType(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	body, contentType := multipartUpload(t, "file", "notes.txt", "text/plain", []byte("hello"), nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "unsupported file type")
}

func TestAnalyzeAudioUpload_EmptyFile(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	body, contentType := multipartUpload(t, "file", "clip.wav", "audio/wav", nil, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "empty file")
}

func TestAnalyzeAudioUpload_TooLarge(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	payload := make([]byte, maxUploadSize+1)
	body, contentType := multipartUpload(t, "file", "big.wav", "audio/wav", payload, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp.Message, "too large")
}

func TestAnalyzeAudioUpload_TopKOutOfRange(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	body, contentType := multipartUpload(t, "file", "clip.wav", "audio/wav", toneWAVBytes(t),
		map[string]string{"top_k": "50"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyze/audio/upload", body)
	req.Header.Set(echoHeaderContentType, contentType)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHealthCheck_Healthy(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, ServiceName, resp.Service)
	assert.Equal(t, ServiceVersion, resp.Version)
	assert.Greater(t, resp.Timestamp, 0.0)
}

func TestHealthCheck_Unhealthy(t *testing.T) {
	c := newTestController(t, &fakeClassifier{initialized: false})

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var resp HealthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "unhealthy", resp.Status)
}

func TestStats(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp StatsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, ServiceName, resp.Service)
	assert.Contains(t, resp.Statistics, "total_analyses")
	assert.Contains(t, resp.Statistics, "success_rate")
}

func TestRequestIDHeader(t *testing.T) {
	c := newTestController(t, healthyClassifier())

	req := httptest.NewRequest(http.MethodGet, "/api/v1/health", http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
}

func TestMetricsEndpoint(t *testing.T) {
	settings := &conf.Settings{}
	settings.Audio.RMSScale = conf.DefaultRMSScale
	settings.Audio.FetchTimeout = 5
	settings.WebServer.Port = "8080"

	processor := myaudio.NewProcessor(settings)
	t.Cleanup(processor.Close)

	metrics, err := observability.NewMetrics()
	require.NoError(t, err)

	anlz := analyzer.New(healthyClassifier(), processor, soundscape.DefaultTaxonomy(0), 0)
	c := New(settings, anlz, metrics)

	req := httptest.NewRequest(http.MethodGet, "/metrics", http.NoBody)
	rec := httptest.NewRecorder()
	c.Echo.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	payload := rec.Body.String()
	assert.Contains(t, payload, "soundscape_model_loaded")
	assert.Contains(t, payload, "soundscape_active_analyses")
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid source", myaudio.ErrInvalidSource, http.StatusBadRequest},
		{"unsupported format", myaudio.ErrUnsupportedFormat, http.StatusBadRequest},
		{"empty signal", myaudio.ErrEmptySignal, http.StatusBadRequest},
		{"too short", myaudio.ErrTooShort, http.StatusBadRequest},
		{"silent", myaudio.ErrSilent, http.StatusBadRequest},
		{"file not found", myaudio.ErrFileNotFound, http.StatusNotFound},
		{"model not initialized", yamnet.ErrNotInitialized, http.StatusServiceUnavailable},
		{"fetch exhausted", myaudio.ErrFetchExhausted, http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errorStatus(tt.err))
		})
	}
}
