// Package analyzer orchestrates the analysis pipeline: acquisition,
// preprocessing, inference and category mapping, with statistics and health
// reporting on top.
package analyzer

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/sonory/soundscape-go/internal/conf"
	"github.com/sonory/soundscape-go/internal/errors"
	"github.com/sonory/soundscape-go/internal/logging"
	"github.com/sonory/soundscape-go/internal/myaudio"
	"github.com/sonory/soundscape-go/internal/observability/metrics"
	"github.com/sonory/soundscape-go/internal/soundscape"
)

// Classifier is the inference backend. Satisfied by yamnet.Model.
type Classifier interface {
	Predict(samples []float32, sampleRate int) ([]soundscape.ClassScore, error)
	IsInitialized() bool
}

// Result is the full payload for one completed analysis.
type Result struct {
	Classifications    []soundscape.CategoryResult    `json:"classifications"`
	Environment        soundscape.EnvironmentAnalysis `json:"environment"`
	AudioMetadata      myaudio.Metadata               `json:"audio_metadata"`
	ProcessingInfo     myaudio.ProcessingInfo         `json:"processing_info"`
	PerformanceMetrics map[string]float64             `json:"performance_metrics"`
	Timestamp          time.Time                      `json:"timestamp"`
}

// urlCacheTTL is how long URL analysis results are reused.
const urlCacheTTL = 5 * time.Minute

// Analyzer composes the pipeline stages and tracks service statistics.
type Analyzer struct {
	classifier Classifier
	processor  *myaudio.Processor
	taxonomy   *soundscape.Taxonomy
	topK       int

	stats    stats
	metrics  *metrics.AnalyzerMetrics
	urlCache *cache.Cache
	log      *slog.Logger
}

// SetMetrics attaches Prometheus metric collectors. Optional; without it the
// analyzer only keeps its internal counters.
func (a *Analyzer) SetMetrics(m *metrics.AnalyzerMetrics) {
	a.metrics = m
	if m != nil {
		m.SetModelLoaded(a.classifier.IsInitialized())
	}
}

// New creates an Analyzer. topK <= 0 selects the configured default.
func New(classifier Classifier, processor *myaudio.Processor, taxonomy *soundscape.Taxonomy, topK int) *Analyzer {
	if topK <= 0 {
		topK = conf.DefaultTopK
	}
	log := logging.ForService("analyzer")
	if log == nil {
		log = slog.Default().With("service", "analyzer")
	}
	return &Analyzer{
		classifier: classifier,
		processor:  processor,
		taxonomy:   taxonomy,
		topK:       topK,
		urlCache:   cache.New(urlCacheTTL, 10*time.Minute),
		log:        log,
	}
}

// AnalyzeURL downloads and analyzes audio from an HTTP(S) URL. Results are
// cached briefly per URL, a cache hit skips the whole pipeline. topK and
// maxRetries <= 0 select the configured defaults.
func (a *Analyzer) AnalyzeURL(ctx context.Context, audioURL string, topK, maxRetries int) (*Result, error) {
	if cached, found := a.urlCache.Get(cacheKey(audioURL, topK)); found {
		a.log.Debug("analysis cache hit", "url", audioURL)
		return cached.(*Result), nil
	}

	result, err := a.run("url", topK, func(ctx context.Context) (*myaudio.ProcessedAudio, error) {
		return a.processor.ProcessURL(ctx, audioURL, maxRetries)
	})(ctx)
	if err != nil {
		return nil, err
	}

	a.urlCache.SetDefault(cacheKey(audioURL, topK), result)
	return result, nil
}

// AnalyzeBytes analyzes an in-memory audio payload.
func (a *Analyzer) AnalyzeBytes(ctx context.Context, data []byte, filenameHint string, topK int) (*Result, error) {
	return a.run("bytes", topK, func(ctx context.Context) (*myaudio.ProcessedAudio, error) {
		return a.processor.ProcessBytes(ctx, data, filenameHint)
	})(ctx)
}

// AnalyzeFile analyzes a local audio file.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string, topK int) (*Result, error) {
	return a.run("file", topK, func(ctx context.Context) (*myaudio.ProcessedAudio, error) {
		return a.processor.ProcessFile(ctx, path)
	})(ctx)
}

// run wraps one pipeline execution with statistics, metrics and logging.
func (a *Analyzer) run(source string, topK int, acquire func(context.Context) (*myaudio.ProcessedAudio, error)) func(context.Context) (*Result, error) {
	return func(ctx context.Context) (*Result, error) {
		start := time.Now()
		a.stats.begin()
		if a.metrics != nil {
			a.metrics.ActiveAnalysesGauge.Inc()
			defer a.metrics.ActiveAnalysesGauge.Dec()
		}

		processed, err := acquire(ctx)
		if err != nil {
			a.recordFailure(source)
			return nil, err
		}

		result, err := a.analyze(processed, topK, start)
		if err != nil {
			a.recordFailure(source)
			return nil, err
		}

		elapsed := time.Since(start)
		a.stats.succeed(elapsed)
		if a.metrics != nil {
			a.metrics.RecordAnalysis(source, "success")
			a.metrics.RecordDuration("total", elapsed.Seconds())
			a.metrics.RecordEnvironment(result.Environment.PrimaryType)
		}
		a.log.Info("analysis completed",
			"source", source,
			"processing_time", elapsed.Seconds(),
			"classifications", len(result.Classifications))

		return result, nil
	}
}

func (a *Analyzer) recordFailure(source string) {
	a.stats.fail()
	if a.metrics != nil {
		a.metrics.RecordAnalysis(source, "failure")
	}
}

// analyze runs inference and mapping on a preprocessed waveform.
func (a *Analyzer) analyze(processed *myaudio.ProcessedAudio, topK int, start time.Time) (*Result, error) {
	if topK <= 0 {
		topK = a.topK
	}

	inferStart := time.Now()
	scores, err := a.classifier.Predict(processed.Samples, processed.SampleRate)
	if err != nil {
		return nil, fmt.Errorf("inference failed: %w", err)
	}
	inferTime := time.Since(inferStart)
	if a.metrics != nil {
		a.metrics.RecordDuration("inference", inferTime.Seconds())
	}

	topScores := topKScores(scores, topK)
	mapped := a.taxonomy.Map(topScores)

	metrics := map[string]float64{
		"inference_time": inferTime.Seconds(),
		"audio_duration": processed.Metadata.Duration,
		"total_time":     time.Since(start).Seconds(),
	}
	if processed.Metadata.Duration > 0 {
		metrics["processing_ratio"] = inferTime.Seconds() / processed.Metadata.Duration
	}

	return &Result{
		Classifications:    mapped.Categories,
		Environment:        mapped.Environment,
		AudioMetadata:      processed.Metadata,
		ProcessingInfo:     processed.Info,
		PerformanceMetrics: metrics,
		Timestamp:          time.Now(),
	}, nil
}

// topKScores returns the k highest-scoring classes in descending order.
func topKScores(scores []soundscape.ClassScore, k int) []soundscape.ClassScore {
	sorted := make([]soundscape.ClassScore, len(scores))
	copy(sorted, scores)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})
	if k < len(sorted) {
		sorted = sorted[:k]
	}
	return sorted
}

func cacheKey(audioURL string, topK int) string {
	return fmt.Sprintf("%s|%d", audioURL, topK)
}

// HealthStatus reports service health for the health endpoint.
type HealthStatus struct {
	Healthy             bool           `json:"healthy"`
	ModelInitialized    bool           `json:"model_initialized"`
	AudioProcessorReady bool           `json:"audio_processor_ready"`
	Error               string         `json:"error,omitempty"`
	Statistics          map[string]any `json:"statistics"`
}

// HealthCheck reports whether the service can accept analysis requests.
func (a *Analyzer) HealthCheck() HealthStatus {
	status := HealthStatus{
		ModelInitialized:    a.classifier.IsInitialized(),
		AudioProcessorReady: a.processor != nil,
		Statistics:          a.Stats(),
	}
	status.Healthy = status.ModelInitialized && status.AudioProcessorReady
	if !status.ModelInitialized {
		status.Error = errors.NewStd("classifier not initialized").Error()
	}
	return status
}
