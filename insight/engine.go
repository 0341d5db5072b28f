// Package insight generates short analytical observations about quiz
// performance by proxying a local inference backend. It owns the prompt
// guardrails (validation, injection sanitization, templating), a bounded
// LRU response cache, and the concurrency gate that protects a shared
// GPU-constrained backend. Everything the web layer knows about language
// models goes through the Engine.
package insight

import (
	"context"
	"errors"
	"time"

	"github.com/skepesis/skepesis/backends"
	"github.com/skepesis/skepesis/internal/cache"
	"github.com/skepesis/skepesis/internal/circuitbreaker"
	"github.com/skepesis/skepesis/internal/gate"
	"github.com/skepesis/skepesis/internal/logging"
	"github.com/skepesis/skepesis/internal/metrics"
)

// Generation limits and defaults.
const (
	// MaxOutputTokens is the hard ceiling on any generation, regardless of
	// what the caller asks for.
	MaxOutputTokens = 512
	// DefaultTemperature keeps analytical output mostly deterministic.
	DefaultTemperature = 0.3

	defaultCacheSize     = 100
	defaultCacheTTL      = 5 * time.Minute
	defaultMaxConcurrent = 2
	defaultQueueTimeout  = 30 * time.Second
)

// EngineConfig tunes the cache, the concurrency gate, and the circuit
// breaker. The zero value selects sensible defaults.
type EngineConfig struct {
	CacheSize        int
	CacheTTL         time.Duration
	MaxConcurrent    int
	QueueTimeout     time.Duration
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Options controls a single Generate call.
type Options struct {
	// System overrides the default system instruction. When set, the
	// template catalog is bypassed and the sanitized prompt is sent as-is.
	System string
	// Template selects a catalog template. Empty means the sanitized
	// prompt is used verbatim as the task content.
	Template Template
	// Length selects the response-length preset. Empty defers to the
	// template's default.
	Length Length
	// Temperature in [0,1]. Nil selects DefaultTemperature.
	Temperature *float64
	// MaxTokens caps output tokens; capped at MaxOutputTokens. Zero defers
	// to the length preset.
	MaxTokens int
	// KeepMarkdown leaves markdown markup in the cleaned response.
	KeepMarkdown bool
	// SkipValidation bypasses the prompt guardrails (trusted internal
	// callers rendering their own prompt text).
	SkipValidation bool
	// BypassCache forces a downstream call regardless of cache state.
	BypassCache bool
}

// Engine orchestrates validation, prompt construction, caching, the
// concurrency gate, and the downstream call.
type Engine struct {
	backend backends.Generator
	cache   *cache.LRU
	gate    *gate.Gate
	breaker *circuitbreaker.Breaker
}

// NewEngine creates an Engine over the given backend.
func NewEngine(backend backends.Generator, cfg EngineConfig) *Engine {
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = defaultCacheSize
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.MaxConcurrent <= 0 {
		cfg.MaxConcurrent = defaultMaxConcurrent
	}
	if cfg.QueueTimeout <= 0 {
		cfg.QueueTimeout = defaultQueueTimeout
	}
	return &Engine{
		backend: backend,
		cache:   cache.NewLRU(cfg.CacheSize, cfg.CacheTTL),
		gate:    gate.New(cfg.MaxConcurrent, cfg.QueueTimeout),
		breaker: circuitbreaker.New(cfg.BreakerThreshold, 1, cfg.BreakerCooldown),
	}
}

// Generate runs the full pipeline: validation, sanitization, prompt
// construction, cache lookup, gate acquire, the downstream call, and
// response cleaning.
// The returned text is cleaned and ready for display.
func (e *Engine) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	start := time.Now()
	log := logging.FromContext(ctx)
	tmplLabel := string(opts.Template)
	if tmplLabel == "" {
		tmplLabel = "none"
	}

	if opts.Template != "" && !opts.Template.Valid() {
		metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "rejected").Inc()
		return "", &ValidationError{Reason: "unknown template: " + string(opts.Template)}
	}

	if !opts.SkipValidation {
		if err := ValidatePrompt(prompt); err != nil {
			metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "rejected").Inc()
			return "", err
		}
	}

	temperature := DefaultTemperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
		if temperature < 0 || temperature > 1 {
			metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "rejected").Inc()
			return "", &ValidationError{Reason: "temperature must be between 0 and 1"}
		}
	}

	sanitized := Sanitize(prompt)

	var system, formatted string
	if opts.System != "" {
		system, formatted = opts.System, sanitized
	} else {
		system, formatted = BuildPrompt(sanitized, opts.Template)
	}

	maxTokens := e.effectiveMaxTokens(opts)

	key := cache.Key(formatted, system, temperature, maxTokens)
	if !opts.BypassCache {
		if cached, ok := e.cache.Get(key); ok {
			metrics.CacheHits.Inc()
			metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "cache_hit").Inc()
			log.Debug("insight cache hit", "template", tmplLabel, "latency_ms", time.Since(start).Milliseconds())
			return cached, nil
		}
		metrics.CacheMisses.Inc()
	}

	gateStart := time.Now()
	if err := e.gate.Acquire(ctx); err != nil {
		if errors.Is(err, gate.ErrBusy) {
			metrics.GateRejections.Inc()
			metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "busy").Inc()
			log.Warn("generation queued too long, rejecting",
				"template", tmplLabel,
				"waited_ms", time.Since(gateStart).Milliseconds(),
			)
			return "", ErrBusy
		}
		return "", err
	}
	defer e.gate.Release()
	metrics.GateWait.Observe(time.Since(gateStart).Seconds())

	if !e.breaker.Allow() {
		metrics.BackendErrors.WithLabelValues("circuit_open").Inc()
		metrics.BreakerState.Set(float64(e.breaker.State()))
		metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "error").Inc()
		log.Warn("inference circuit open, rejecting without downstream call", "template", tmplLabel)
		return "", ErrBackendUnavailable
	}

	result, err := e.backend.Generate(ctx, backends.GenerateRequest{
		Prompt:      formatted,
		System:      system,
		Temperature: temperature,
		MaxTokens:   maxTokens,
	})
	latency := time.Since(start)
	metrics.InsightDuration.WithLabelValues(tmplLabel).Observe(latency.Seconds())

	if err != nil {
		e.breaker.RecordFailure()
		metrics.BreakerState.Set(float64(e.breaker.State()))
		metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "error").Inc()
		return "", e.mapBackendError(ctx, err)
	}
	e.breaker.RecordSuccess()
	metrics.BreakerState.Set(float64(e.breaker.State()))

	cleaned := CleanResponse(result.Text, !opts.KeepMarkdown, MaxResponseLength)

	// A bypass generation is never cached; only requests that consulted
	// the cache may populate it.
	if !opts.BypassCache {
		e.cache.Set(key, cleaned)
	}

	metrics.InsightRequestsTotal.WithLabelValues(tmplLabel, "success").Inc()
	log.Info("insight generated",
		"template", tmplLabel,
		"model", e.backend.Model(),
		"response_length", len(cleaned),
		"latency_ms", latency.Milliseconds(),
	)
	return cleaned, nil
}

// effectiveMaxTokens resolves the output token ceiling from the request,
// the length preset, and the template default, clamped to MaxOutputTokens.
func (e *Engine) effectiveMaxTokens(opts Options) int {
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		switch {
		case opts.Length != "":
			maxTokens = opts.Length.Tokens()
		case opts.Template != "":
			maxTokens = opts.Template.DefaultLength().Tokens()
		default:
			maxTokens = MaxOutputTokens
		}
	}
	if maxTokens > MaxOutputTokens {
		maxTokens = MaxOutputTokens
	}
	return maxTokens
}

// mapBackendError folds downstream failures into the caller-facing
// taxonomy. Full detail is logged here and not leaked to end users.
func (e *Engine) mapBackendError(ctx context.Context, err error) error {
	log := logging.FromContext(ctx)

	var statusErr *backends.StatusError
	switch {
	case errors.Is(err, backends.ErrTimeout):
		metrics.BackendErrors.WithLabelValues("timeout").Inc()
		log.Error("inference request timed out", "error", err.Error())
		return ErrBackendTimeout
	case errors.Is(err, backends.ErrUnavailable):
		metrics.BackendErrors.WithLabelValues("unavailable").Inc()
		log.Error("inference backend unreachable", "error", err.Error())
		return ErrBackendUnavailable
	case errors.As(err, &statusErr):
		metrics.BackendErrors.WithLabelValues("status").Inc()
		log.Error("inference backend error status", "status", statusErr.Code, "body", statusErr.Body)
		return ErrBackendStatus
	default:
		metrics.BackendErrors.WithLabelValues("unexpected").Inc()
		log.Error("unexpected inference failure", "error", err.Error())
		return ErrGeneration
	}
}

// HealthCheck probes downstream availability. It never returns an error;
// any failure reads as unhealthy.
func (e *Engine) HealthCheck(ctx context.Context) bool {
	return e.backend.Health(ctx)
}

// Model returns the backend's model identifier.
func (e *Engine) Model() string {
	return e.backend.Model()
}

// CacheStats returns hit/miss statistics for monitoring.
func (e *Engine) CacheStats() cache.Stats {
	return e.cache.Stats()
}

// ClearCache removes all cached responses.
func (e *Engine) ClearCache() {
	e.cache.Clear()
}

// Close releases the backend's pooled connections.
func (e *Engine) Close() {
	e.backend.Close()
}
