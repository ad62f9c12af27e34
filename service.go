package spectag

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/farcloser/spectag/internal/engine"
	"github.com/farcloser/spectag/internal/metrics"
	"github.com/farcloser/spectag/internal/types"
)

// Per-file statuses reported by batch callers.
const (
	StatusDone           = "done"
	StatusFallback       = "fallback"
	StatusAnalysisFailed = "analysis failed"
	StatusSaveFailed     = "save failed"
)

const defaultTimeout = 120 * time.Second

// Options configures a Service.
type Options struct {
	// Engine is the registered name of the primary engine (default: soundlab).
	Engine string
	// Timeout bounds one analysis (default: 120s). Negative disables it.
	Timeout time.Duration
	// Metrics receives one observation per analysis. Nil disables metrics.
	Metrics *metrics.Recorder
}

// DefaultOptions returns the soundlab engine with a 120 second budget.
func DefaultOptions() Options {
	return Options{
		Engine:  engine.SoundLab,
		Timeout: defaultTimeout,
	}
}

func (o *Options) applyDefaults() {
	if o.Engine == "" {
		o.Engine = engine.SoundLab
	}

	if o.Timeout == 0 {
		o.Timeout = defaultTimeout
	}
}

// Result is the full outcome of one analysis.
type Result struct {
	RunID       string
	Engine      string // engine that produced Suggestions
	Suggestions []Suggestion
	Fallback    bool
	Cause       error // primary engine failure, if any
	Elapsed     time.Duration
}

// Status summarizes the outcome for per-file reporting.
func (r *Result) Status() string {
	switch {
	case r.Cause == nil:
		return StatusDone
	case errors.Is(r.Cause, ErrDecode), errors.Is(r.Cause, ErrConfiguration):
		return StatusAnalysisFailed
	default:
		return StatusFallback
	}
}

// Service runs a primary engine under a time budget and substitutes the rule-based
// fallback engine when it times out or fails.
type Service struct {
	name     string
	engine   Engine
	fallback Engine
	timeout  time.Duration
	metrics  *metrics.Recorder
}

// New resolves the named engine. Unknown names fail with ErrConfiguration.
func New(opts Options) (*Service, error) {
	opts.applyDefaults()

	primary, err := engine.Get(opts.Engine)
	if err != nil {
		return nil, err
	}

	return NewWithEngine(primary, opts), nil
}

// NewWithEngine wraps an already constructed engine.
func NewWithEngine(primary Engine, opts Options) *Service {
	opts.applyDefaults()

	return &Service{
		name:     primary.Name(),
		engine:   primary,
		fallback: &engine.Fallback{},
		timeout:  opts.Timeout,
		metrics:  opts.Metrics,
	}
}

// Name returns the primary engine name.
func (s *Service) Name() string {
	return s.name
}

// Analyze returns the suggestions for source. Engine failures and timeouts degrade to the
// fallback output and are not returned; only an invalid configuration is.
func (s *Service) Analyze(ctx context.Context, source string, override *Config) ([]Suggestion, error) {
	result := s.Run(ctx, source, override)
	if result.Cause != nil && errors.Is(result.Cause, ErrConfiguration) {
		return nil, result.Cause
	}

	return result.Suggestions, nil
}

type outcome struct {
	suggestions []Suggestion
	err         error
}

// Run executes the primary engine on its own goroutine. Past the deadline the goroutine is
// cancelled and abandoned: its late result is discarded.
func (s *Service) Run(ctx context.Context, source string, override *Config) *Result {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Engine: s.name}
	logger := slog.With("run", result.RunID, "engine", s.name, "file", source)

	runCtx, cancel := ctx, context.CancelFunc(func() {})
	if s.timeout > 0 {
		runCtx, cancel = context.WithTimeout(ctx, s.timeout)
	}
	defer cancel()

	done := make(chan outcome, 1)

	go func() {
		defer func() {
			if recovered := recover(); recovered != nil {
				done <- outcome{err: fmt.Errorf("%w: engine panic: %v", types.ErrStageFailure, recovered)}
			}
		}()

		suggestions, err := s.engine.Analyze(runCtx, source, override)
		done <- outcome{suggestions: suggestions, err: err}
	}()

	var out outcome

	select {
	case out = <-done:
	case <-runCtx.Done():
		out.err = runCtx.Err()
	}

	result.Elapsed = time.Since(start)

	switch {
	case out.err == nil:
		result.Suggestions = out.suggestions
		logger.Info("analysis done", "duration_ms", result.Elapsed.Milliseconds(), "suggestions", len(out.suggestions))
		s.metrics.Observe(s.name, metrics.OutcomeOK, result.Elapsed, len(out.suggestions))

		return result
	case errors.Is(out.err, ErrConfiguration):
		result.Cause = out.err
		logger.Error("invalid configuration", "error", out.err)
		s.metrics.Observe(s.name, metrics.OutcomeFailure, result.Elapsed, 0)

		return result
	case errors.Is(out.err, context.DeadlineExceeded):
		result.Cause = fmt.Errorf("%w: after %v: %w", ErrTimeout, s.timeout, out.err)
		logger.Warn("analysis timed out, falling back",
			"elapsed", result.Elapsed, "fallback", engine.RuleFallback)
		s.metrics.Observe(s.name, metrics.OutcomeTimeout, result.Elapsed, 0)
	default:
		result.Cause = out.err
		logger.Error("analysis failed, falling back",
			"elapsed", result.Elapsed, "error", out.err, "fallback", engine.RuleFallback)
		s.metrics.Observe(s.name, metrics.OutcomeFailure, result.Elapsed, 0)
	}

	s.runFallback(ctx, source, override, result, logger)

	return result
}

func (s *Service) runFallback(ctx context.Context, source string, override *Config, result *Result, logger *slog.Logger) {
	result.Fallback = true
	result.Suggestions = []Suggestion{}

	if s.name == engine.RuleFallback {
		logger.Error("fallback engine is the primary engine, returning no suggestions")

		return
	}

	start := time.Now()

	suggestions, err := s.fallback.Analyze(context.WithoutCancel(ctx), source, override)
	if err != nil {
		logger.Error("fallback engine also failed", "fallback", s.fallback.Name(), "error", err)

		return
	}

	result.Engine = s.fallback.Name()
	result.Suggestions = suggestions

	logger.Info("fallback done", "fallback", s.fallback.Name(), "suggestions", len(suggestions))
	s.metrics.Observe(s.fallback.Name(), metrics.OutcomeFallback, time.Since(start), len(suggestions))
}
