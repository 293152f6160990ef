package analysis

import (
	"context"
	"log/slog"
	"time"

	"github.com/KirkDiggler/shipyard-negotiation/internal/domain/firstlogin"
	dnderr "github.com/KirkDiggler/shipyard-negotiation/internal/errors"
)

// DefaultPrimaryTimeout bounds a single call to the primary analyzer
const DefaultPrimaryTimeout = 4 * time.Second

// FallbackConfig holds the dependencies for the composite analyzer
type FallbackConfig struct {
	// Primary is optional. Without it every call goes to Fallback.
	Primary  Analyzer
	Fallback Analyzer
	Timeout  time.Duration
	Logger   *slog.Logger
}

// FallbackAnalyzer tries the primary analyzer under a deadline and silently
// degrades to the fallback on timeout, error or out-of-range scores.
type FallbackAnalyzer struct {
	primary  Analyzer
	fallback Analyzer
	timeout  time.Duration
	logger   *slog.Logger
}

// NewFallbackAnalyzer creates the composite analyzer
func NewFallbackAnalyzer(cfg *FallbackConfig) *FallbackAnalyzer {
	if cfg == nil {
		panic("fallback config is required")
	}
	if cfg.Fallback == nil {
		panic("fallback analyzer is required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultPrimaryTimeout
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &FallbackAnalyzer{
		primary:  cfg.Primary,
		fallback: cfg.Fallback,
		timeout:  timeout,
		logger:   logger,
	}
}

// Name implements Analyzer
func (f *FallbackAnalyzer) Name() string {
	if f.primary == nil {
		return f.fallback.Name()
	}
	return f.primary.Name() + "+" + f.fallback.Name()
}

// Analyze implements Analyzer. AnalyzerUnavailable never escapes this method.
func (f *FallbackAnalyzer) Analyze(ctx context.Context, req *Request) (*firstlogin.AnalysisResult, error) {
	if f.primary != nil {
		result, err := f.callPrimary(ctx, req)
		if err == nil {
			result.Source = firstlogin.SourcePrimary
			return result, nil
		}

		f.logger.Warn("primary analyzer unavailable, using fallback",
			"session_id", sessionID(req),
			"analyzer", f.primary.Name(),
			"error", err)
	}

	result, err := f.fallback.Analyze(ctx, req)
	if err != nil {
		return nil, dnderr.Wrapf(err, "fallback analyzer %s failed", f.fallback.Name()).
			WithMeta("session_id", sessionID(req))
	}
	result.Source = firstlogin.SourceHeuristic
	return result, nil
}

type primaryOutcome struct {
	result *firstlogin.AnalysisResult
	err    error
}

// callPrimary runs the primary analyzer in its own goroutine so a client
// that ignores its context still cannot hold the caller past the deadline.
func (f *FallbackAnalyzer) callPrimary(ctx context.Context, req *Request) (*firstlogin.AnalysisResult, error) {
	ctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	done := make(chan primaryOutcome, 1)
	go func() {
		result, err := f.primary.Analyze(ctx, req)
		done <- primaryOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		if out.err != nil {
			return nil, dnderr.AnalyzerUnavailable(out.err, f.primary.Name())
		}
		if out.result == nil || !inRange(out.result) {
			return nil, dnderr.AnalyzerUnavailable(dnderr.Internalf("invalid primary result"), f.primary.Name())
		}
		return out.result, nil
	case <-ctx.Done():
		return nil, dnderr.AnalyzerUnavailable(ctx.Err(), f.primary.Name())
	}
}
