// Package cascade runs ordered fallback chains.
//
// GPS extraction, bowl detection and OCR fallbacks all follow the same
// shape: try a strategy, and if it produced nothing, try the next one. A
// chain is a slice of Strategy values driven by First.
package cascade

import (
	"context"
	"errors"
	"log/slog"
)

// ErrUnavailable marks a strategy that cannot run in this environment, such
// as a platform tool that is not installed. First logs it at debug level
// instead of treating it as a failure.
var ErrUnavailable = errors.New("strategy unavailable")

// Strategy is one named attempt in a chain.
//
// Run returns ok=false with a nil error when the strategy ran but found
// nothing. A non-nil error is logged and the chain moves on.
type Strategy[T any] struct {
	Name string
	Run  func(ctx context.Context) (T, bool, error)
}

// First runs the strategies in order and returns the first success along
// with the name of the strategy that produced it. It returns ok=false when
// every strategy came up empty or the context was cancelled.
func First[T any](ctx context.Context, logger *slog.Logger, chain string, strategies []Strategy[T]) (T, string, bool) {
	var zero T
	if logger == nil {
		logger = slog.Default()
	}

	for _, s := range strategies {
		if err := ctx.Err(); err != nil {
			logger.Debug("chain cancelled", "chain", chain, "stage", s.Name, "error", err)
			return zero, "", false
		}

		v, ok, err := s.Run(ctx)
		switch {
		case errors.Is(err, ErrUnavailable):
			logger.Debug("stage unavailable", "chain", chain, "stage", s.Name, "reason", err)
		case err != nil:
			logger.Warn("stage failed", "chain", chain, "stage", s.Name, "error", err)
		case ok:
			logger.Debug("stage succeeded", "chain", chain, "stage", s.Name)
			return v, s.Name, true
		default:
			logger.Debug("stage found nothing", "chain", chain, "stage", s.Name)
		}
	}

	logger.Debug("chain exhausted", "chain", chain)
	return zero, "", false
}
