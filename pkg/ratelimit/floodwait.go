package ratelimit

import (
	"context"
	"fmt"
	"time"

	errs "tgscraper/pkg/errors"
	"tgscraper/pkg/logger"
)

// FloodGuard wraps history fetches and absorbs server flood-control signals.
// When a fetch comes back with a flood-wait error, the guard pauses the whole
// pipeline for the mandated duration and re-issues the identical fetch exactly
// once per signal. Consecutive signals on the same fetch are bounded by
// MaxWaits; once exceeded, the flood error surfaces to the caller. All other
// errors pass through untouched.
type FloodGuard struct {
	// MaxWaits bounds consecutive flood signals absorbed for a single fetch
	MaxWaits int
	// Ceiling caps a single pause, whatever the server asks for
	Ceiling time.Duration
	// DefaultWait is used when a signal carries no usable duration
	DefaultWait time.Duration

	Logger logger.Logger
}

// NewFloodGuard creates a guard with the given bounds.
func NewFloodGuard(maxWaits int, ceiling, defaultWait time.Duration, log logger.Logger) *FloodGuard {
	if log == nil {
		log = logger.GetLogger()
	}
	return &FloodGuard{
		MaxWaits:    maxWaits,
		Ceiling:     ceiling,
		DefaultWait: defaultWait,
		Logger:      log,
	}
}

// Do runs fetch under flood-control supervision. The pause is cooperative,
// not a cancellation: ctx cancellation is still honored while paused.
func (g *FloodGuard) Do(ctx context.Context, fetch func() error) error {
	waits := 0
	for {
		err := fetch()
		wait, ok := errs.AsFloodWait(err)
		if !ok {
			return err
		}

		waits++
		if waits > g.MaxWaits {
			g.Logger.ErrorWithFields("flood wait budget exhausted", map[string]interface{}{
				"signals": waits,
				"max":     g.MaxWaits,
			})
			return fmt.Errorf("flood wait repeated %d times: %w", waits, err)
		}

		wait = g.clamp(wait)
		g.Logger.WarnWithFields("flood control, pausing pipeline", map[string]interface{}{
			"wait":   wait,
			"signal": waits,
			"max":    g.MaxWaits,
		})

		if err := sleep(ctx, wait); err != nil {
			return err
		}

		g.Logger.InfoWithFields("flood pause over, retrying fetch", map[string]interface{}{
			"signal": waits,
		})
	}
}

func (g *FloodGuard) clamp(wait time.Duration) time.Duration {
	if wait <= 0 {
		return g.DefaultWait
	}
	if g.Ceiling > 0 && wait > g.Ceiling {
		return g.Ceiling
	}
	return wait
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
