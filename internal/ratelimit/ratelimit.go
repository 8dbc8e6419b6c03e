// Package ratelimit paces how fast lazy results are pulled.
package ratelimit

import (
	"context"
	"iter"

	"golang.org/x/time/rate"
)

// Limiter admits pulls at a fixed rate with a burst of one.
type Limiter struct {
	limiter *rate.Limiter
}

// New creates a limiter admitting perSecond pulls per second. Zero or a
// negative rate admits every pull immediately.
func New(perSecond float64) *Limiter {
	return &Limiter{limiter: rate.NewLimiter(toLimit(perSecond), 1)}
}

func toLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// Wait blocks until the next pull is admitted or ctx is done.
func (l *Limiter) Wait(ctx context.Context) error {
	return l.limiter.Wait(ctx)
}

// Allow reports whether a pull is admitted now, without blocking.
func (l *Limiter) Allow() bool {
	return l.limiter.Allow()
}

// SetLimit changes the rate of a running limiter.
func (l *Limiter) SetLimit(perSecond float64) {
	l.limiter.SetLimit(toLimit(perSecond))
}

// Limit returns the rate in pulls per second, 0 when unlimited.
func (l *Limiter) Limit() float64 {
	limit := l.limiter.Limit()
	if limit == rate.Inf {
		return 0
	}
	return float64(limit)
}

// Throttle pulls from seq no faster than l admits. The work of producing each
// element only starts once its pull is admitted. When ctx ends first the
// sequence yields the context error and stops.
func Throttle[T any](ctx context.Context, l *Limiter, seq iter.Seq[T]) iter.Seq2[T, error] {
	return func(yield func(T, error) bool) {
		next, stop := iter.Pull(seq)
		defer stop()

		for {
			if err := l.Wait(ctx); err != nil {
				var zero T
				yield(zero, err)
				return
			}

			v, ok := next()
			if !ok || !yield(v, nil) {
				return
			}
		}
	}
}
