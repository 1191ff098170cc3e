// Package elapsed computes the displayed preparation time of an order.
package elapsed

import (
	"context"
	"sync"
	"time"

	"github.com/corray333/backend-labs/meatshop/internal/service/models/order"
)

const defaultInterval = time.Second

// Compute returns offset + (now - start) while active, or the frozen offset otherwise.
// The result is never negative.
func Compute(start *time.Time, offset time.Duration, active bool, now time.Time) time.Duration {
	d := offset
	if active && start != nil {
		d += now.Sub(*start)
	}
	if d < 0 {
		return 0
	}

	return d
}

// Of returns the displayed elapsed time of o at now.
func Of(o order.Order, now time.Time) time.Duration {
	return Compute(o.PreparationStartTime, o.PreparationElapsed, IsActive(o), now)
}

// IsActive reports whether o is in active preparation.
func IsActive(o order.Order) bool {
	return o.Status == order.StatusPreparing && o.PreparationStartTime != nil
}

// Source returns the latest known state of the tracked order.
type Source func() (order.Order, error)

// Tracker refreshes the displayed elapsed time of one order at a fixed tick.
// It only reads; the stored value is written by the send transition.
type Tracker struct {
	source   Source
	now      func() time.Time
	interval time.Duration

	stopOnce sync.Once
	stop     chan struct{}
}

type option func(*Tracker)

// WithClock replaces time.Now.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithClock(now func() time.Time) option {
	return func(t *Tracker) {
		t.now = now
	}
}

// WithInterval sets the refresh period.
//
//goland:noinspection GoExportedFuncWithUnexportedType
func WithInterval(d time.Duration) option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// NewTracker creates a tracker reading the order from source.
func NewTracker(source Source, opts ...option) *Tracker {
	t := &Tracker{
		source:   source,
		now:      time.Now,
		interval: defaultInterval,
		stop:     make(chan struct{}),
	}
	for _, opt := range opts {
		opt(t)
	}

	return t
}

// Run emits the current value at once and then on every tick.
// The channel closes after the final frozen value once the order leaves
// preparation, when the source fails, on Stop or when ctx is done.
func (t *Tracker) Run(ctx context.Context) <-chan time.Duration {
	out := make(chan time.Duration, 1)

	go func() {
		defer close(out)

		ticker := time.NewTicker(t.interval)
		defer ticker.Stop()

		for {
			o, err := t.source()
			if err != nil {
				return
			}

			select {
			case out <- Of(o, t.now()):
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}

			if !IsActive(o) {
				return
			}

			select {
			case <-ticker.C:
			case <-ctx.Done():
				return
			case <-t.stop:
				return
			}
		}
	}()

	return out
}

// Stop releases the ticker. Safe to call more than once.
func (t *Tracker) Stop() {
	t.stopOnce.Do(func() {
		close(t.stop)
	})
}
