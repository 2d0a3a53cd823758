package tracking

import (
	"context"
	"errors"
	"time"
)

// Follow feeds samples from a position source into the session until the
// channel closes or ctx is done. Rejected samples are logged and skipped.
// onApplied, when set, runs after every sample that changed the session.
func Follow(ctx context.Context, s *Session, samples <-chan Sample, onApplied func(Outcome)) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case sample, ok := <-samples:
			if !ok {
				return nil
			}
			outcome, err := s.Ingest(sample)
			if err != nil {
				level := "invalid"
				if errors.Is(err, ErrLowAccuracy) {
					level = "low_accuracy"
				}
				s.log.Warn("sample rejected", "reason", level, "error", err)
				continue
			}
			if onApplied != nil && (outcome == OutcomeAppended || outcome == OutcomeFiltered) {
				onApplied(outcome)
			}
		}
	}
}

// MetricsReader is anything that can produce a live metrics snapshot.
type MetricsReader interface {
	Metrics() Metrics
}

// Tick calls fn with a fresh snapshot every interval until ctx is done. It
// only reads, so it may run alongside Ingest.
func Tick(ctx context.Context, r MetricsReader, every time.Duration, fn func(Metrics)) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	fn(r.Metrics())
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			fn(r.Metrics())
		}
	}
}
