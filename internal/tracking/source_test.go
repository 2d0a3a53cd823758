package tracking

import (
	"context"
	"errors"
	"math"
	"sync/atomic"
	"testing"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
)

func TestFollowDrainsChannel(t *testing.T) {
	s := NewSession(testOptions(newFakeClock()), activity.Meta{})
	start := sampleAt(10, 123)
	_ = s.Start(&start)

	samples := make(chan Sample, 4)
	samples <- sampleAt(10.001, 123)
	samples <- sampleAt(math.NaN(), 123)
	samples <- sampleAt(10.002, 123)
	close(samples)

	var applied int32
	err := Follow(context.Background(), s, samples, func(Outcome) { atomic.AddInt32(&applied, 1) })
	if err != nil {
		t.Fatalf("follow: %v", err)
	}
	if applied != 2 {
		t.Fatalf("expected 2 applied samples, got %d", applied)
	}
	if s.Metrics().RoutePointCount != 3 {
		t.Fatalf("expected 3 route points")
	}
}

func TestFollowStopsOnCancel(t *testing.T) {
	s := NewSession(testOptions(newFakeClock()), activity.Meta{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Follow(ctx, s, make(chan Sample), nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected canceled, got %v", err)
	}
}

func TestTickReadsSnapshots(t *testing.T) {
	s := NewSession(Options{}, activity.Meta{})
	start := sampleAt(10, 123)
	_ = s.Start(&start)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	var ticks int32
	Tick(ctx, s, 10*time.Millisecond, func(m Metrics) {
		if m.State != StateActive {
			t.Errorf("unexpected state %s", m.State)
		}
		atomic.AddInt32(&ticks, 1)
	})
	if atomic.LoadInt32(&ticks) < 2 {
		t.Fatalf("expected several ticks, got %d", ticks)
	}
}
