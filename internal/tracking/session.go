package tracking

import (
	"log/slog"
	"math"
	"sync"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
)

// State is the lifecycle state of a Session.
type State string

const (
	StateIdle      State = "idle"
	StateActive    State = "active"
	StateCompleted State = "completed"
	StateDiscarded State = "discarded"
)

// Outcome describes what Ingest did with a sample.
type Outcome string

const (
	// OutcomeAppended: the sample became a route point and its distance was added.
	OutcomeAppended Outcome = "appended"
	// OutcomeFiltered: below the movement threshold; only lastSampleAt and
	// altitude were updated.
	OutcomeFiltered Outcome = "filtered"
	// OutcomeIgnored: the session was not Active.
	OutcomeIgnored Outcome = "ignored"
	// OutcomeRejected: malformed or refused by the accuracy policy.
	OutcomeRejected Outcome = "rejected"
)

// Session tracks one hike. It is safe for concurrent use: a single writer
// lock covers every mutation so a route append and its distance update are
// never observed apart.
type Session struct {
	mu   sync.RWMutex
	opts Options
	meta activity.Meta
	log  *slog.Logger

	state           State
	route           []geo.Point
	totalDistanceKm float64
	startedAt       time.Time
	endedAt         time.Time
	lastSampleAt    time.Time
	maxAltitude     float64
	hasAltitude     bool
	smoother        AltitudeSmoother
	saved           bool
}

// NewSession returns an Idle session.
func NewSession(opts Options, meta activity.Meta) *Session {
	opts = opts.withDefaults()
	var smoother AltitudeSmoother = passthrough{}
	if opts.NewSmoother != nil {
		smoother = opts.NewSmoother()
	}
	return &Session{
		opts:     opts,
		meta:     meta,
		log:      opts.Logger,
		state:    StateIdle,
		smoother: smoother,
	}
}

// Start seeds the route with the initial fix and moves the session to Active.
func (s *Session) Start(initial *Sample) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		return ErrAlreadyStarted
	}
	if initial == nil || initial.Validate() != nil {
		return ErrPositionUnavailable
	}

	now := s.opts.Now()
	s.route = append(make([]geo.Point, 0, 64), initial.Point())
	s.totalDistanceKm = 0
	s.startedAt = now
	s.lastSampleAt = now
	s.observeAltitude(initial.AltitudeMeters)
	s.state = StateActive
	return nil
}

// Ingest applies one sample. Samples arriving outside Active are ignored
// without error so a late delivery can never fail tracking.
func (s *Session) Ingest(sample Sample) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		s.log.Debug("sample ignored", "state", s.state, "captured_at", sample.CapturedAt)
		return OutcomeIgnored, nil
	}
	if err := sample.Validate(); err != nil {
		return OutcomeRejected, err
	}

	threshold := s.opts.MinMovementMeters
	if acc := sample.AccuracyMeters; acc != nil {
		switch s.opts.Accuracy.Mode {
		case AccuracyReject:
			if *acc > s.opts.Accuracy.MaxAccuracyMeters {
				return OutcomeRejected, ErrLowAccuracy
			}
		case AccuracyGate:
			threshold = math.Max(threshold, *acc)
		}
	}

	point := sample.Point()
	deltaKm := geo.DistanceKm(s.route[len(s.route)-1], point)

	s.lastSampleAt = s.opts.Now()
	s.observeAltitude(sample.AltitudeMeters)

	if threshold > 0 && deltaKm*1000 < threshold {
		return OutcomeFiltered, nil
	}

	s.route = append(s.route, point)
	s.totalDistanceKm += deltaKm
	return OutcomeAppended, nil
}

// Stop finalizes the hike and returns its record. The session cannot be
// restarted afterwards.
func (s *Session) Stop() (activity.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateActive {
		return activity.Record{}, ErrNotTracking
	}

	end := s.opts.Now()
	duration, durationMs := FormatDuration(s.startedAt, end)
	rec := activity.NewRecord(s.opts.NewID(), s.meta, activity.Summary{
		DistanceKm:        s.totalDistanceKm,
		Duration:          duration,
		DurationMs:        durationMs,
		StartedAt:         s.startedAt,
		EndedAt:           end,
		Route:             s.route,
		AveragePace:       AveragePace(s.totalDistanceKm, minutes(end.Sub(s.startedAt))),
		MaxAltitudeMeters: s.maxAltitude,
	})

	s.endedAt = end
	s.state = StateCompleted
	s.log.Info("hike completed",
		"activity_id", rec.ID,
		"distance_km", rec.DistanceKm,
		"duration", rec.Duration,
		"points", len(rec.Route),
	)
	return rec, nil
}

// Discard abandons an Active hike, or a Completed one whose record was not
// saved. No record is produced.
func (s *Session) Discard() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.state == StateActive:
		s.endedAt = s.opts.Now()
	case s.state == StateCompleted && !s.saved:
	default:
		return ErrNotTracking
	}
	s.state = StateDiscarded
	return nil
}

// MarkSaved records that the Stop result was persisted, which closes the
// discard window.
func (s *Session) MarkSaved() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateCompleted {
		s.saved = true
	}
}

// State returns the current lifecycle state.
func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Meta returns the caller context the session was created with.
func (s *Session) Meta() activity.Meta {
	return s.meta
}

// Stale reports whether an Active session has gone without samples for
// longer than StaleAfter. It is advisory and never changes state.
func (s *Session) Stale() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.staleLocked(s.opts.Now())
}

// Route returns a copy of the recorded route.
func (s *Session) Route() []geo.Point {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]geo.Point, len(s.route))
	copy(out, s.route)
	return out
}

// Metrics returns a consistent snapshot of the live figures.
func (s *Session) Metrics() Metrics {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.opts.Now()
	end := now
	if s.state != StateActive {
		end = s.endedAt
	}
	duration, elapsedMs := FormatDuration(s.startedAt, end)

	return Metrics{
		State:             s.state,
		DistanceKm:        s.totalDistanceKm,
		ElapsedMs:         elapsedMs,
		Duration:          duration,
		Pace:              AveragePace(s.totalDistanceKm, float64(elapsedMs)/60000),
		MaxAltitudeMeters: s.maxAltitude,
		HasAltitude:       s.hasAltitude,
		RoutePointCount:   len(s.route),
		Stale:             s.staleLocked(now),
		StartedAt:         s.startedAt,
		LastSampleAt:      s.lastSampleAt,
	}
}

func (s *Session) staleLocked(now time.Time) bool {
	if s.state != StateActive || s.opts.StaleAfter <= 0 {
		return false
	}
	return now.Sub(s.lastSampleAt) > s.opts.StaleAfter
}

func (s *Session) observeAltitude(alt *float64) {
	if alt == nil {
		return
	}
	v := s.smoother.Smooth(*alt)
	if !s.hasAltitude || v > s.maxAltitude {
		s.maxAltitude = v
		s.hasAltitude = true
	}
}

func minutes(d time.Duration) float64 {
	if d <= 0 {
		return 0
	}
	return d.Minutes()
}
