package tracking

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// AccuracyMode selects how reported horizontal accuracy affects a sample.
type AccuracyMode int

const (
	// AccuracyAccept ignores reported accuracy.
	AccuracyAccept AccuracyMode = iota
	// AccuracyReject drops samples worse than MaxAccuracyMeters.
	AccuracyReject
	// AccuracyGate raises the movement threshold of a sample to its own
	// accuracy radius.
	AccuracyGate
)

func (m AccuracyMode) String() string {
	switch m {
	case AccuracyReject:
		return "reject"
	case AccuracyGate:
		return "gate"
	default:
		return "accept"
	}
}

// ParseAccuracyMode maps accept, reject and gate to their modes.
func ParseAccuracyMode(s string) (AccuracyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "accept":
		return AccuracyAccept, nil
	case "reject":
		return AccuracyReject, nil
	case "gate":
		return AccuracyGate, nil
	default:
		return AccuracyAccept, fmt.Errorf("unknown accuracy policy %q", s)
	}
}

// AccuracyPolicy decides what happens to samples carrying AccuracyMeters.
// Samples without an accuracy value are always accepted.
type AccuracyPolicy struct {
	Mode              AccuracyMode
	MaxAccuracyMeters float64
}

// Options tunes a Session. The zero value is usable: every valid sample is
// appended, accuracy is ignored and staleness is never reported.
type Options struct {
	// MinMovementMeters filters jitter: a sample closer than this to the last
	// route point only refreshes lastSampleAt and altitude.
	MinMovementMeters float64
	// StaleAfter is the silence window after which Stale reports true.
	StaleAfter time.Duration
	Accuracy   AccuracyPolicy
	// NewSmoother builds the altitude smoother for one session. Nil keeps
	// raw altitudes.
	NewSmoother func() AltitudeSmoother

	Now    func() time.Time
	NewID  func() string
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.NewID == nil {
		o.NewID = uuid.NewString
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}
