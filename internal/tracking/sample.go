package tracking

import (
	"fmt"
	"math"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
)

// Sample is one position fix delivered by a position source.
type Sample struct {
	Latitude       float64   `json:"latitude"`
	Longitude      float64   `json:"longitude"`
	AltitudeMeters *float64  `json:"altitude_m,omitempty"`
	CapturedAt     time.Time `json:"captured_at"`
	AccuracyMeters *float64  `json:"accuracy_m,omitempty"`
}

// Point returns the route point for the sample.
func (s Sample) Point() geo.Point {
	return geo.Point{Latitude: s.Latitude, Longitude: s.Longitude}
}

// Validate returns an error wrapping ErrInvalidSample when the sample cannot
// be used.
func (s Sample) Validate() error {
	if !s.Point().Valid() {
		return fmt.Errorf("%w: coordinates (%v, %v)", ErrInvalidSample, s.Latitude, s.Longitude)
	}
	if s.AltitudeMeters != nil && !finite(*s.AltitudeMeters) {
		return fmt.Errorf("%w: altitude not finite", ErrInvalidSample)
	}
	if s.AccuracyMeters != nil && (!finite(*s.AccuracyMeters) || *s.AccuracyMeters < 0) {
		return fmt.Errorf("%w: accuracy %v", ErrInvalidSample, *s.AccuracyMeters)
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
