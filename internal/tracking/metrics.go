package tracking

import (
	"fmt"
	"math"
	"time"
)

// PacePlaceholder is reported when no distance has been covered yet.
const PacePlaceholder = "--:--"

// FormatDuration renders end-start as HH:MM:SS and returns the raw
// milliseconds. Non-positive durations clamp to zero.
func FormatDuration(start, end time.Time) (string, int64) {
	ms := end.Sub(start).Milliseconds()
	if start.IsZero() || end.IsZero() || ms <= 0 {
		return "00:00:00", 0
	}

	total := ms / 1000
	hours := total / 3600
	minutes := (total / 60) % 60
	seconds := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, seconds), ms
}

// AveragePace returns minutes per kilometer as M:SS.
func AveragePace(distanceKm, elapsedMinutes float64) string {
	if distanceKm <= 0 || math.IsNaN(distanceKm) || elapsedMinutes < 0 {
		return PacePlaceholder
	}
	pace := elapsedMinutes / distanceKm
	if math.IsNaN(pace) || math.IsInf(pace, 0) {
		return PacePlaceholder
	}

	// work in whole seconds so 0.99999 minutes does not render as 0:59
	totalSeconds := int64(math.Floor(pace*60 + 1e-6))
	return fmt.Sprintf("%d:%02d", totalSeconds/60, totalSeconds%60)
}

// Metrics is a read-only snapshot of a session for display.
type Metrics struct {
	State             State     `json:"state"`
	DistanceKm        float64   `json:"distance_km"`
	ElapsedMs         int64     `json:"elapsed_ms"`
	Duration          string    `json:"duration"`
	Pace              string    `json:"pace_min_per_km"`
	MaxAltitudeMeters float64   `json:"max_altitude_m"`
	HasAltitude       bool      `json:"has_altitude"`
	RoutePointCount   int       `json:"route_point_count"`
	Stale             bool      `json:"stale"`
	StartedAt         time.Time `json:"started_at,omitempty"`
	LastSampleAt      time.Time `json:"last_sample_at,omitempty"`
}
