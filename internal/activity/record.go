package activity

import (
	"math"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
)

// DefaultTrailName labels hikes that were not started from a catalog trail.
const DefaultTrailName = "Custom Hike"

// Meta is the caller-supplied context attached to a hike. The trail is never
// looked up, it is carried through to the record as given.
type Meta struct {
	OwnerID   string  `json:"user_id"`
	TrailID   *string `json:"trail_id"`
	TrailName string  `json:"trail_name"`
}

// Record is the finalized summary of one completed hike. Records are values:
// the route is copied when the record is built and on every read.
type Record struct {
	ID           string      `json:"id"`
	OwnerID      string      `json:"userId,omitempty"`
	Date         time.Time   `json:"date"`
	TrailName    string      `json:"trailName"`
	TrailID      *string     `json:"trailId"`
	DistanceKm   float64     `json:"distance"`
	Duration     string      `json:"duration"`
	DurationMs   int64       `json:"durationMs"`
	StartTime    time.Time   `json:"startTime"`
	EndTime      time.Time   `json:"endTime"`
	Route        []geo.Point `json:"routeCoordinates"`
	AveragePace  string      `json:"averagePace"`
	MaxElevation int         `json:"maxElevation"`
}

// Summary holds the computed figures a tracking session hands to NewRecord.
type Summary struct {
	DistanceKm        float64
	Duration          string
	DurationMs        int64
	StartedAt         time.Time
	EndedAt           time.Time
	Route             []geo.Point
	AveragePace       string
	MaxAltitudeMeters float64
}

// NewRecord builds the immutable record for a finished hike.
func NewRecord(id string, meta Meta, sum Summary) Record {
	name := meta.TrailName
	if name == "" {
		name = DefaultTrailName
	}
	var trailID *string
	if meta.TrailID != nil {
		v := *meta.TrailID
		trailID = &v
	}

	start := sum.StartedAt.UTC().Truncate(time.Millisecond)
	end := sum.EndedAt.UTC().Truncate(time.Millisecond)

	return Record{
		ID:           id,
		OwnerID:      meta.OwnerID,
		Date:         end,
		TrailName:    name,
		TrailID:      trailID,
		DistanceKm:   math.Round(sum.DistanceKm*100) / 100,
		Duration:     sum.Duration,
		DurationMs:   sum.DurationMs,
		StartTime:    start,
		EndTime:      end,
		Route:        clonePoints(sum.Route),
		AveragePace:  sum.AveragePace,
		MaxElevation: int(math.Round(sum.MaxAltitudeMeters)),
	}
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	out.Route = clonePoints(r.Route)
	if r.TrailID != nil {
		v := *r.TrailID
		out.TrailID = &v
	}
	return out
}

func clonePoints(src []geo.Point) []geo.Point {
	out := make([]geo.Point, len(src))
	copy(out, src)
	return out
}
