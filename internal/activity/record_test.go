package activity

import (
	"testing"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
)

func sampleRecord(id, owner string, end time.Time) Record {
	trail := "trail-9"
	return NewRecord(id, Meta{OwnerID: owner, TrailID: &trail, TrailName: "Ridge Loop"}, Summary{
		DistanceKm:        1.23456,
		Duration:          "00:30:00",
		DurationMs:        1800000,
		StartedAt:         end.Add(-30 * time.Minute),
		EndedAt:           end,
		Route:             []geo.Point{{Latitude: 10, Longitude: 20}, {Latitude: 10.001, Longitude: 20}},
		AveragePace:       "24:18",
		MaxAltitudeMeters: 1510.6,
	})
}

func TestNewRecord(t *testing.T) {
	end := time.Date(2024, 5, 1, 9, 30, 0, 123456789, time.FixedZone("PHT", 8*3600))
	rec := sampleRecord("a-1", "user-1", end)

	if rec.DistanceKm != 1.23 {
		t.Fatalf("expected distance rounded to 1.23, got %v", rec.DistanceKm)
	}
	if rec.MaxElevation != 1511 {
		t.Fatalf("expected max elevation 1511, got %d", rec.MaxElevation)
	}
	if rec.EndTime.Location() != time.UTC || rec.EndTime.Nanosecond() != 123000000 {
		t.Fatalf("expected utc millisecond end time, got %v", rec.EndTime)
	}
	if !rec.Date.Equal(rec.EndTime) {
		t.Fatalf("expected date to equal end time")
	}
	if rec.TrailID == nil || *rec.TrailID != "trail-9" {
		t.Fatalf("expected trail id carried through")
	}
}

func TestNewRecordDefaults(t *testing.T) {
	rec := NewRecord("a-2", Meta{}, Summary{})
	if rec.TrailName != DefaultTrailName {
		t.Fatalf("expected default trail name, got %q", rec.TrailName)
	}
	if rec.TrailID != nil {
		t.Fatalf("expected nil trail id")
	}
	if rec.Route == nil || len(rec.Route) != 0 {
		t.Fatalf("expected empty non-nil route")
	}
}

func TestRecordIsolation(t *testing.T) {
	route := []geo.Point{{Latitude: 1, Longitude: 1}}
	rec := NewRecord("a-3", Meta{}, Summary{Route: route})
	route[0].Latitude = 50
	if rec.Route[0].Latitude != 1 {
		t.Fatalf("record shares route with caller")
	}

	clone := rec.Clone()
	clone.Route[0].Latitude = 60
	if rec.Route[0].Latitude != 1 {
		t.Fatalf("clone shares route with original")
	}
}
