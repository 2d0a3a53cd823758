package tracking

import (
	"testing"
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
)

func distanceBetween(lat1, lng1, lat2, lng2 float64) float64 {
	return geo.HaversineKm(lat1, lng1, lat2, lng2)
}

func TestFormatDuration(t *testing.T) {
	start := time.Date(2024, 5, 1, 6, 0, 0, 0, time.UTC)

	cases := []struct {
		end  time.Time
		want string
		ms   int64
	}{
		{start.Add(90 * time.Minute).Add(5 * time.Second), "01:30:05", 5405000},
		{start.Add(26 * time.Hour), "26:00:00", 93600000},
		{start.Add(999 * time.Millisecond), "00:00:00", 999},
		{start, "00:00:00", 0},
		{start.Add(-time.Minute), "00:00:00", 0},
	}
	for _, c := range cases {
		got, ms := FormatDuration(start, c.end)
		if got != c.want || ms != c.ms {
			t.Fatalf("FormatDuration(%v) = %s %d, want %s %d", c.end.Sub(start), got, ms, c.want, c.ms)
		}
	}

	if got, _ := FormatDuration(time.Time{}, start); got != "00:00:00" {
		t.Fatalf("zero start should clamp, got %s", got)
	}
}

func TestAveragePace(t *testing.T) {
	cases := []struct {
		km, minutes float64
		want        string
	}{
		{1, 1, "1:00"},
		{2, 25, "12:30"},
		{3.2, 40, "12:30"},
		{0.5, 7.25, "14:30"},
		{0, 10, PacePlaceholder},
		{-1, 10, PacePlaceholder},
		{1, 0, "0:00"},
	}
	for _, c := range cases {
		if got := AveragePace(c.km, c.minutes); got != c.want {
			t.Fatalf("AveragePace(%v, %v) = %s, want %s", c.km, c.minutes, got, c.want)
		}
	}
}

func TestMedianSmoother(t *testing.T) {
	s := NewMedianSmoother(4)
	got := []float64{}
	for _, v := range []float64{10, 50, 12, 11, 500, 13} {
		got = append(got, s.Smooth(v))
	}
	// window widened to 5: medians of the trailing readings
	want := []float64{10, 30, 12, 11.5, 12, 13}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("step %d: got %v want %v", i, got[i], want[i])
		}
	}

	if NewMedianSmoother(1).Smooth(42) != 42 {
		t.Fatalf("small window should pass through")
	}
}
