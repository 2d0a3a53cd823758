package live

import (
	"time"

	"github.com/KboyVillahermosa/HikeWise/internal/activity"
	"github.com/KboyVillahermosa/HikeWise/internal/shared/geo"
	"github.com/KboyVillahermosa/HikeWise/internal/tracking"
)

// SamplePayload is a position fix as posted by a device.
type SamplePayload struct {
	Latitude       *float64   `json:"latitude" validate:"required,latitude"`
	Longitude      *float64   `json:"longitude" validate:"required,longitude"`
	AltitudeMeters *float64   `json:"altitude_m"`
	AccuracyMeters *float64   `json:"accuracy_m" validate:"omitempty,gte=0"`
	CapturedAt     *time.Time `json:"captured_at"`
}

// Sample converts the payload, stamping now when the device sent no time.
func (p SamplePayload) Sample(now time.Time) tracking.Sample {
	s := tracking.Sample{
		AltitudeMeters: p.AltitudeMeters,
		AccuracyMeters: p.AccuracyMeters,
		CapturedAt:     now,
	}
	if p.Latitude != nil {
		s.Latitude = *p.Latitude
	}
	if p.Longitude != nil {
		s.Longitude = *p.Longitude
	}
	if p.CapturedAt != nil {
		s.CapturedAt = *p.CapturedAt
	}
	return s
}

// StartRequest starts a hike. Initial is validated by the session itself so a
// missing or unusable fix maps to position unavailable.
type StartRequest struct {
	DeviceID  string         `json:"device_id" validate:"omitempty,max=128"`
	TrailID   *string        `json:"trail_id" validate:"omitempty,max=128"`
	TrailName string         `json:"trail_name" validate:"max=200"`
	Initial   *SamplePayload `json:"initial" validate:"-"`
}

type StartResponse struct {
	SessionID string           `json:"session_id"`
	Metrics   tracking.Metrics `json:"metrics"`
}

type IngestResponse struct {
	Outcome tracking.Outcome `json:"outcome"`
	Metrics tracking.Metrics `json:"metrics"`
}

type RouteResponse struct {
	SessionID string      `json:"session_id"`
	Points    []geo.Point `json:"points"`
}

// StopResponse carries the finalized record, which is pending until saved.
type StopResponse struct {
	Activity activity.Record `json:"activity"`
	Pending  bool            `json:"pending"`
}
