package activity

import (
	"encoding/xml"
	"fmt"
	"io"
	"time"
)

type gpxDoc struct {
	XMLName  xml.Name    `xml:"gpx"`
	Version  string      `xml:"version,attr"`
	Creator  string      `xml:"creator,attr"`
	XMLNS    string      `xml:"xmlns,attr"`
	Metadata gpxMetadata `xml:"metadata"`
	Track    gpxTrack    `xml:"trk"`
}

type gpxMetadata struct {
	Name string    `xml:"name"`
	Time time.Time `xml:"time"`
}

type gpxTrack struct {
	Name    string     `xml:"name"`
	Desc    string     `xml:"desc,omitempty"`
	Segment gpxSegment `xml:"trkseg"`
}

type gpxSegment struct {
	Points []gpxPoint `xml:"trkpt"`
}

type gpxPoint struct {
	Lat float64 `xml:"lat,attr"`
	Lon float64 `xml:"lon,attr"`
}

// WriteGPX encodes the record's route as a single-segment GPX 1.1 track.
func WriteGPX(w io.Writer, rec Record) error {
	doc := gpxDoc{
		Version:  "1.1",
		Creator:  "hikewise",
		XMLNS:    "http://www.topografix.com/GPX/1/1",
		Metadata: gpxMetadata{Name: rec.TrailName, Time: rec.StartTime},
		Track: gpxTrack{
			Name: rec.TrailName,
			Desc: fmt.Sprintf("%.2f km in %s, pace %s min/km", rec.DistanceKm, rec.Duration, rec.AveragePace),
		},
	}
	doc.Track.Segment.Points = make([]gpxPoint, len(rec.Route))
	for i, p := range rec.Route {
		doc.Track.Segment.Points[i] = gpxPoint{Lat: p.Latitude, Lon: p.Longitude}
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return err
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}
	return nil
}
