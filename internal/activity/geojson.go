package activity

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// RouteFeature renders the record's route as a GeoJSON LineString with the
// route's bounding box, ready for a map layer.
func RouteFeature(rec Record) *geojson.Feature {
	line := make(orb.LineString, len(rec.Route))
	for i, p := range rec.Route {
		line[i] = orb.Point{p.Longitude, p.Latitude}
	}

	f := geojson.NewFeature(line)
	f.ID = rec.ID
	if len(line) > 0 {
		f.BBox = geojson.NewBBox(line.Bound())
	}
	f.Properties["trailName"] = rec.TrailName
	f.Properties["distance"] = rec.DistanceKm
	f.Properties["duration"] = rec.Duration
	f.Properties["averagePace"] = rec.AveragePace
	f.Properties["maxElevation"] = rec.MaxElevation
	return f
}
