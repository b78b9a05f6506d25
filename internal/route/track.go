package route

import (
	"math"

	"fitagent/internal/store"
)

const earthRadiusMeters = 6371000

// Track is a derived route track with its aggregates
type Track struct {
	Points   []store.Position
	Distance float64 // meters
	Ascent   float64 // meters climbed
	Descent  float64 // meters descended
}

// DeriveTrack builds a route track from a workout's GPS samples. Samples
// without coordinates are skipped. Cumulative distance uses the sample's
// own distance channel when present, falling back to haversine between
// consecutive points.
func DeriveTrack(samples []store.WorkoutPoint) *Track {
	track := &Track{}

	var prev *store.Position
	for _, s := range samples {
		if s.Lat == nil || s.Lng == nil {
			continue
		}

		p := store.Position{
			Lat:        *s.Lat,
			Lng:        *s.Lng,
			TimeOffset: s.TimeOffset,
		}
		if s.Altitude != nil {
			p.Elevation = *s.Altitude
		}

		if prev == nil {
			p.Distance = 0
			if s.Distance != nil {
				p.Distance = *s.Distance
			}
		} else {
			if s.Distance != nil {
				p.Distance = *s.Distance
			} else {
				p.Distance = prev.Distance + haversine(prev.Lat, prev.Lng, p.Lat, p.Lng)
			}

			climb := p.Elevation - prev.Elevation
			if climb > 0 {
				track.Ascent += climb
			} else {
				track.Descent -= climb
			}
		}

		track.Points = append(track.Points, p)
		prev = &track.Points[len(track.Points)-1]
	}

	if len(track.Points) > 0 {
		track.Distance = track.Points[len(track.Points)-1].Distance - track.Points[0].Distance
	}
	return track
}

// haversine returns the great-circle distance in meters between two
// coordinates.
func haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(a))
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
