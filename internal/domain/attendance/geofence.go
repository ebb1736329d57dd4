package attendance

import "math"

// Mean Earth radius in meters.
const earthRadiusMeters = 6371000.0

type Point struct {
	Latitude  float64
	Longitude float64
}

// Distance returns the great-circle distance between two points in meters,
// computed with the Haversine formula.
func Distance(a, b Point) float64 {
	lat1 := a.Latitude * math.Pi / 180
	lat2 := b.Latitude * math.Pi / 180
	dLat := (b.Latitude - a.Latitude) * math.Pi / 180
	dLon := (b.Longitude - a.Longitude) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// CheckRadius validates that pos lies within radius meters of office. The
// boundary is inclusive; a radius of zero requires exact coincidence. On
// failure the returned OutOfRangeError carries the computed distance for
// display.
func CheckRadius(pos, office Point, radius float64) error {
	distance := Distance(pos, office)
	if distance <= radius {
		return nil
	}
	return &OutOfRangeError{
		DistanceMeters: int(math.Round(distance)),
		RadiusMeters:   int(math.Round(radius)),
	}
}
