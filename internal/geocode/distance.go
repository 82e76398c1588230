package geocode

import (
	"math"
	"time"
)

const earthRadiusMeters = 6371000.0

// averageSpeedKmh is the fixed speed assumption used to derive an indicative
// travel-time estimate from a straight-line distance.
const averageSpeedKmh = 30.0

// Haversine computes the great-circle distance between two points in whole
// meters.
func Haversine(a, b Coordinates) int {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return int(math.Round(earthRadiusMeters * c))
}

// TravelTime derives an indicative travel-time estimate for a distance using
// the fixed average-speed assumption.
func TravelTime(distanceMeters int) time.Duration {
	hours := float64(distanceMeters) / 1000 / averageSpeedKmh
	return time.Duration(hours * float64(time.Hour)).Round(time.Second)
}
