package geospatial

import "math"

const earthRadiusM = 6371000.0

// Haversine calculates the great-circle distance in meters between two points.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRad(lat2 - lat1)
	dLng := toRad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRad(lat1))*math.Cos(toRad(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// Project returns the point distanceMeters away from (lat, lng) along the
// given compass bearing, using a flat-earth small-angle approximation.
// Only valid for short distances (a few km); used to synthesize plausible
// positions for places that arrive with an estimated distance but no
// geocoded coordinates.
func Project(lat, lng, distanceMeters, bearingDegrees float64) (float64, float64) {
	b := toRad(bearingDegrees)

	dLat := distanceMeters * math.Cos(b) / 111320.0
	dLng := distanceMeters * math.Sin(b) / (111320.0 * math.Cos(toRad(lat)))

	return lat + dLat, lng + dLng
}

func toRad(deg float64) float64 {
	return deg * math.Pi / 180
}
