package search

import "math"

// EarthRadiusKm is the mean Earth radius used for every distance in the
// service, so the in-memory ranker and $centerSphere agree on membership.
const EarthRadiusKm = 6371.0

func toRadians(deg float64) float64 { return deg * math.Pi / 180 }
func toDegrees(rad float64) float64 { return rad * 180 / math.Pi }

// HaversineMeters returns the great-circle distance between two points.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return EarthRadiusKm * 1000 * c
}

// RoundKm converts meters to kilometers rounded to one decimal.
func RoundKm(meters float64) float64 {
	return math.Round(meters/100) / 10
}

// Destination returns the point reached by travelling distanceKm from
// (lat, lng) along the initial bearing, in degrees clockwise from north.
func Destination(lat, lng, distanceKm, bearingDeg float64) (float64, float64) {
	angular := distanceKm / EarthRadiusKm
	bearing := toRadians(bearingDeg)
	lat1 := toRadians(lat)
	lng1 := toRadians(lng)

	lat2 := math.Asin(math.Sin(lat1)*math.Cos(angular) +
		math.Cos(lat1)*math.Sin(angular)*math.Cos(bearing))
	lng2 := lng1 + math.Atan2(
		math.Sin(bearing)*math.Sin(angular)*math.Cos(lat1),
		math.Cos(angular)-math.Sin(lat1)*math.Sin(lat2),
	)
	return toDegrees(lat2), toDegrees(lng2)
}
