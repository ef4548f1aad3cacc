// Package geo resolves free-text postcodes to reference coordinates and
// provides the great-circle distance used by compiled plans.
package geo

import "math"

// EarthRadiusMiles is the sphere radius used for all distance computation.
// Plans and exports are specified in miles, never kilometres.
const EarthRadiusMiles = 3959

// Miles returns the haversine great-circle distance in miles between two
// latitude/longitude points given in degrees.
//
// This is the same function the store registers as the haversine_miles SQL
// scalar, so Go-side expectations in tests and SQL-side distances in plans
// cannot drift apart.
func Miles(lat1, lon1, lat2, lon2 float64) float64 {
	const rad = math.Pi / 180

	sinLat := math.Sin((lat2 - lat1) * rad / 2)
	sinLon := math.Sin((lon2 - lon1) * rad / 2)

	a := sinLat*sinLat +
		math.Cos(lat1*rad)*math.Cos(lat2*rad)*sinLon*sinLon

	return 2 * EarthRadiusMiles * math.Asin(math.Sqrt(a))
}
