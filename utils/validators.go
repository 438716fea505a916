// File: /utils/validators.go
package utils

import "math"

func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// ValidateCoordinates returns a ValidationError naming the offending axis.
func ValidateCoordinates(lat, lng float64) error {
	if math.IsNaN(lat) || !IsValidLatitude(lat) {
		return NewValidationError("latitude", "must be between -90 and 90")
	}
	if math.IsNaN(lng) || !IsValidLongitude(lng) {
		return NewValidationError("longitude", "must be between -180 and 180")
	}
	return nil
}

// NonNegative rejects negative or NaN values.
func NonNegative(field string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return NewValidationError(field, "must be greater than or equal to 0")
	}
	return nil
}

// HaversineKm returns the great-circle distance between two points in kilometres.
func HaversineKm(lat1, lon1, lat2, lon2 float64) float64 {
	const earthRadius = 6371 // km

	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadius * c
}

// RoundTo rounds val to the given number of decimal places.
func RoundTo(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
