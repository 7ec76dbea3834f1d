package domain

import "fmt"

// AddressOnlyDisplay is the displayDistance marker for rows produced by an
// address-only search, where no direction data exists.
const AddressOnlyDisplay = "주소 기반 검색"

// walkMetersPerMinute is the walking-speed estimate used to derive a
// walking time from a driving distance.
const walkMetersPerMinute = 75

// FormatDistance renders meters for display, switching to kilometers with
// one decimal at 1000m.
func FormatDistance(meters int) string {
	if meters < 1000 {
		return fmt.Sprintf("%dm", meters)
	}
	return fmt.Sprintf("%.1fkm", float64(meters)/1000)
}

// DisplayDistance builds the human distance string for a restaurant row.
// Rows without direction data (sentinel zero) get the address-only marker.
func DisplayDistance(distanceMeters, durationMinutes int) string {
	if distanceMeters <= 0 || durationMinutes <= 0 {
		return AddressOnlyDisplay
	}
	walk := (distanceMeters + walkMetersPerMinute/2) / walkMetersPerMinute
	return fmt.Sprintf("%s (차량 %d분, 도보 약 %d분)",
		FormatDistance(distanceMeters), durationMinutes, walk)
}
