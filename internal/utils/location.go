package utils

import (
	"time"

	"github.com/bradfitz/latlong"
	"github.com/umahmood/haversine"
)

// DistanceMiles returns the great-circle distance between two points.
func DistanceMiles(lat1, lng1, lat2, lng2 float64) float64 {
	mi, _ := haversine.Distance(
		haversine.Coord{Lat: lat1, Lon: lng1},
		haversine.Coord{Lat: lat2, Lon: lng2},
	)
	return mi
}

// LocationForCoords resolves the IANA timezone for a job site so
// service dates are computed in site-local time. Falls back to UTC
// for coordinates outside the timezone shapefile.
func LocationForCoords(lat, lng float64) *time.Location {
	zone := latlong.LookupZoneName(lat, lng)
	if zone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(zone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// ValidateLatLng checks coordinate range. Returns empty strings if valid,
// otherwise an error code and message suitable for RespondErrorWithCode.
func ValidateLatLng(lat, lng float64) (string, string) {
	if lat < -90 || lat > 90 || lng < -180 || lng > 180 {
		return ErrCodeInvalidPayload, "lat/lng out of range"
	}
	return "", ""
}
