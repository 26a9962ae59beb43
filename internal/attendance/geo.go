package attendance

import (
	"fmt"
	"math"

	"edutrack/internal/apperr"
)

const earthRadiusMeters = 6371000

// GeoResult is the outcome of a geofence check.
type GeoResult struct {
	WithinRadius   bool
	DistanceMeters float64
}

// OutOfRangeError reports a geofence miss with the computed distance.
type OutOfRangeError struct {
	DistanceMeters float64
}

func (e *OutOfRangeError) Error() string {
	return fmt.Sprintf("you are %dm away from the class location", int(e.DistanceMeters))
}

// VerifyGeofence computes the great-circle distance between the claimed
// position and the geofence center. The boundary is inclusive: a point
// exactly at the radius is inside.
func VerifyGeofence(center Location, radiusMeters float64, claimed Location) (GeoResult, error) {
	if err := validateCoordinate(center); err != nil {
		return GeoResult{}, err
	}
	if err := validateCoordinate(claimed); err != nil {
		return GeoResult{}, err
	}
	d := Distance(center, claimed)
	return GeoResult{WithinRadius: d <= radiusMeters, DistanceMeters: d}, nil
}

// Distance returns the haversine distance in meters between two points.
func Distance(a, b Location) float64 {
	lat1 := radians(a.Latitude)
	lat2 := radians(b.Latitude)
	dLat := radians(b.Latitude - a.Latitude)
	dLon := radians(b.Longitude - a.Longitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

func validateCoordinate(l Location) error {
	if math.IsNaN(l.Latitude) || math.IsInf(l.Latitude, 0) ||
		math.IsNaN(l.Longitude) || math.IsInf(l.Longitude, 0) {
		return apperr.New(apperr.InvalidLocation, "coordinates must be finite")
	}
	if l.Latitude < -90 || l.Latitude > 90 {
		return apperr.Newf(apperr.InvalidLocation, "latitude %v out of range", l.Latitude)
	}
	if l.Longitude < -180 || l.Longitude > 180 {
		return apperr.Newf(apperr.InvalidLocation, "longitude %v out of range", l.Longitude)
	}
	return nil
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
