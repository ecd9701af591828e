package utils

import (
	"math"
)

// TravelDirection is a coarse bucket of a compass heading, used by the
// signal-corridor dashboards to describe which way a vehicle is moving.
type TravelDirection string

const (
	DirectionNorthSouth TravelDirection = "N_S"
	DirectionSouthNorth TravelDirection = "S_N"
	DirectionEastWest   TravelDirection = "E_W"
	DirectionWestEast   TravelDirection = "W_E"
)

func CalculateDistanceMeters(lat1, lon1, lat2, lon2 float64) float64 {
	return haversineDistance(lat1, lon1, lat2, lon2)
}

func haversineDistance(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lon1Rad := lon1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	lon2Rad := lon2 * math.Pi / 180

	dLat := lat2Rad - lat1Rad
	dLon := lon2Rad - lon1Rad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1Rad)*math.Cos(lat2Rad)*math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

func IsWithinRadiusMeters(centerLat, centerLon, pointLat, pointLon, radiusMeters float64) bool {
	return CalculateDistanceMeters(centerLat, centerLon, pointLat, pointLon) <= radiusMeters
}

func CalculateBearing(lat1, lon1, lat2, lon2 float64) float64 {
	lat1Rad := lat1 * math.Pi / 180
	lat2Rad := lat2 * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180

	y := math.Sin(dLon) * math.Cos(lat2Rad)
	x := math.Cos(lat1Rad)*math.Sin(lat2Rad) - math.Sin(lat1Rad)*math.Cos(lat2Rad)*math.Cos(dLon)

	bearing := math.Atan2(y, x) * 180 / math.Pi
	bearing = math.Mod(bearing+360, 360)

	return bearing
}

// ETASeconds estimates travel time for a distance at a given speed. A
// non-positive speed yields 0, meaning "unknown" - callers must never read
// 0 as "arrived".
func ETASeconds(distanceMeters, speedKmh float64) float64 {
	if speedKmh <= 0 {
		return 0
	}
	return distanceMeters / (speedKmh * 1000 / 3600)
}

// DirectionFromHeading buckets a compass heading into one of four coarse
// travel directions using 90-degree sectors centered on the cardinal points.
// The heading is normalized into [0,360) first.
func DirectionFromHeading(headingDegrees float64) TravelDirection {
	h := math.Mod(headingDegrees, 360)
	if h < 0 {
		h += 360
	}

	switch {
	case h >= 315 || h < 45:
		return DirectionSouthNorth // heading north
	case h >= 45 && h < 135:
		return DirectionWestEast // heading east
	case h >= 135 && h < 225:
		return DirectionNorthSouth // heading south
	default:
		return DirectionEastWest // heading west
	}
}
