package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculateDistanceMeters(t *testing.T) {
	// PGIMER to GMCH Sector 32 is roughly 6.2 km.
	d := CalculateDistanceMeters(30.7649, 76.7764, 30.7089, 76.7766)
	assert.InDelta(t, 6230, d, 300)
}

func TestCalculateDistanceMetersZero(t *testing.T) {
	assert.Equal(t, float64(0), CalculateDistanceMeters(30.74, 76.78, 30.74, 76.78))
}

func TestCalculateDistanceMetersSymmetric(t *testing.T) {
	a := CalculateDistanceMeters(30.74, 76.78, 30.90, 76.95)
	b := CalculateDistanceMeters(30.90, 76.95, 30.74, 76.78)
	assert.InDelta(t, a, b, 1e-6)
}

func TestETASeconds(t *testing.T) {
	// 10 km at 40 km/h takes 15 minutes.
	assert.InDelta(t, 900, ETASeconds(10000, 40), 0.01)
}

func TestETASecondsUnknownSpeed(t *testing.T) {
	assert.Equal(t, float64(0), ETASeconds(10000, 0))
	assert.Equal(t, float64(0), ETASeconds(10000, -5))
}

func TestDirectionFromHeading(t *testing.T) {
	cases := []struct {
		heading float64
		want    TravelDirection
	}{
		{0, DirectionSouthNorth},
		{44.9, DirectionSouthNorth},
		{315, DirectionSouthNorth},
		{359, DirectionSouthNorth},
		{45, DirectionWestEast},
		{90, DirectionWestEast},
		{134.9, DirectionWestEast},
		{135, DirectionNorthSouth},
		{180, DirectionNorthSouth},
		{224.9, DirectionNorthSouth},
		{225, DirectionEastWest},
		{270, DirectionEastWest},
		{314.9, DirectionEastWest},
		{360, DirectionSouthNorth},
		{-90, DirectionEastWest},
		{450, DirectionWestEast},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, DirectionFromHeading(tc.heading), "heading %v", tc.heading)
	}
}

func TestIsWithinRadiusMeters(t *testing.T) {
	assert.True(t, IsWithinRadiusMeters(30.74, 76.78, 30.741, 76.781, 500))
	assert.False(t, IsWithinRadiusMeters(30.74, 76.78, 30.90, 76.95, 500))
}
