package models

import "time"

type RouteKind string
type RoutePreference string

const (
	RouteKindToPatient  RouteKind = "to_patient"
	RouteKindToHospital RouteKind = "to_hospital"

	RoutePreferenceFastest  RoutePreference = "fastest"
	RoutePreferenceShortest RoutePreference = "shortest"
)

// Coordinate is a single (lat,lng) waypoint on a route polyline.
type Coordinate struct {
	Lat float64 `json:"lat" bson:"lat"`
	Lng float64 `json:"lng" bson:"lng"`
}

// RouteLeg is one segment of a transport (ambulance->pickup or
// pickup->hospital) as returned by the routing provider. The leg is stored
// verbatim; nothing in the dispatch core re-derives distance or duration
// from the coordinate list.
type RouteLeg struct {
	Coordinates     []Coordinate    `json:"coordinates" bson:"coordinates" validate:"required,min=2"`
	DistanceMeters  float64         `json:"distance_meters" bson:"distance_meters"`
	DurationSeconds float64         `json:"duration_seconds" bson:"duration_seconds"`
	Kind            RouteKind       `json:"kind" bson:"kind"`
	Preference      RoutePreference `json:"preference" bson:"preference" default:"fastest"`
	CreatedAt       time.Time       `json:"created_at" bson:"created_at"`
}

func (r *RouteLeg) IsValid() bool {
	return r != nil && len(r.Coordinates) >= 2 && r.DistanceMeters >= 0 && r.DurationSeconds >= 0
}
