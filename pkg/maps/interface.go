package maps

import "context"

// RoutingProvider is the routing/geocoding collaborator. Route output is an
// opaque descriptor to the dispatch core: the polyline, distance and duration
// are stored on the token verbatim.
type RoutingProvider interface {
	Geocode(ctx context.Context, address string) (*GeocodeResponse, error)
	ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error)
	GetDirections(ctx context.Context, request *DirectionsRequest) (*DirectionsResponse, error)
}

type GeocodeResponse struct {
	Results []GeocodeResult `json:"results"`
}

type GeocodeResult struct {
	PlaceID     string   `json:"place_id"`
	Address     string   `json:"formatted_address"`
	Coordinates Location `json:"geometry"`
	Types       []string `json:"types"`
}

type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type DirectionsRequest struct {
	Origin      Location `json:"origin"`
	Destination Location `json:"destination"`
	Mode        string   `json:"mode"`             // driving, walking
	Preference  string   `json:"preference"`       // fastest, shortest
	Avoid       []string `json:"avoid,omitempty"`  // tolls, highways, ferries
}

type DirectionsResponse struct {
	Routes []Route `json:"routes"`
}

type Route struct {
	Summary  string     `json:"summary"`
	Points   []Location `json:"points"`
	Distance Distance   `json:"distance"`
	Duration Duration   `json:"duration"`
	Polyline string     `json:"overview_polyline"`
}

type Distance struct {
	Text  string  `json:"text"`
	Value float64 `json:"value"` // in meters
}

type Duration struct {
	Text  string `json:"text"`
	Value int    `json:"value"` // in seconds
}
