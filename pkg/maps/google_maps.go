package maps

import (
	"context"
	"fmt"

	"googlemaps.github.io/maps"
)

type GoogleMapsProvider struct {
	client *maps.Client
}

func NewGoogleMapsProvider(apiKey string) (*GoogleMapsProvider, error) {
	client, err := maps.NewClient(maps.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Google Maps client: %w", err)
	}

	return &GoogleMapsProvider{
		client: client,
	}, nil
}

func (g *GoogleMapsProvider) Geocode(ctx context.Context, address string) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		Address: address,
	}

	resp, err := g.client.Geocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("geocoding failed: %w", err)
	}

	return &GeocodeResponse{Results: convertGeocodeResults(resp)}, nil
}

func (g *GoogleMapsProvider) ReverseGeocode(ctx context.Context, lat, lng float64) (*GeocodeResponse, error) {
	req := &maps.GeocodingRequest{
		LatLng: &maps.LatLng{Lat: lat, Lng: lng},
	}

	resp, err := g.client.ReverseGeocode(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("reverse geocoding failed: %w", err)
	}

	return &GeocodeResponse{Results: convertGeocodeResults(resp)}, nil
}

func convertGeocodeResults(resp []maps.GeocodingResult) []GeocodeResult {
	results := make([]GeocodeResult, len(resp))
	for i, result := range resp {
		results[i] = GeocodeResult{
			PlaceID: result.PlaceID,
			Address: result.FormattedAddress,
			Coordinates: Location{
				Latitude:  result.Geometry.Location.Lat,
				Longitude: result.Geometry.Location.Lng,
			},
			Types: result.Types,
		}
	}
	return results
}

func (g *GoogleMapsProvider) GetDirections(ctx context.Context, request *DirectionsRequest) (*DirectionsResponse, error) {
	req := &maps.DirectionsRequest{
		Origin:      fmt.Sprintf("%f,%f", request.Origin.Latitude, request.Origin.Longitude),
		Destination: fmt.Sprintf("%f,%f", request.Destination.Latitude, request.Destination.Longitude),
		Mode:        maps.Mode(request.Mode),
	}

	// "shortest" is approximated by avoiding highways; the Directions API
	// has no native shortest-path preference.
	if request.Preference == "shortest" {
		req.Avoid = append(req.Avoid, maps.AvoidHighways)
	}
	for _, a := range request.Avoid {
		req.Avoid = append(req.Avoid, maps.Avoid(a))
	}

	resp, _, err := g.client.Directions(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("directions request failed: %w", err)
	}

	routes := make([]Route, len(resp))
	for i, route := range resp {
		if len(route.Legs) == 0 {
			continue
		}
		leg := route.Legs[0]

		points := make([]Location, 0, len(leg.Steps)+1)
		for _, step := range leg.Steps {
			points = append(points, Location{
				Latitude:  step.StartLocation.Lat,
				Longitude: step.StartLocation.Lng,
			})
		}
		if n := len(leg.Steps); n > 0 {
			points = append(points, Location{
				Latitude:  leg.Steps[n-1].EndLocation.Lat,
				Longitude: leg.Steps[n-1].EndLocation.Lng,
			})
		}

		routes[i] = Route{
			Summary: route.Summary,
			Points:  points,
			Distance: Distance{
				Text:  leg.Distance.HumanReadable,
				Value: float64(leg.Distance.Meters),
			},
			Duration: Duration{
				Text:  leg.Duration.String(),
				Value: int(leg.Duration.Seconds()),
			},
			Polyline: route.OverviewPolyline.Points,
		}
	}

	return &DirectionsResponse{Routes: routes}, nil
}
