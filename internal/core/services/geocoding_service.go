package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"helpbridge/internal/adapters/persistence/models"
	"helpbridge/internal/adapters/persistence/repositories"
	"helpbridge/internal/config"
	"helpbridge/internal/core/domain"
)

// GeocodeResult is a resolved address
type GeocodeResult struct {
	Latitude    float64
	Longitude   float64
	DisplayName string
}

// Geocoder resolves free-form addresses to coordinates and coordinates back
// to display addresses
type Geocoder interface {
	Forward(ctx context.Context, address string) (*GeocodeResult, error)
	Reverse(ctx context.Context, lat, lon float64) (*GeocodeResult, error)
}

// nominatimResult represents one entry of a Nominatim search response
type nominatimResult struct {
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	DisplayName string `json:"display_name"`
}

// nominatimReverseResult represents a Nominatim reverse response. Nominatim
// answers 200 with an error field when nothing matches the coordinates.
type nominatimReverseResult struct {
	DisplayName string `json:"display_name"`
	Error       string `json:"error"`
}

// NominatimGeocoder resolves addresses against a Nominatim instance
type NominatimGeocoder struct {
	baseURL   string
	userAgent string
	client    *http.Client
}

// NewNominatimGeocoder creates a geocoder with a bounded request timeout
func NewNominatimGeocoder(cfg config.GeocoderConfig) *NominatimGeocoder {
	return &NominatimGeocoder{
		baseURL:   cfg.BaseURL,
		userAgent: cfg.UserAgent,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
	}
}

// Forward resolves an address to coordinates. Transport failures and non-200
// answers surface as ErrGeocodingFailed; an empty result set means the
// address itself could not be resolved.
func (g *NominatimGeocoder) Forward(ctx context.Context, address string) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("q", address)
	params.Set("format", "json")
	params.Set("limit", "1")

	var results []nominatimResult
	if err := g.getJSON(ctx, fmt.Sprintf("%s/search?%s", g.baseURL, params.Encode()), &results); err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, domain.ErrAddressNotFound
	}

	lat, err := strconv.ParseFloat(results[0].Lat, 64)
	if err != nil {
		return nil, domain.ErrGeocodingFailed
	}
	lon, err := strconv.ParseFloat(results[0].Lon, 64)
	if err != nil {
		return nil, domain.ErrGeocodingFailed
	}

	return &GeocodeResult{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: results[0].DisplayName,
	}, nil
}

// Reverse resolves coordinates to a display address
func (g *NominatimGeocoder) Reverse(ctx context.Context, lat, lon float64) (*GeocodeResult, error) {
	params := url.Values{}
	params.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	params.Set("format", "json")

	var result nominatimReverseResult
	if err := g.getJSON(ctx, fmt.Sprintf("%s/reverse?%s", g.baseURL, params.Encode()), &result); err != nil {
		return nil, err
	}
	if result.Error != "" || result.DisplayName == "" {
		return nil, domain.ErrAddressNotFound
	}

	return &GeocodeResult{
		Latitude:    lat,
		Longitude:   lon,
		DisplayName: result.DisplayName,
	}, nil
}

// getJSON performs a GET against the Nominatim instance and decodes the body
func (g *NominatimGeocoder) getJSON(ctx context.Context, reqURL string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("User-Agent", g.userAgent)

	resp, err := g.client.Do(req)
	if err != nil {
		return domain.ErrGeocodingFailed
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.ErrGeocodingFailed
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return domain.ErrGeocodingFailed
	}
	return nil
}

// ResolveLocation turns user-supplied location input into a deduplicated
// location row. Explicit coordinates win over an address; an address alone
// goes through the geocoder. Coordinates without an address are
// reverse-geocoded so the stored row carries a display address and
// deduplicates against address-based lookups of the same place.
func ResolveLocation(ctx context.Context, geocoder Geocoder, locations repositories.LocationRepository, address string, latitude, longitude *float64) (*models.Location, error) {
	if latitude != nil && longitude != nil {
		if address == "" {
			result, err := geocoder.Reverse(ctx, *latitude, *longitude)
			switch {
			case err == nil:
				address = result.DisplayName
			case errors.Is(err, domain.ErrAddressNotFound):
				// Coordinates with no named place are still usable.
			default:
				return nil, err
			}
		}
		return locations.FindOrCreate(ctx, *latitude, *longitude, address)
	}
	if address == "" {
		return nil, domain.ErrNoLocationInput
	}

	result, err := geocoder.Forward(ctx, address)
	if err != nil {
		return nil, err
	}
	return locations.FindOrCreate(ctx, result.Latitude, result.Longitude, result.DisplayName)
}
