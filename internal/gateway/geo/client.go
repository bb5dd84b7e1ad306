package geo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	defaultGeocodeURL   = "https://api.mapbox.com/geocoding/v5/mapbox.places/"
	defaultStaticMapURL = "https://api.mapbox.com/styles/v1/mapbox/streets-v12/static/"
)

// ErrGeocode is returned when geocoding fails.
var ErrGeocode = errors.New("error when trying to geocode address")

// ErrDisabled is returned when map features are used without an access token.
var ErrDisabled = errors.New("map features are disabled: no access token configured")

// Point identifies a position on the map.
type Point struct {
	Lat float64
	Lon float64
}

// Client resolves addresses to coordinates and renders static map links.
// Every call needs the provider access token; without one the client
// reports itself disabled and map output is simply skipped.
type Client struct {
	httpClient *http.Client
	geocodeURL string
	staticURL  string
	token      string
}

type coordinate float64

func (c *coordinate) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		value, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
		if err != nil {
			return fmt.Errorf("parse coordinate %q: %w", text, err)
		}
		*c = coordinate(value)
		return nil
	}

	var value float64
	if err := json.Unmarshal(data, &value); err == nil {
		*c = coordinate(value)
		return nil
	}

	return fmt.Errorf("coordinate must be a string or number")
}

type geocodeFeature struct {
	Center    []coordinate `json:"center"`
	PlaceName string       `json:"place_name"`
}

type geocodeResponse struct {
	Features []geocodeFeature `json:"features"`
}

// NewClient creates a geo client. An empty token disables the client.
func NewClient(token string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		geocodeURL: defaultGeocodeURL,
		staticURL:  defaultStaticMapURL,
		token:      strings.TrimSpace(token),
	}
}

// Enabled reports whether an access token is configured.
func (c *Client) Enabled() bool {
	return c.token != ""
}

// Geocode resolves a street address to a map point.
func (c *Client) Geocode(ctx context.Context, address string) (Point, error) {
	if !c.Enabled() {
		return Point{}, ErrDisabled
	}
	address = strings.TrimSpace(address)
	if address == "" {
		return Point{}, fmt.Errorf("%w: empty address", ErrGeocode)
	}

	query := url.Values{}
	query.Set("access_token", c.token)
	query.Set("limit", "1")
	uri := c.geocodeURL + url.PathEscape(address) + ".json?" + query.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return Point{}, fmt.Errorf("build request: %w", err)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrGeocode, err)
	}
	defer func() {
		_ = res.Body.Close()
	}()
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return Point{}, ErrGeocode
	}

	var payload geocodeResponse
	if err := json.NewDecoder(res.Body).Decode(&payload); err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrGeocode, err)
	}
	if len(payload.Features) == 0 || len(payload.Features[0].Center) < 2 {
		return Point{}, ErrGeocode
	}
	return Point{
		Lat: float64(payload.Features[0].Center[1]),
		Lon: float64(payload.Features[0].Center[0]),
	}, nil
}

// StaticMapURL renders a shareable static map link with a pin at the point.
func (c *Client) StaticMapURL(point Point) (string, error) {
	if !c.Enabled() {
		return "", ErrDisabled
	}
	pin := fmt.Sprintf("pin-s+e4572e(%.5f,%.5f)", point.Lon, point.Lat)
	view := fmt.Sprintf("%.5f,%.5f,14", point.Lon, point.Lat)
	return c.staticURL + pin + "/" + view + "/600x400?access_token=" + url.QueryEscape(c.token), nil
}
