package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	// DefaultGeocodeURL is the open-meteo geocoding endpoint.
	DefaultGeocodeURL = "https://geocoding-api.open-meteo.com/v1/search"
	// DefaultForecastURL is the open-meteo forecast endpoint.
	DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"
	// DefaultTimeout bounds each API call.
	DefaultTimeout = 10 * time.Second
)

// Location is one geocoding hit.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Conditions is the current weather at a location.
type Conditions struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	Code        int     `json:"weathercode"`
}

// Client talks to the geocoding and forecast APIs.
type Client struct {
	httpClient  *http.Client
	geocodeURL  string
	forecastURL string
}

// NewClient creates an API client with the given endpoints. Empty URLs fall
// back to the public open-meteo endpoints.
func NewClient(httpClient *http.Client, geocodeURL, forecastURL string) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: DefaultTimeout}
	}
	if geocodeURL == "" {
		geocodeURL = DefaultGeocodeURL
	}
	if forecastURL == "" {
		forecastURL = DefaultForecastURL
	}

	return &Client{
		httpClient:  httpClient,
		geocodeURL:  geocodeURL,
		forecastURL: forecastURL,
	}
}

// Geocode resolves a city name to its best-matching location.
// Returns ErrCityNotFound when the API has no hit.
func (c *Client) Geocode(ctx context.Context, city string) (*Location, error) {
	query := url.Values{"name": {city}, "count": {"1"}}

	var payload struct {
		Results []Location `json:"results"`
	}
	if err := c.getJSON(ctx, c.geocodeURL, query, &payload); err != nil {
		return nil, fmt.Errorf("geocoding %q: %w", city, err)
	}
	if len(payload.Results) == 0 {
		return nil, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}
	return &payload.Results[0], nil
}

// Current fetches the current conditions at a location.
func (c *Client) Current(ctx context.Context, loc *Location) (*Conditions, error) {
	query := url.Values{
		"latitude":        {strconv.FormatFloat(loc.Latitude, 'f', 4, 64)},
		"longitude":       {strconv.FormatFloat(loc.Longitude, 'f', 4, 64)},
		"current_weather": {"true"},
	}

	var payload struct {
		CurrentWeather *Conditions `json:"current_weather"`
	}
	if err := c.getJSON(ctx, c.forecastURL, query, &payload); err != nil {
		return nil, fmt.Errorf("fetching weather for %q: %w", loc.Name, err)
	}
	if payload.CurrentWeather == nil {
		return nil, fmt.Errorf("fetching weather for %q: %w", loc.Name, ErrNoConditions)
	}
	return payload.CurrentWeather, nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, query url.Values, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%w: status %d: %s", ErrAPIFailure, resp.StatusCode, body)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}
