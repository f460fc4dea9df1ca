// Copyright 2025 The rowvec Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package weather

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/rowvec/rowvec/registry"
)

// ToolName is the registry name of the weather tool.
const ToolName = "weather"

// Tool reports current conditions for a city: geocode first, then fetch the
// conditions at the resolved coordinates.
type Tool struct {
	client *Client
	logger *slog.Logger
}

var _ registry.Tool = (*Tool)(nil)

// Option configures the Tool.
type Option func(*Tool)

// WithHTTPClient sets the HTTP client used for API calls.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(t *Tool) {
		t.client.httpClient = httpClient
	}
}

// WithEndpoints overrides the geocoding and forecast endpoints.
func WithEndpoints(geocodeURL, forecastURL string) Option {
	return func(t *Tool) {
		t.client.geocodeURL = geocodeURL
		t.client.forecastURL = forecastURL
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(t *Tool) {
		if logger == nil {
			logger = slog.Default()
		}
		t.logger = logger
	}
}

// NewTool creates the weather tool against the public open-meteo endpoints.
func NewTool(opts ...Option) *Tool {
	t := &Tool{
		client: NewClient(nil, "", ""),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Name returns the registry name.
func (t *Tool) Name() string { return ToolName }

// Description returns the catalog entry.
func (t *Tool) Description() string {
	return "Fetches current weather conditions for a given city."
}

// Initialize prepares the tool. There is nothing to warm up; the endpoints
// are contacted per call.
func (t *Tool) Initialize(_ context.Context) error {
	return nil
}

// Run resolves the city argument and returns its current conditions.
func (t *Tool) Run(ctx context.Context, args map[string]any) (any, error) {
	city, _ := args["city"].(string)
	if city == "" {
		return nil, ErrCityRequired
	}

	loc, err := t.client.Geocode(ctx, city)
	if err != nil {
		return nil, err
	}

	current, err := t.client.Current(ctx, loc)
	if err != nil {
		return nil, err
	}

	t.logger.Debug("weather lookup", "city", loc.Name, "code", current.Code)
	return map[string]any{
		"city":          loc.Name,
		"country":       loc.Country,
		"latitude":      loc.Latitude,
		"longitude":     loc.Longitude,
		"temperature_c": current.Temperature,
		"windspeed_kmh": current.WindSpeed,
		"conditions":    describeCode(current.Code),
	}, nil
}

// describeCode maps a WMO weather code to a short description.
func describeCode(code int) string {
	switch {
	case code == 0:
		return "clear sky"
	case code <= 3:
		return "partly cloudy"
	case code <= 48:
		return "fog"
	case code <= 57:
		return "drizzle"
	case code <= 67:
		return "rain"
	case code <= 77:
		return "snow"
	case code <= 82:
		return "rain showers"
	case code <= 86:
		return "snow showers"
	case code <= 99:
		return "thunderstorm"
	default:
		return "unknown"
	}
}
