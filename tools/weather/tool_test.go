package weather_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rowvec/rowvec/tools/weather"
)

// fakeAPIs serves canned geocoding and forecast responses.
func fakeAPIs(t *testing.T, geocodeBody, forecastBody string, status int) (geocodeURL, forecastURL string) {
	t.Helper()

	geocode := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(geocodeBody))
	}))
	t.Cleanup(geocode.Close)

	forecast := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
		w.Write([]byte(forecastBody))
	}))
	t.Cleanup(forecast.Close)

	return geocode.URL, forecast.URL
}

func TestTool_Metadata(t *testing.T) {
	tool := weather.NewTool()

	assert.Equal(t, "weather", tool.Name())
	assert.NotEmpty(t, tool.Description())
	assert.NoError(t, tool.Initialize(context.Background()))
}

func TestTool_Run(t *testing.T) {
	geocodeURL, forecastURL := fakeAPIs(t,
		`{"results":[{"name":"Reykjavik","country":"Iceland","latitude":64.15,"longitude":-21.94}]}`,
		`{"current_weather":{"temperature":3.5,"windspeed":28.1,"weathercode":71}}`,
		http.StatusOK)

	tool := weather.NewTool(weather.WithEndpoints(geocodeURL, forecastURL))

	out, err := tool.Run(context.Background(), map[string]any{"city": "reykjavik"})
	require.NoError(t, err)

	result, ok := out.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Reykjavik", result["city"])
	assert.Equal(t, "Iceland", result["country"])
	assert.Equal(t, 3.5, result["temperature_c"])
	assert.Equal(t, 28.1, result["windspeed_kmh"])
	assert.Equal(t, "snow", result["conditions"])
}

func TestTool_CityRequired(t *testing.T) {
	tool := weather.NewTool()

	_, err := tool.Run(context.Background(), map[string]any{})
	assert.ErrorIs(t, err, weather.ErrCityRequired)
}

func TestTool_CityNotFound(t *testing.T) {
	geocodeURL, forecastURL := fakeAPIs(t, `{"results":[]}`, `{}`, http.StatusOK)
	tool := weather.NewTool(weather.WithEndpoints(geocodeURL, forecastURL))

	_, err := tool.Run(context.Background(), map[string]any{"city": "atlantis"})
	assert.ErrorIs(t, err, weather.ErrCityNotFound)
}

func TestTool_APIFailure(t *testing.T) {
	geocodeURL, forecastURL := fakeAPIs(t, `upstream exploded`, ``, http.StatusBadGateway)
	tool := weather.NewTool(weather.WithEndpoints(geocodeURL, forecastURL))

	_, err := tool.Run(context.Background(), map[string]any{"city": "anywhere"})
	assert.ErrorIs(t, err, weather.ErrAPIFailure)
	assert.ErrorContains(t, err, "502")
}

func TestTool_MissingConditions(t *testing.T) {
	geocodeURL, forecastURL := fakeAPIs(t,
		`{"results":[{"name":"Lagos","country":"Nigeria","latitude":6.45,"longitude":3.39}]}`,
		`{}`,
		http.StatusOK)
	tool := weather.NewTool(weather.WithEndpoints(geocodeURL, forecastURL))

	_, err := tool.Run(context.Background(), map[string]any{"city": "lagos"})
	assert.ErrorIs(t, err, weather.ErrNoConditions)
}

func TestClient_GeocodeSendsCityName(t *testing.T) {
	var gotName string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotName = r.URL.Query().Get("name")
		w.Write([]byte(`{"results":[{"name":"Quito","country":"Ecuador","latitude":-0.18,"longitude":-78.47}]}`))
	}))
	defer server.Close()

	client := weather.NewClient(nil, server.URL, "")
	loc, err := client.Geocode(context.Background(), "quito")
	require.NoError(t, err)
	assert.Equal(t, "quito", gotName)
	assert.Equal(t, "Quito", loc.Name)
}
