package weather

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/logging"
)

func testClient(t *testing.T, geocode, forecast http.HandlerFunc) *Client {
	t.Helper()
	c := NewClient(config.LookupConfig{UserAgent: "toolforge-test/1.0", TimeoutSeconds: 5},
		logging.New(nil, "silent"))
	if geocode != nil {
		srv := httptest.NewServer(geocode)
		t.Cleanup(srv.Close)
		c.geocodeURL = srv.URL
	}
	if forecast != nil {
		srv := httptest.NewServer(forecast)
		t.Cleanup(srv.Close)
		c.forecastURL = srv.URL
	}
	return c
}

func geocodeHandler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "toolforge-test/1.0", r.Header.Get("User-Agent"))
		assert.Equal(t, "Berlin", r.URL.Query().Get("name"))
		fmt.Fprint(w, `{"results":[{"name":"Berlin","country":"Germany",
			"latitude":52.52,"longitude":13.41,"timezone":"Europe/Berlin"}]}`)
	}
}

func TestGeocode(t *testing.T) {
	c := testClient(t, geocodeHandler(t), nil)

	loc, err := c.Geocode(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t, "Berlin", loc.Name)
	assert.Equal(t, "Europe/Berlin", loc.Timezone)
	assert.InDelta(t, 52.52, loc.Latitude, 0.001)
}

func TestGeocode_NotFound(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{}`)
	}, nil)

	_, err := c.Geocode(context.Background(), "Nowheresville")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestGeocode_HTTPError(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "too many requests", http.StatusTooManyRequests)
	}, nil)

	_, err := c.Geocode(context.Background(), "Berlin")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "HTTP 429")
}

func TestCurrent(t *testing.T) {
	forecast := func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "52.5200", r.URL.Query().Get("latitude"))
		fmt.Fprint(w, `{"current":{"temperature_2m":21.0,"weather_code":2}}`)
	}
	c := testClient(t, geocodeHandler(t), forecast)

	report, err := c.Current(context.Background(), "Berlin")
	require.NoError(t, err)
	assert.Equal(t,
		"The weather in Berlin, Germany is currently 21.0°C (69.8°F) with partly cloudy sky.",
		report)
}

func TestCurrent_GeocodeFailurePropagates(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[]}`)
	}, nil)

	_, err := c.Current(context.Background(), "Atlantis")
	assert.ErrorIs(t, err, ErrCityNotFound)
}

func TestLocalTime(t *testing.T) {
	c := testClient(t, geocodeHandler(t), nil)
	c.now = func() time.Time {
		return time.Date(2025, 4, 28, 13, 58, 0, 0, time.UTC)
	}

	report, err := c.LocalTime(context.Background(), "Berlin")
	require.NoError(t, err)
	// Berlin is UTC+2 in April.
	assert.Equal(t, "The current time in Berlin, Germany is 2025-04-28 15:58:00 CEST+0200", report)
}

func TestLocalTime_MissingTimezone(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"results":[{"name":"Somewhere","latitude":1,"longitude":2}]}`)
	}, nil)

	_, err := c.LocalTime(context.Background(), "Somewhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no timezone")
}

func TestDescribeWeatherCode(t *testing.T) {
	assert.Equal(t, "clear sky", describeWeatherCode(0))
	assert.Equal(t, "rain", describeWeatherCode(63))
	assert.Equal(t, "a thunderstorm", describeWeatherCode(95))
	assert.Equal(t, "unknown conditions", describeWeatherCode(42))
}
