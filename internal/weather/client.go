// Package weather looks up current conditions and local time for a city
// using the Open-Meteo geocoding and forecast APIs. Neither endpoint needs
// an API key.
package weather

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/soyeahso/toolforge/internal/config"
	"github.com/soyeahso/toolforge/internal/logging"
)

// ErrCityNotFound means geocoding returned no match for the city name.
var ErrCityNotFound = errors.New("city not found")

const (
	defaultGeocodeURL  = "https://geocoding-api.open-meteo.com/v1/search"
	defaultForecastURL = "https://api.open-meteo.com/v1/forecast"
)

// Location is a geocoded city.
type Location struct {
	Name      string  `json:"name"`
	Country   string  `json:"country,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Timezone  string  `json:"timezone"`
}

// Display returns the location name with its country when known.
func (l Location) Display() string {
	if l.Country == "" {
		return l.Name
	}
	return l.Name + ", " + l.Country
}

// Client talks to the Open-Meteo APIs.
type Client struct {
	httpClient  *http.Client
	userAgent   string
	geocodeURL  string
	forecastURL string
	now         func() time.Time
	log         *logging.Logger
}

// NewClient creates a lookup client from config.
func NewClient(cfg config.LookupConfig, log *logging.Logger) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:  &http.Client{Timeout: timeout},
		userAgent:   cfg.UserAgent,
		geocodeURL:  defaultGeocodeURL,
		forecastURL: defaultForecastURL,
		now:         time.Now,
		log:         log.Sub("lookup"),
	}
}

type geocodeResponse struct {
	Results []Location `json:"results"`
}

type forecastResponse struct {
	Current struct {
		Temperature float64 `json:"temperature_2m"`
		WeatherCode int     `json:"weather_code"`
	} `json:"current"`
}

// Geocode resolves a city name to coordinates and a timezone.
func (c *Client) Geocode(ctx context.Context, city string) (Location, error) {
	q := url.Values{}
	q.Set("name", city)
	q.Set("count", "1")

	body, err := c.get(ctx, c.geocodeURL+"?"+q.Encode())
	if err != nil {
		return Location{}, fmt.Errorf("geocoding %q: %w", city, err)
	}

	var resp geocodeResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return Location{}, fmt.Errorf("parsing geocode response for %q: %w", city, err)
	}
	if len(resp.Results) == 0 {
		return Location{}, fmt.Errorf("%w: %q", ErrCityNotFound, city)
	}
	return resp.Results[0], nil
}

// Current returns a one-line report of the current conditions in a city,
// with temperature in both Celsius and Fahrenheit.
func (c *Client) Current(ctx context.Context, city string) (string, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("latitude", fmt.Sprintf("%.4f", loc.Latitude))
	q.Set("longitude", fmt.Sprintf("%.4f", loc.Longitude))
	q.Set("current", "temperature_2m,weather_code")

	body, err := c.get(ctx, c.forecastURL+"?"+q.Encode())
	if err != nil {
		return "", fmt.Errorf("fetching forecast for %q: %w", city, err)
	}

	var resp forecastResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", fmt.Errorf("parsing forecast response for %q: %w", city, err)
	}

	tempC := resp.Current.Temperature
	tempF := tempC*9/5 + 32
	desc := describeWeatherCode(resp.Current.WeatherCode)

	return fmt.Sprintf("The weather in %s is currently %.1f°C (%.1f°F) with %s.",
		loc.Display(), tempC, tempF, desc), nil
}

// LocalTime returns a one-line report of the current local time in a city.
// The timezone comes from the geocoding result.
func (c *Client) LocalTime(ctx context.Context, city string) (string, error) {
	loc, err := c.Geocode(ctx, city)
	if err != nil {
		return "", err
	}
	if loc.Timezone == "" {
		return "", fmt.Errorf("no timezone known for %q", city)
	}

	tz, err := time.LoadLocation(loc.Timezone)
	if err != nil {
		return "", fmt.Errorf("unknown timezone %q for %q: %w", loc.Timezone, city, err)
	}

	now := c.now().In(tz)
	return fmt.Sprintf("The current time in %s is %s",
		loc.Display(), now.Format("2006-01-02 15:04:05 MST-0700")), nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, string(body))
	}
	return body, nil
}

// describeWeatherCode maps WMO weather interpretation codes to short
// descriptions.
func describeWeatherCode(code int) string {
	switch code {
	case 0:
		return "clear sky"
	case 1:
		return "mainly clear sky"
	case 2:
		return "partly cloudy sky"
	case 3:
		return "overcast sky"
	case 45, 48:
		return "fog"
	case 51, 53, 55:
		return "drizzle"
	case 56, 57:
		return "freezing drizzle"
	case 61, 63, 65:
		return "rain"
	case 66, 67:
		return "freezing rain"
	case 71, 73, 75:
		return "snowfall"
	case 77:
		return "snow grains"
	case 80, 81, 82:
		return "rain showers"
	case 85, 86:
		return "snow showers"
	case 95:
		return "a thunderstorm"
	case 96, 99:
		return "a thunderstorm with hail"
	default:
		return "unknown conditions"
	}
}
