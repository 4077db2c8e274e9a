// Package weather talks to the geocoding and forecast HTTP services
package weather

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/studentportal/webapp/internal/models"
	"github.com/tidwall/gjson"
	"golang.org/x/time/rate"
)

// maxBodySize caps how much of an upstream response is read
const maxBodySize = 1 << 20

// Client performs the two outbound weather calls.
// Every call waits on a shared limiter and is bounded by the configured timeout.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
	timeout      time.Duration
	limiter      *rate.Limiter
}

// NewClient creates a new weather client.
//
// "requestsPerSecond" parameter throttles outbound calls shared by all requests of the process.
func NewClient(geocodingURL, forecastURL string, timeout time.Duration, requestsPerSecond float64) *Client {
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		geocodingURL: geocodingURL,
		forecastURL:  forecastURL,
		timeout:      timeout,
		limiter:      rate.NewLimiter(rate.Limit(requestsPerSecond), 1),
	}
}

// Geocode resolves a place name to the best matching location
func (c *Client) Geocode(ctx context.Context, city string) (*models.Location, error) {
	query := url.Values{}
	query.Set("name", city)
	query.Set("count", "1")
	query.Set("language", "en")
	query.Set("format", "json")

	body, err := c.get(ctx, c.geocodingURL, query)
	if err != nil {
		return nil, err
	}

	first := gjson.GetBytes(body, "results.0")
	if !first.Exists() {
		return nil, models.ErrCityNotFound
	}

	lat := first.Get("latitude")
	lon := first.Get("longitude")
	if lat.Type != gjson.Number || lon.Type != gjson.Number {
		return nil, fmt.Errorf("geocoding result for %q has no coordinates", city)
	}

	name := first.Get("name").String()
	if name == "" {
		name = city
	}

	return &models.Location{
		Name:      name,
		Country:   first.Get("country").String(),
		Latitude:  lat.Float(),
		Longitude: lon.Float(),
	}, nil
}

// CurrentWeather fetches the current conditions at a coordinate
func (c *Client) CurrentWeather(ctx context.Context, latitude, longitude float64) (*models.CurrentWeather, error) {
	query := url.Values{}
	query.Set("latitude", strconv.FormatFloat(latitude, 'f', -1, 64))
	query.Set("longitude", strconv.FormatFloat(longitude, 'f', -1, 64))
	query.Set("current_weather", "true")

	body, err := c.get(ctx, c.forecastURL, query)
	if err != nil {
		return nil, err
	}

	fields := gjson.GetManyBytes(body,
		"current_weather.temperature",
		"current_weather.windspeed",
		"current_weather.winddirection",
		"current_weather.time",
	)
	for i, name := range []string{"temperature", "windspeed", "winddirection"} {
		if fields[i].Type != gjson.Number {
			return nil, fmt.Errorf("forecast response missing current_weather.%s", name)
		}
	}
	if !fields[3].Exists() || fields[3].String() == "" {
		return nil, fmt.Errorf("forecast response missing current_weather.time")
	}

	return &models.CurrentWeather{
		Temperature:   fields[0].Float(),
		WindSpeed:     fields[1].Float(),
		WindDirection: fields[2].Float(),
		Time:          fields[3].String(),
	}, nil
}

// get performs a throttled GET and returns the body of a 2xx JSON response
func (c *Client) get(ctx context.Context, endpoint string, query url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%s returned status %d", endpoint, resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("%s returned invalid JSON", endpoint)
	}
	return body, nil
}
