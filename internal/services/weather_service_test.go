package services

import (
	"context"
	"errors"
	"testing"

	"github.com/studentportal/webapp/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

// mockWeatherClient is a mock implementation of WeatherClient
type mockWeatherClient struct {
	location    *models.Location
	geocodeErr  error
	current     *models.CurrentWeather
	forecastErr error

	forecastCalled bool
	lat, lon       float64
}

func (m *mockWeatherClient) Geocode(ctx context.Context, city string) (*models.Location, error) {
	if m.geocodeErr != nil {
		return nil, m.geocodeErr
	}
	return m.location, nil
}

func (m *mockWeatherClient) CurrentWeather(ctx context.Context, latitude, longitude float64) (*models.CurrentWeather, error) {
	m.forecastCalled = true
	m.lat, m.lon = latitude, longitude
	if m.forecastErr != nil {
		return nil, m.forecastErr
	}
	return m.current, nil
}

func TestWeatherService_Lookup(t *testing.T) {
	paris := &models.Location{Name: "Paris", Country: "France", Latitude: 48.85341, Longitude: 2.3488}
	current := &models.CurrentWeather{Temperature: 12.3, WindSpeed: 9.7, WindDirection: 240, Time: "2026-10-19T12:00"}

	tests := []struct {
		name           string
		client         *mockWeatherClient
		expectedError  error
		expectForecast bool
	}{
		{
			name:           "success",
			client:         &mockWeatherClient{location: paris, current: current},
			expectForecast: true,
		},
		{
			name:          "city not found",
			client:        &mockWeatherClient{geocodeErr: models.ErrCityNotFound},
			expectedError: models.ErrCityNotFound,
		},
		{
			name:          "geocoding transport failure",
			client:        &mockWeatherClient{geocodeErr: errors.New("timeout")},
			expectedError: models.ErrWeatherUnavailable,
		},
		{
			name:           "forecast missing fields",
			client:         &mockWeatherClient{location: paris, forecastErr: errors.New("missing current_weather")},
			expectedError:  models.ErrWeatherUnavailable,
			expectForecast: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewWeatherService(tt.client, zaptest.NewLogger(t))

			report, err := svc.Lookup(context.Background(), "Paris")

			assert.Equal(t, tt.expectForecast, tt.client.forecastCalled)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, report)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, "Paris", report.City)
			assert.Equal(t, *paris, report.Location)
			assert.Equal(t, *current, report.Current)
			assert.Equal(t, paris.Latitude, tt.client.lat)
			assert.Equal(t, paris.Longitude, tt.client.lon)
		})
	}
}

func TestWeatherService_Lookup_UnavailableIsNotCityNotFound(t *testing.T) {
	svc := NewWeatherService(&mockWeatherClient{geocodeErr: errors.New("503")}, zaptest.NewLogger(t))

	_, err := svc.Lookup(context.Background(), "Paris")

	assert.NotErrorIs(t, err, models.ErrCityNotFound)
}
