package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/studentportal/webapp/internal/models"
	"go.uber.org/zap"
)

// WeatherClient is the interface that wraps the outbound geocoding and forecast calls
type WeatherClient interface {
	// Method Geocode resolves a free-text place name to a location.
	//
	// "city" parameter is the place name as typed by the user.
	//
	// If no place matches, models.ErrCityNotFound will be returned together with "nil" value.
	Geocode(ctx context.Context, city string) (*models.Location, error)
	// Method CurrentWeather fetches the current conditions at a coordinate.
	//
	// "latitude" and "longitude" parameters identify the coordinate.
	//
	// If the response lacks the expected fields, an error will be returned together with "nil" value.
	CurrentWeather(ctx context.Context, latitude, longitude float64) (*models.CurrentWeather, error)
}

// weatherService combines a geocoding lookup and a forecast lookup into one report
type weatherService struct {
	client WeatherClient
	logger *zap.Logger
}

// NewWeatherService creates a new weather service
func NewWeatherService(client WeatherClient, logger *zap.Logger) *weatherService {
	return &weatherService{
		client: client,
		logger: logger,
	}
}

// Lookup returns the current weather for a city.
// Returns models.ErrCityNotFound when the city cannot be resolved and
// models.ErrWeatherUnavailable when either outbound call fails.
func (s *weatherService) Lookup(ctx context.Context, city string) (*models.WeatherReport, error) {
	location, err := s.client.Geocode(ctx, city)
	if err != nil {
		if errors.Is(err, models.ErrCityNotFound) {
			return nil, err
		}
		s.logger.Warn("geocoding failed", zap.String("city", city), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", models.ErrWeatherUnavailable, err)
	}

	current, err := s.client.CurrentWeather(ctx, location.Latitude, location.Longitude)
	if err != nil {
		s.logger.Warn("forecast failed",
			zap.String("city", city),
			zap.Float64("latitude", location.Latitude),
			zap.Float64("longitude", location.Longitude),
			zap.Error(err),
		)
		return nil, fmt.Errorf("%w: %v", models.ErrWeatherUnavailable, err)
	}

	return &models.WeatherReport{
		City:     city,
		Location: *location,
		Current:  *current,
	}, nil
}
