package service

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// WeatherService exposes trip-planning forecasts through the OpenWeather proxy.
type WeatherService struct {
	client *weather.Client
	logger *slog.Logger
}

// NewWeatherService creates a new weather service.
func NewWeatherService(client *weather.Client, logger *slog.Logger) *WeatherService {
	return &WeatherService{
		client: client,
		logger: logger,
	}
}

// Forecast fetches the forecast for a city.
func (s *WeatherService) Forecast(ctx context.Context, city string) (*weather.Forecast, error) {
	city = strings.TrimSpace(city)
	if city == "" {
		return nil, domainerrors.Validation("city is required")
	}

	forecast, err := s.client.Forecast(ctx, city)
	if err != nil {
		if s.logger != nil && !domainerrors.Is(err, domainerrors.ErrNotFound) {
			s.logger.Warn("Forecast lookup failed", "city", city, "error", err)
		}
		return nil, err
	}

	return forecast, nil
}
