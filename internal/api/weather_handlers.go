package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// ForecastSlot is one three-hour forecast window.
type ForecastSlot struct {
	Time        time.Time `json:"time"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	WindSpeed   float64   `json:"wind_speed"`
}

// ForecastOutput wraps the forecast for a city.
type ForecastOutput struct {
	Body struct {
		City    string         `json:"city"`
		Country string         `json:"country,omitempty"`
		Slots   []ForecastSlot `json:"slots"`
	}
}

// ForecastInput asks for a city forecast. City names without a country
// code get the configured default country appended.
type ForecastInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	City          string `query:"city" doc:"City name, optionally with country code (e.g. Lisbon,PT)"`
}

func (s *Server) registerWeatherRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "get-forecast",
		Method:      http.MethodGet,
		Path:        "/api/v1/weather/forecast",
		Summary:     "Get a trip-planning forecast",
		Tags:        []string{"Weather"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleForecast)
}

func (s *Server) handleForecast(ctx context.Context, input *ForecastInput) (*ForecastOutput, error) {
	if _, err := s.authenticateRequest(ctx, input.Authorization); err != nil {
		return nil, err
	}

	forecast, err := s.services.Weather.Forecast(ctx, input.City)
	if err != nil {
		return nil, huma.Error400BadRequest("Forecast lookup failed", err)
	}

	resp := &ForecastOutput{}
	resp.Body.City = forecast.City
	resp.Body.Country = forecast.Country
	resp.Body.Slots = make([]ForecastSlot, 0, len(forecast.Slots))
	for _, slot := range forecast.Slots {
		resp.Body.Slots = append(resp.Body.Slots, toForecastSlot(slot))
	}

	return resp, nil
}

func toForecastSlot(slot weather.Slot) ForecastSlot {
	return ForecastSlot{
		Time:        slot.Time,
		Temp:        slot.Temp,
		FeelsLike:   slot.FeelsLike,
		Humidity:    slot.Humidity,
		Description: slot.Description,
		Icon:        slot.Icon,
		WindSpeed:   slot.WindSpeed,
	}
}
