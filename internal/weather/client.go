// Package weather provides a client for the OpenWeather 5-day forecast API.
package weather

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
)

const (
	defaultBaseURL = "https://api.openweathermap.org/data/2.5/forecast"
)

// Client provides access to the OpenWeather forecast API.
type Client struct {
	httpClient     *http.Client
	rateLimiter    *rate.Limiter
	logger         *slog.Logger
	apiKey         string
	baseURL        string
	defaultCountry string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider endpoint, mainly for tests.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// NewClient creates a new OpenWeather client.
// The free tier allows 60 calls per minute; stay comfortably under it.
func NewClient(apiKey, defaultCountry string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		// 1 request per 2 seconds, burst of 10
		rateLimiter:    rate.NewLimiter(rate.Every(2*time.Second), 10),
		logger:         logger,
		apiKey:         apiKey,
		baseURL:        defaultBaseURL,
		defaultCountry: defaultCountry,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Enabled reports whether the client has an API key configured.
func (c *Client) Enabled() bool {
	return c.apiKey != ""
}

// Forecast represents a city forecast with an ordered list of time slots.
type Forecast struct {
	City    string `json:"city"`
	Country string `json:"country"`
	Slots   []Slot `json:"slots"`
}

// Slot is one three-hour forecast window.
type Slot struct {
	Time        time.Time `json:"time"`
	Temp        float64   `json:"temp"`
	FeelsLike   float64   `json:"feels_like"`
	Humidity    int       `json:"humidity"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	WindSpeed   float64   `json:"wind_speed"`
}

// forecastResponse mirrors the subset of the OpenWeather payload we use.
type forecastResponse struct {
	List []struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  int     `json:"humidity"`
		} `json:"main"`
		Weather []struct {
			Description string `json:"description"`
			Icon        string `json:"icon"`
		} `json:"weather"`
		Wind struct {
			Speed float64 `json:"speed"`
		} `json:"wind"`
	} `json:"list"`
	City struct {
		Name    string `json:"name"`
		Country string `json:"country"`
	} `json:"city"`
}

// Forecast fetches the forecast for a city.
// A query without a country code gets the configured default appended.
func (c *Client) Forecast(ctx context.Context, city string) (*Forecast, error) {
	if !c.Enabled() {
		return nil, domainerrors.Unavailable("weather service is not configured")
	}

	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	query := city
	if !strings.Contains(query, ",") && c.defaultCountry != "" {
		query = query + "," + c.defaultCountry
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("appid", c.apiKey)
	params.Set("units", "metric")

	requestURL := c.baseURL + "?" + params.Encode()

	c.logger.Debug("fetching forecast", "city", query)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, requestURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, domainerrors.Unavailable("weather provider unreachable").WithCause(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, domainerrors.NotFound("city not found")
	case resp.StatusCode == http.StatusUnauthorized:
		return nil, domainerrors.Unavailable("weather provider rejected credentials")
	case resp.StatusCode != http.StatusOK:
		return nil, domainerrors.Unavailable(fmt.Sprintf("weather provider returned status %d", resp.StatusCode))
	}

	var payload forecastResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	forecast := &Forecast{
		City:    payload.City.Name,
		Country: payload.City.Country,
		Slots:   make([]Slot, 0, len(payload.List)),
	}

	for _, entry := range payload.List {
		slot := Slot{
			Time:      time.Unix(entry.Dt, 0).UTC(),
			Temp:      entry.Main.Temp,
			FeelsLike: entry.Main.FeelsLike,
			Humidity:  entry.Main.Humidity,
			WindSpeed: entry.Wind.Speed,
		}
		if len(entry.Weather) > 0 {
			slot.Description = entry.Weather[0].Description
			slot.Icon = entry.Weather[0].Icon
		}
		forecast.Slots = append(forecast.Slots, slot)
	}

	return forecast, nil
}
