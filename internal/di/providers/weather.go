package providers

import (
	"github.com/samber/do/v2"

	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/logger"
	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// ProvideWeatherClient provides the forecast provider client.
// Without an API key the client stays constructed but disabled; the
// forecast endpoint then answers 502 instead of failing startup.
func ProvideWeatherClient(i do.Injector) (*weather.Client, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	opts := []weather.Option{}
	if cfg.Weather.BaseURL != "" {
		opts = append(opts, weather.WithBaseURL(cfg.Weather.BaseURL))
	}

	client := weather.NewClient(cfg.Weather.APIKey, cfg.Weather.DefaultCountry, log.Logger, opts...)

	if !client.Enabled() {
		log.Warn("Weather API key not configured, forecast endpoint disabled")
	}

	return client, nil
}
