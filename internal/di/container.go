// Package di provides dependency injection configuration for the GarageHub server.
package di

import (
	"github.com/samber/do/v2"

	"github.com/garagehubapp/garagehub-server/internal/auth"
	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/di/providers"
	"github.com/garagehubapp/garagehub-server/internal/logger"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/service"
	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// NewContainer creates and configures the DI container with all providers.
func NewContainer() *do.RootScope {
	injector := do.New()

	// Core infrastructure
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideAuthKey)

	// Database layer
	do.Provide(injector, providers.ProvideStore)

	// Storage layer
	do.Provide(injector, providers.ProvidePhotoStorage)

	// External clients
	do.Provide(injector, providers.ProvideWeatherClient)

	// Auth layer
	do.Provide(injector, providers.ProvideTokenService)

	// Business services
	do.Provide(injector, providers.ProvideSessionService)
	do.Provide(injector, providers.ProvideAuthService)
	do.Provide(injector, providers.ProvideVehicleService)
	do.Provide(injector, providers.ProvideSharingService)
	do.Provide(injector, providers.ProvideMaintenanceService)
	do.Provide(injector, providers.ProvideWeatherService)
	do.Provide(injector, providers.ProvideContentService)

	// Server
	do.Provide(injector, providers.ProvideHTTPServer)

	return injector
}

// Bootstrap initializes all services and returns handles for lifecycle management.
// This triggers lazy initialization of all core services.
func Bootstrap(injector *do.RootScope) error {
	_ = do.MustInvoke[*config.Config](injector)
	_ = do.MustInvoke[*logger.Logger](injector)
	_ = do.MustInvoke[providers.AuthKey](injector)
	_ = do.MustInvoke[*providers.StoreHandle](injector)
	_ = do.MustInvoke[*photos.Storage](injector)
	_ = do.MustInvoke[*weather.Client](injector)
	_ = do.MustInvoke[*auth.TokenService](injector)

	// Business services
	_ = do.MustInvoke[*service.SessionService](injector)
	_ = do.MustInvoke[*service.AuthService](injector)
	_ = do.MustInvoke[*service.VehicleService](injector)
	_ = do.MustInvoke[*service.SharingService](injector)
	_ = do.MustInvoke[*service.MaintenanceService](injector)
	_ = do.MustInvoke[*service.WeatherService](injector)
	_ = do.MustInvoke[*service.ContentService](injector)

	// Server
	_ = do.MustInvoke[*providers.HTTPServerHandle](injector)

	return nil
}
