package providers

import (
	"github.com/samber/do/v2"

	"github.com/garagehubapp/garagehub-server/internal/auth"
	"github.com/garagehubapp/garagehub-server/internal/logger"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/service"
	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// ProvideSessionService provides the session service.
func ProvideSessionService(i do.Injector) (*service.SessionService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSessionService(storeHandle.Store, tokenService, log.Logger), nil
}

// ProvideAuthService provides the authentication service.
func ProvideAuthService(i do.Injector) (*service.AuthService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	tokenService := do.MustInvoke[*auth.TokenService](i)
	sessionService := do.MustInvoke[*service.SessionService](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewAuthService(storeHandle.Store, tokenService, sessionService, log.Logger), nil
}

// ProvideVehicleService provides the vehicle service.
func ProvideVehicleService(i do.Injector) (*service.VehicleService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	photoStorage := do.MustInvoke[*photos.Storage](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewVehicleService(storeHandle.Store, photoStorage, log.Logger), nil
}

// ProvideSharingService provides the vehicle sharing service.
func ProvideSharingService(i do.Injector) (*service.SharingService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewSharingService(storeHandle.Store, log.Logger), nil
}

// ProvideMaintenanceService provides the maintenance log service.
func ProvideMaintenanceService(i do.Injector) (*service.MaintenanceService, error) {
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewMaintenanceService(storeHandle.Store, log.Logger), nil
}

// ProvideWeatherService provides the forecast service.
func ProvideWeatherService(i do.Injector) (*service.WeatherService, error) {
	client := do.MustInvoke[*weather.Client](i)
	log := do.MustInvoke[*logger.Logger](i)

	return service.NewWeatherService(client, log.Logger), nil
}

// ProvideContentService provides the static content service.
func ProvideContentService(i do.Injector) (*service.ContentService, error) {
	return service.NewContentService(), nil
}
