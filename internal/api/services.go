package api

import (
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/service"
)

// Services bundles the service layer handed to the server.
type Services struct {
	Auth        *service.AuthService
	Session     *service.SessionService
	Vehicle     *service.VehicleService
	Sharing     *service.SharingService
	Maintenance *service.MaintenanceService
	Weather     *service.WeatherService
	Content     *service.ContentService
}

// StorageServices bundles the media storage backends.
type StorageServices struct {
	Photos *photos.Storage
}
