package providers

import (
	"github.com/samber/do/v2"

	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/logger"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
)

// ProvidePhotoStorage provides the vehicle photo storage backend.
func ProvidePhotoStorage(i do.Injector) (*photos.Storage, error) {
	cfg := do.MustInvoke[*config.Config](i)
	log := do.MustInvoke[*logger.Logger](i)

	storage, err := photos.NewStorage(cfg.PhotosPath())
	if err != nil {
		return nil, err
	}

	log.Info("Photo storage initialized", "path", cfg.PhotosPath())

	return storage, nil
}
