package providers

import (
	"context"
	"net/http"

	"github.com/samber/do/v2"

	"github.com/garagehubapp/garagehub-server/internal/api"
	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/logger"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/service"
)

// HTTPServerHandle wraps http.Server with Shutdownable.
type HTTPServerHandle struct {
	*http.Server
	apiServer *api.Server
}

// Shutdown implements do.Shutdownable.
func (h *HTTPServerHandle) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err := h.Server.Shutdown(ctx)
	h.apiServer.Close()
	return err
}

// ProvideHTTPServer provides the HTTP server.
func ProvideHTTPServer(i do.Injector) (*HTTPServerHandle, error) {
	cfg := do.MustInvoke[*config.Config](i)
	storeHandle := do.MustInvoke[*StoreHandle](i)
	log := do.MustInvoke[*logger.Logger](i)
	photoStorage := do.MustInvoke[*photos.Storage](i)

	services := &api.Services{
		Auth:        do.MustInvoke[*service.AuthService](i),
		Session:     do.MustInvoke[*service.SessionService](i),
		Vehicle:     do.MustInvoke[*service.VehicleService](i),
		Sharing:     do.MustInvoke[*service.SharingService](i),
		Maintenance: do.MustInvoke[*service.MaintenanceService](i),
		Weather:     do.MustInvoke[*service.WeatherService](i),
		Content:     do.MustInvoke[*service.ContentService](i),
	}

	storage := &api.StorageServices{
		Photos: photoStorage,
	}

	apiServer := api.NewServer(cfg, storeHandle.Store, services, storage, log.Logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      apiServer.Handler(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start in background
	go func() {
		log.Info("HTTP server starting", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server error", "error", err)
		}
	}()

	log.Info("Server running", "addr", srv.Addr)

	return &HTTPServerHandle{Server: srv, apiServer: apiServer}, nil
}
