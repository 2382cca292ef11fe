package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	"github.com/garagehubapp/garagehub-server/internal/id"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// MaintenanceService keeps the append-only service log per vehicle.
// Contribution is open to the owner and grantees alike.
type MaintenanceService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewMaintenanceService creates a new maintenance service.
func NewMaintenanceService(st *store.Store, logger *slog.Logger) *MaintenanceService {
	return &MaintenanceService{
		store:  st,
		logger: logger,
	}
}

// AddMaintenanceRequest contains the fields for one maintenance entry.
// Cost is a pointer so zero-cost work still satisfies required.
type AddMaintenanceRequest struct {
	Description string     `json:"description" validate:"required,max=500"`
	Date        *time.Time `json:"date,omitempty"`
	Cost        *float64   `json:"cost" validate:"required,gte=0"`
	Odometer    *int       `json:"odometer,omitempty" validate:"omitempty,gte=0"`
}

// Add appends a maintenance record to a vehicle's log.
func (s *MaintenanceService) Add(ctx context.Context, userID, vehicleID string, req AddMaintenanceRequest) (*domain.MaintenanceRecord, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := authorizeContribute(vehicle, userID); err != nil {
		return nil, err
	}

	recordID, err := id.Generate("mnt")
	if err != nil {
		return nil, fmt.Errorf("generate record ID: %w", err)
	}

	date := time.Now()
	if req.Date != nil {
		date = *req.Date
	}

	odometer := 0
	if req.Odometer != nil {
		odometer = *req.Odometer
	}

	record := &domain.MaintenanceRecord{
		Entity: domain.Entity{
			ID: recordID,
		},
		VehicleID:   vehicle.ID,
		Description: req.Description,
		Date:        date,
		Cost:        *req.Cost,
		Odometer:    odometer,
	}
	record.InitTimestamps()

	if err := s.store.CreateMaintenance(ctx, record); err != nil {
		return nil, fmt.Errorf("create maintenance record: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Maintenance record added",
			"record_id", recordID,
			"vehicle_id", vehicleID,
			"user_id", userID,
		)
	}

	return record, nil
}

// List returns a vehicle's maintenance log, newest first by service date.
func (s *MaintenanceService) List(ctx context.Context, userID, vehicleID string) ([]*domain.MaintenanceRecord, error) {
	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := authorizeContribute(vehicle, userID); err != nil {
		return nil, err
	}

	records, err := s.store.ListMaintenanceByVehicle(ctx, vehicle.ID)
	if err != nil {
		return nil, fmt.Errorf("list maintenance records: %w", err)
	}

	return records, nil
}
