package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/id"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// maxPhotoSize caps uploaded vehicle photos at 5 MiB.
const maxPhotoSize = 5 << 20

// VehicleService owns the create/edit/delete lifecycle of vehicles.
// Every access decision is re-derived from current store state.
type VehicleService struct {
	store  *store.Store
	photos *photos.Storage
	logger *slog.Logger
}

// NewVehicleService creates a new vehicle service.
func NewVehicleService(st *store.Store, photoStorage *photos.Storage, logger *slog.Logger) *VehicleService {
	return &VehicleService{
		store:  st,
		photos: photoStorage,
		logger: logger,
	}
}

// CreateVehicleRequest contains the fields for registering a vehicle.
type CreateVehicleRequest struct {
	Plate string `json:"plate" validate:"required"`
	Make  string `json:"make" validate:"required,max=100"`
	Model string `json:"model" validate:"required,max=100"`
	Year  int    `json:"year" validate:"required"`
	Color string `json:"color" validate:"omitempty,max=50"`
}

// UpdateVehicleRequest contains partial field edits. Nil fields are
// left unchanged. Owner and sharing are managed by separate operations.
type UpdateVehicleRequest struct {
	Plate *string `json:"plate,omitempty"`
	Make  *string `json:"make,omitempty" validate:"omitempty,max=100"`
	Model *string `json:"model,omitempty" validate:"omitempty,max=100"`
	Year  *int    `json:"year,omitempty"`
	Color *string `json:"color,omitempty" validate:"omitempty,max=50"`
}

// validatePlate normalizes and pattern-checks a plate.
func validatePlate(plate string) (string, error) {
	normalized := domain.NormalizePlate(plate)
	if !domain.ValidPlate(normalized) {
		return "", domainerrors.Validation("plate must match the format AAA0A00")
	}
	return normalized, nil
}

// validateYear bounds the model year between 1900 and next calendar year.
func validateYear(year int) error {
	if year < domain.MinYear || year > domain.MaxYear() {
		return domainerrors.Validationf("year must be between %d and %d", domain.MinYear, domain.MaxYear())
	}
	return nil
}

// Create registers a new vehicle owned by userID.
func (s *VehicleService) Create(ctx context.Context, userID string, req CreateVehicleRequest) (*VehicleDetails, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	plate, err := validatePlate(req.Plate)
	if err != nil {
		return nil, err
	}
	if err := validateYear(req.Year); err != nil {
		return nil, err
	}

	color := req.Color
	if color == "" {
		color = domain.DefaultColor
	}

	vehicleID, err := id.Generate("veh")
	if err != nil {
		return nil, fmt.Errorf("generate vehicle ID: %w", err)
	}

	vehicle := &domain.Vehicle{
		Entity: domain.Entity{
			ID: vehicleID,
		},
		Plate:   plate,
		Make:    req.Make,
		Model:   req.Model,
		Year:    req.Year,
		Color:   color,
		OwnerID: userID,
	}
	vehicle.InitTimestamps()

	if err := s.store.CreateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, store.ErrPlateExists) {
			return nil, domainerrors.DuplicatePlate("you already registered a vehicle with this plate")
		}
		return nil, fmt.Errorf("create vehicle: %w", err)
	}

	if s.logger != nil {
		s.logger.Info("Vehicle created",
			"vehicle_id", vehicleID,
			"owner_id", userID,
			"plate", plate,
		)
	}

	return resolveDetails(ctx, s.store, vehicle)
}

// Get returns a vehicle visible to userID.
// Absent vehicles and inaccessible vehicles are reported distinctly.
func (s *VehicleService) Get(ctx context.Context, userID, vehicleID string) (*VehicleDetails, error) {
	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := authorizeContribute(vehicle, userID); err != nil {
		return nil, err
	}

	return resolveDetails(ctx, s.store, vehicle)
}

// List returns every vehicle userID owns or was granted, newest first.
func (s *VehicleService) List(ctx context.Context, userID string) ([]*VehicleDetails, error) {
	vehicles, err := s.store.ListVehiclesVisibleTo(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	details := make([]*VehicleDetails, 0, len(vehicles))
	for _, vehicle := range vehicles {
		d, err := resolveDetails(ctx, s.store, vehicle)
		if err != nil {
			return nil, err
		}
		details = append(details, d)
	}

	return details, nil
}

// Update applies partial field edits. Only the owner may edit; owner and
// sharing are never touched here.
func (s *VehicleService) Update(ctx context.Context, userID, vehicleID string, req UpdateVehicleRequest) (*VehicleDetails, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := authorizeMutate(vehicle, userID); err != nil {
		return nil, err
	}

	if req.Plate != nil {
		plate, err := validatePlate(*req.Plate)
		if err != nil {
			return nil, err
		}
		vehicle.Plate = plate
	}
	if req.Make != nil {
		if *req.Make == "" {
			return nil, domainerrors.Validation("make cannot be empty")
		}
		vehicle.Make = *req.Make
	}
	if req.Model != nil {
		if *req.Model == "" {
			return nil, domainerrors.Validation("model cannot be empty")
		}
		vehicle.Model = *req.Model
	}
	if req.Year != nil {
		if err := validateYear(*req.Year); err != nil {
			return nil, err
		}
		vehicle.Year = *req.Year
	}
	if req.Color != nil {
		color := *req.Color
		if color == "" {
			color = domain.DefaultColor
		}
		vehicle.Color = color
	}

	if err := s.store.UpdateVehicle(ctx, vehicle); err != nil {
		if errors.Is(err, store.ErrPlateExists) {
			return nil, domainerrors.DuplicatePlate("you already registered a vehicle with this plate")
		}
		if errors.Is(err, store.ErrVehicleNotFound) {
			return nil, domainerrors.NotFound("vehicle not found")
		}
		return nil, fmt.Errorf("update vehicle: %w", err)
	}

	return resolveDetails(ctx, s.store, vehicle)
}

// Delete removes a vehicle and cascades to its maintenance records.
// Dependents are deleted first so a crash in between leaves a childless
// vehicle rather than orphaned records.
func (s *VehicleService) Delete(ctx context.Context, userID, vehicleID string) error {
	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return err
	}
	if err := authorizeMutate(vehicle, userID); err != nil {
		return err
	}

	if err := s.store.DeleteMaintenanceByVehicle(ctx, vehicleID); err != nil {
		return fmt.Errorf("cascade maintenance delete: %w", err)
	}

	if err := s.store.DeleteVehicle(ctx, vehicleID); err != nil {
		if errors.Is(err, store.ErrVehicleNotFound) {
			return domainerrors.NotFound("vehicle not found")
		}
		return fmt.Errorf("delete vehicle: %w", err)
	}

	// Photo removal is best effort; a leftover file is harmless.
	if s.photos != nil {
		if err := s.photos.Delete(vehicleID); err != nil && s.logger != nil {
			s.logger.Warn("Failed to delete vehicle photo",
				"vehicle_id", vehicleID,
				"error", err,
			)
		}
	}

	if s.logger != nil {
		s.logger.Info("Vehicle deleted",
			"vehicle_id", vehicleID,
			"owner_id", userID,
		)
	}

	return nil
}

// AttachPhoto stores a photo for a vehicle. Owner only.
func (s *VehicleService) AttachPhoto(ctx context.Context, userID, vehicleID string, data []byte) error {
	if len(data) == 0 {
		return domainerrors.Validation("photo data is required")
	}
	if len(data) > maxPhotoSize {
		return domainerrors.Validation("photo exceeds the 5 MiB limit")
	}

	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return err
	}
	if err := authorizeMutate(vehicle, userID); err != nil {
		return err
	}

	if err := s.photos.Save(vehicleID, data); err != nil {
		return fmt.Errorf("save photo: %w", err)
	}

	if !vehicle.HasPhoto {
		vehicle.HasPhoto = true
		if err := s.store.UpdateVehicle(ctx, vehicle); err != nil {
			return fmt.Errorf("mark photo: %w", err)
		}
	}

	return nil
}

// Photo returns a vehicle's photo bytes and content hash.
// Visible to the owner and grantees.
func (s *VehicleService) Photo(ctx context.Context, userID, vehicleID string) (data []byte, hash string, err error) {
	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, "", err
	}
	if err := authorizeContribute(vehicle, userID); err != nil {
		return nil, "", err
	}

	if !s.photos.Exists(vehicleID) {
		return nil, "", domainerrors.NotFound("vehicle has no photo")
	}

	data, err = s.photos.Get(vehicleID)
	if err != nil {
		return nil, "", fmt.Errorf("read photo: %w", err)
	}

	hash, err = s.photos.Hash(vehicleID)
	if err != nil {
		return nil, "", fmt.Errorf("hash photo: %w", err)
	}

	return data, hash, nil
}
