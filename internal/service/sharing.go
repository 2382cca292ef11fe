package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// SharingService manages the share grants on vehicles.
// Only a vehicle's owner may grant or revoke access.
type SharingService struct {
	store  *store.Store
	logger *slog.Logger
}

// NewSharingService creates a new sharing service.
func NewSharingService(st *store.Store, logger *slog.Logger) *SharingService {
	return &SharingService{
		store:  st,
		logger: logger,
	}
}

// GrantShareRequest identifies the grant target by email.
type GrantShareRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// GrantShare grants targetEmail's account access to a vehicle.
//
// Preconditions are checked in a fixed order: the vehicle must exist, the
// caller must be its owner, the target email must resolve to an account,
// the target must not be the owner, and the target must not already hold a
// grant. Re-granting is rejected rather than treated as a no-op; revoke is
// the idempotent side of the pair.
func (s *SharingService) GrantShare(ctx context.Context, ownerID, vehicleID string, req GrantShareRequest) (*VehicleDetails, error) {
	if err := validate.Struct(req); err != nil {
		return nil, formatValidationError(err)
	}

	// Fast-path checks against a fresh read so failures are reported in
	// precondition order even when the target email is also bad.
	vehicle, err := getVehicle(ctx, s.store, vehicleID)
	if err != nil {
		return nil, err
	}
	if err := authorizeMutate(vehicle, ownerID); err != nil {
		return nil, err
	}

	target, err := s.store.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			return nil, domainerrors.NotFound("no user with that email")
		}
		return nil, fmt.Errorf("lookup target user: %w", err)
	}

	if target.ID == ownerID {
		return nil, domainerrors.InvalidOperation("cannot share a vehicle with yourself")
	}

	// The set-add runs against freshly read state inside one transaction,
	// so concurrent grants cannot overwrite each other. The precondition
	// checks are repeated there because the fast-path read is stale by then.
	updated, err := s.store.UpdateVehicleSharing(ctx, vehicleID, func(v *domain.Vehicle) error {
		if err := authorizeMutate(v, ownerID); err != nil {
			return err
		}
		if !v.AddGrantee(target.ID) {
			return domainerrors.AlreadyShared("vehicle is already shared with this user")
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrVehicleNotFound) {
			return nil, domainerrors.NotFound("vehicle not found")
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Vehicle shared",
			"vehicle_id", vehicleID,
			"owner_id", ownerID,
			"grantee_id", target.ID,
		)
	}

	return resolveDetails(ctx, s.store, updated)
}

// RevokeShare removes targetUserID's grant on a vehicle.
//
// Existence and ownership are checked like GrantShare, but revoking a user
// who holds no grant is a successful no-op. The asymmetry with GrantShare's
// strictness is deliberate and user-visible.
func (s *SharingService) RevokeShare(ctx context.Context, ownerID, vehicleID, targetUserID string) (*VehicleDetails, error) {
	if targetUserID == "" {
		return nil, domainerrors.Validation("target user id is required")
	}

	updated, err := s.store.UpdateVehicleSharing(ctx, vehicleID, func(v *domain.Vehicle) error {
		if err := authorizeMutate(v, ownerID); err != nil {
			return err
		}
		// Absent grantee: fall through and persist unchanged state.
		v.RemoveGrantee(targetUserID)
		return nil
	})
	if err != nil {
		if errors.Is(err, store.ErrVehicleNotFound) {
			return nil, domainerrors.NotFound("vehicle not found")
		}
		return nil, err
	}

	if s.logger != nil {
		s.logger.Info("Vehicle share revoked",
			"vehicle_id", vehicleID,
			"owner_id", ownerID,
			"grantee_id", targetUserID,
		)
	}

	return resolveDetails(ctx, s.store, updated)
}
