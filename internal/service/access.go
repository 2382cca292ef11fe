package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// VehicleDetails is a vehicle with its identity references resolved for
// display. The store keeps bare user IDs; every read path resolves them
// through this shape.
type VehicleDetails struct {
	Vehicle    *domain.Vehicle
	Owner      domain.UserRef
	SharedWith []domain.UserRef
}

// getVehicle loads a vehicle, translating store absence into a domain error.
// Every vehicle-scoped operation re-derives the caller's relationship from
// this fresh read; authorization decisions are never cached.
func getVehicle(ctx context.Context, st *store.Store, vehicleID string) (*domain.Vehicle, error) {
	vehicle, err := st.GetVehicle(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, store.ErrVehicleNotFound) {
			return nil, domainerrors.NotFound("vehicle not found")
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}
	return vehicle, nil
}

// authorizeMutate succeeds only for the owner. Used for field edits,
// deletion, and share management.
func authorizeMutate(vehicle *domain.Vehicle, userID string) error {
	if !vehicle.IsOwner(userID) {
		return domainerrors.Forbidden("only the owner may modify this vehicle")
	}
	return nil
}

// authorizeContribute succeeds for the owner or a grantee. Used for
// maintenance record creation and listing.
func authorizeContribute(vehicle *domain.Vehicle, userID string) error {
	if !vehicle.IsVisibleTo(userID) {
		return domainerrors.Forbidden("you do not have access to this vehicle")
	}
	return nil
}

// resolveDetails resolves a vehicle's owner and grantee IDs to display refs.
// A grantee whose account has disappeared is skipped rather than failing
// the whole read.
func resolveDetails(ctx context.Context, st *store.Store, vehicle *domain.Vehicle) (*VehicleDetails, error) {
	details := &VehicleDetails{Vehicle: vehicle}

	owner, err := st.GetUser(ctx, vehicle.OwnerID)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			details.Owner = domain.UserRef{ID: vehicle.OwnerID}
		} else {
			return nil, fmt.Errorf("resolve owner: %w", err)
		}
	} else {
		details.Owner = owner.Ref()
	}

	for _, granteeID := range vehicle.SharedWith {
		grantee, err := st.GetUser(ctx, granteeID)
		if err != nil {
			if errors.Is(err, store.ErrUserNotFound) {
				continue
			}
			return nil, fmt.Errorf("resolve grantee: %w", err)
		}
		details.SharedWith = append(details.SharedWith, grantee.Ref())
	}

	return details, nil
}
