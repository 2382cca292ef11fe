package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/garagehubapp/garagehub-server/internal/domain"
)

const (
	vehiclePrefix             = "vehicle:"
	vehicleByPlateOwnerPrefix = "idx:vehicles:plateowner:" // Uniqueness of (plate, owner)
)

var (
	// ErrVehicleNotFound is returned when a vehicle cannot be found by ID.
	ErrVehicleNotFound = errors.New("vehicle not found")
	// ErrPlateExists is returned when the owner already registered the plate.
	ErrPlateExists = errors.New("plate already registered for this owner")
)

// plateOwnerKey builds the composite uniqueness index key.
// The plate must already be normalized.
func plateOwnerKey(plate, ownerID string) []byte {
	return []byte(vehicleByPlateOwnerPrefix + plate + "|" + ownerID)
}

// CreateVehicle persists a new vehicle, enforcing (plate, owner) uniqueness
// inside a single transaction.
func (s *Store) CreateVehicle(_ context.Context, vehicle *domain.Vehicle) error {
	key := []byte(vehiclePrefix + vehicle.ID)
	indexKey := plateOwnerKey(vehicle.Plate, vehicle.OwnerID)

	return s.db.Update(func(txn *badger.Txn) error {
		_, err := txn.Get(indexKey)
		if err == nil {
			return ErrPlateExists
		}
		if !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("check plate index: %w", err)
		}

		if err := setInTxn(txn, key, vehicle); err != nil {
			return fmt.Errorf("save vehicle: %w", err)
		}

		return txn.Set(indexKey, []byte(vehicle.ID))
	})
}

// GetVehicle retrieves a vehicle by ID.
func (s *Store) GetVehicle(_ context.Context, id string) (*domain.Vehicle, error) {
	key := []byte(vehiclePrefix + id)

	var vehicle domain.Vehicle
	if err := s.get(key, &vehicle); err != nil {
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, ErrVehicleNotFound
		}
		return nil, fmt.Errorf("get vehicle: %w", err)
	}

	return &vehicle, nil
}

// UpdateVehicle persists field edits to an existing vehicle, moving the
// (plate, owner) index when the plate changed and re-checking uniqueness.
func (s *Store) UpdateVehicle(ctx context.Context, vehicle *domain.Vehicle) error {
	old, err := s.GetVehicle(ctx, vehicle.ID)
	if err != nil {
		return err
	}

	vehicle.Touch()
	key := []byte(vehiclePrefix + vehicle.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if old.Plate != vehicle.Plate {
			newIndexKey := plateOwnerKey(vehicle.Plate, vehicle.OwnerID)
			_, err := txn.Get(newIndexKey)
			if err == nil {
				return ErrPlateExists
			}
			if !errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("check plate index: %w", err)
			}

			oldIndexKey := plateOwnerKey(old.Plate, old.OwnerID)
			if err := txn.Delete(oldIndexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
			if err := txn.Set(newIndexKey, []byte(vehicle.ID)); err != nil {
				return err
			}
		}

		return setInTxn(txn, key, vehicle)
	})
}

// UpdateVehicleSharing applies mutate atomically to a vehicle's current
// stored state inside one transaction. The closure sees a freshly read
// vehicle, so concurrent share changes cannot be lost to read-modify-write
// races. Returning an error from mutate aborts without writing.
func (s *Store) UpdateVehicleSharing(_ context.Context, vehicleID string, mutate func(*domain.Vehicle) error) (*domain.Vehicle, error) {
	key := []byte(vehiclePrefix + vehicleID)
	var updated *domain.Vehicle

	err := s.db.Update(func(txn *badger.Txn) error {
		var vehicle domain.Vehicle
		if err := getInTxn(txn, key, &vehicle); err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return ErrVehicleNotFound
			}
			return fmt.Errorf("get vehicle: %w", err)
		}

		if err := mutate(&vehicle); err != nil {
			return err
		}

		vehicle.Touch()
		if err := setInTxn(txn, key, &vehicle); err != nil {
			return fmt.Errorf("save vehicle: %w", err)
		}

		updated = &vehicle
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

// DeleteVehicle removes a vehicle and its plate index. The caller is
// responsible for cascading maintenance deletion first.
func (s *Store) DeleteVehicle(ctx context.Context, id string) error {
	vehicle, err := s.GetVehicle(ctx, id)
	if err != nil {
		return err
	}

	key := []byte(vehiclePrefix + id)
	indexKey := plateOwnerKey(vehicle.Plate, vehicle.OwnerID)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		if err := txn.Delete(indexKey); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return err
		}
		return nil
	})
}

// ListVehiclesVisibleTo returns every vehicle the user owns or was granted,
// newest first by creation time.
func (s *Store) ListVehiclesVisibleTo(_ context.Context, userID string) ([]*domain.Vehicle, error) {
	prefix := []byte(vehiclePrefix)
	var vehicles []*domain.Vehicle

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = prefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			item := it.Item()

			err := item.Value(func(val []byte) error {
				var vehicle domain.Vehicle
				if unmarshalErr := json.Unmarshal(val, &vehicle); unmarshalErr != nil {
					// Skip malformed entries
					return nil //nolint:nilerr // intentionally skip malformed entries
				}

				if !vehicle.IsVisibleTo(userID) {
					return nil
				}

				vehicles = append(vehicles, &vehicle)
				return nil
			})
			if err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}

	sort.Slice(vehicles, func(i, j int) bool {
		return vehicles[i].CreatedAt.After(vehicles[j].CreatedAt)
	})

	return vehicles, nil
}
