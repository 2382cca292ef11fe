package store

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/dgraph-io/badger/v4"
	"github.com/garagehubapp/garagehub-server/internal/domain"
)

const (
	maintenancePrefix          = "maintenance:"
	maintenanceByVehiclePrefix = "idx:maintenance:vehicle:" // For per-vehicle listing and cascade delete
)

// maintenanceVehicleKey builds the per-vehicle index key for a record.
func maintenanceVehicleKey(vehicleID, recordID string) []byte {
	return []byte(maintenanceByVehiclePrefix + vehicleID + ":" + recordID)
}

// CreateMaintenance persists a new maintenance record and its vehicle index.
func (s *Store) CreateMaintenance(_ context.Context, record *domain.MaintenanceRecord) error {
	key := []byte(maintenancePrefix + record.ID)
	indexKey := maintenanceVehicleKey(record.VehicleID, record.ID)

	return s.db.Update(func(txn *badger.Txn) error {
		if err := setInTxn(txn, key, record); err != nil {
			return fmt.Errorf("save maintenance record: %w", err)
		}
		return txn.Set(indexKey, []byte(record.ID))
	})
}

// ListMaintenanceByVehicle returns a vehicle's maintenance records sorted
// newest first by service date, then by creation time.
func (s *Store) ListMaintenanceByVehicle(_ context.Context, vehicleID string) ([]*domain.MaintenanceRecord, error) {
	indexPrefix := []byte(maintenanceByVehiclePrefix + vehicleID + ":")
	var records []*domain.MaintenanceRecord

	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			var recordID string
			err := it.Item().Value(func(val []byte) error {
				recordID = string(val)
				return nil
			})
			if err != nil {
				return err
			}

			var record domain.MaintenanceRecord
			if err := getInTxn(txn, []byte(maintenancePrefix+recordID), &record); err != nil {
				if errors.Is(err, badger.ErrKeyNotFound) {
					// Dangling index entry, skip
					continue
				}
				return err
			}

			records = append(records, &record)
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("list maintenance records: %w", err)
	}

	sort.Slice(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.After(records[j].Date)
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})

	return records, nil
}

// DeleteMaintenanceByVehicle removes every maintenance record for a vehicle.
// Called before the vehicle itself is deleted so a crash in between leaves
// a childless vehicle rather than orphaned records.
func (s *Store) DeleteMaintenanceByVehicle(_ context.Context, vehicleID string) error {
	indexPrefix := []byte(maintenanceByVehiclePrefix + vehicleID + ":")

	return s.db.Update(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = indexPrefix

		it := txn.NewIterator(opts)
		defer it.Close()

		// Collect keys first; deleting while iterating invalidates the iterator.
		var indexKeys [][]byte
		var recordKeys [][]byte

		for it.Seek(indexPrefix); it.ValidForPrefix(indexPrefix); it.Next() {
			indexKeys = append(indexKeys, it.Item().KeyCopy(nil))

			err := it.Item().Value(func(val []byte) error {
				recordKeys = append(recordKeys, []byte(maintenancePrefix+string(val)))
				return nil
			})
			if err != nil {
				return err
			}
		}

		for _, key := range recordKeys {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}
		for _, key := range indexKeys {
			if err := txn.Delete(key); err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
				return err
			}
		}

		return nil
	})
}
