package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehubapp/garagehub-server/internal/domain"
)

func newTestRecord(id, vehicleID string, date time.Time) *domain.MaintenanceRecord {
	r := &domain.MaintenanceRecord{
		Entity:      domain.Entity{ID: id},
		VehicleID:   vehicleID,
		Description: "oil change",
		Date:        date,
		Cost:        150,
		Odometer:    42000,
	}
	r.InitTimestamps()
	return r
}

func TestListMaintenanceByVehicle_NewestFirst(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-old", "veh-1", now.Add(-48*time.Hour))))
	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-new", "veh-1", now)))
	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-mid", "veh-1", now.Add(-24*time.Hour))))

	// Records for another vehicle stay out of the listing
	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-other", "veh-2", now)))

	records, err := s.ListMaintenanceByVehicle(ctx, "veh-1")
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, "mnt-new", records[0].ID)
	assert.Equal(t, "mnt-mid", records[1].ID)
	assert.Equal(t, "mnt-old", records[2].ID)
}

func TestListMaintenanceByVehicle_Empty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	records, err := s.ListMaintenanceByVehicle(context.Background(), "veh-none")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestDeleteMaintenanceByVehicle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()
	now := time.Now()

	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-1", "veh-1", now)))
	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-2", "veh-1", now.Add(-time.Hour))))
	require.NoError(t, s.CreateMaintenance(ctx, newTestRecord("mnt-keep", "veh-2", now)))

	require.NoError(t, s.DeleteMaintenanceByVehicle(ctx, "veh-1"))

	records, err := s.ListMaintenanceByVehicle(ctx, "veh-1")
	require.NoError(t, err)
	assert.Empty(t, records)

	// The other vehicle's log survives
	records, err = s.ListMaintenanceByVehicle(ctx, "veh-2")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestDeleteMaintenanceByVehicle_NoRecords(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	// Deleting an empty log is a no-op, not an error
	require.NoError(t, s.DeleteMaintenanceByVehicle(context.Background(), "veh-none"))
}
