package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehubapp/garagehub-server/internal/domain"
)

func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	// Create temp directory for test database
	tmpDir, err := os.MkdirTemp("", "garagehub-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := New(dbPath, nil)
	require.NoError(t, err)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return s, cleanup
}

func newTestVehicle(id, plate, ownerID string) *domain.Vehicle {
	v := &domain.Vehicle{
		Entity:  domain.Entity{ID: id},
		Plate:   plate,
		Make:    "Fiat",
		Model:   "Uno",
		Year:    2015,
		Color:   "red",
		OwnerID: ownerID,
	}
	v.InitTimestamps()
	return v
}

func TestCreateVehicle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	vehicle := newTestVehicle("veh-1", "ABC1D23", "usr-owner")
	err := s.CreateVehicle(ctx, vehicle)
	require.NoError(t, err)

	retrieved, err := s.GetVehicle(ctx, "veh-1")
	require.NoError(t, err)
	assert.Equal(t, vehicle.Plate, retrieved.Plate)
	assert.Equal(t, vehicle.OwnerID, retrieved.OwnerID)
}

func TestGetVehicle_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.GetVehicle(context.Background(), "veh-missing")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestCreateVehicle_DuplicatePlateSameOwner(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	err := s.CreateVehicle(ctx, newTestVehicle("veh-1", "ABC1D23", "usr-owner"))
	require.NoError(t, err)

	err = s.CreateVehicle(ctx, newTestVehicle("veh-2", "ABC1D23", "usr-owner"))
	assert.ErrorIs(t, err, ErrPlateExists)
}

func TestCreateVehicle_SamePlateDifferentOwners(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	// Uniqueness is scoped per owner, the same plate may exist under two accounts
	err := s.CreateVehicle(ctx, newTestVehicle("veh-1", "ABC1D23", "usr-alice"))
	require.NoError(t, err)

	err = s.CreateVehicle(ctx, newTestVehicle("veh-2", "ABC1D23", "usr-bob"))
	require.NoError(t, err)
}

func TestUpdateVehicle_PlateChange(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	vehicle := newTestVehicle("veh-1", "ABC1D23", "usr-owner")
	require.NoError(t, s.CreateVehicle(ctx, vehicle))

	vehicle.Plate = "XYZ9Z99"
	require.NoError(t, s.UpdateVehicle(ctx, vehicle))

	// Old plate is free again
	err := s.CreateVehicle(ctx, newTestVehicle("veh-2", "ABC1D23", "usr-owner"))
	require.NoError(t, err)

	// New plate is taken
	err = s.CreateVehicle(ctx, newTestVehicle("veh-3", "XYZ9Z99", "usr-owner"))
	assert.ErrorIs(t, err, ErrPlateExists)
}

func TestUpdateVehicle_PlateConflict(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateVehicle(ctx, newTestVehicle("veh-1", "ABC1D23", "usr-owner")))
	v2 := newTestVehicle("veh-2", "XYZ9Z99", "usr-owner")
	require.NoError(t, s.CreateVehicle(ctx, v2))

	v2.Plate = "ABC1D23"
	err := s.UpdateVehicle(ctx, v2)
	assert.ErrorIs(t, err, ErrPlateExists)
}

func TestUpdateVehicleSharing(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateVehicle(ctx, newTestVehicle("veh-1", "ABC1D23", "usr-owner")))

	updated, err := s.UpdateVehicleSharing(ctx, "veh-1", func(v *domain.Vehicle) error {
		if !v.AddGrantee("usr-friend") {
			t.Fatal("expected grant to be added")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-friend"}, updated.SharedWith)

	// The mutation was persisted, not just returned
	retrieved, err := s.GetVehicle(ctx, "veh-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-friend"}, retrieved.SharedWith)
}

func TestUpdateVehicleSharing_MutateErrorLeavesStateIntact(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	vehicle := newTestVehicle("veh-1", "ABC1D23", "usr-owner")
	vehicle.SharedWith = []string{"usr-friend"}
	require.NoError(t, s.CreateVehicle(ctx, vehicle))

	_, err := s.UpdateVehicleSharing(ctx, "veh-1", func(v *domain.Vehicle) error {
		v.SharedWith = nil
		return assert.AnError
	})
	require.Error(t, err)

	retrieved, err := s.GetVehicle(ctx, "veh-1")
	require.NoError(t, err)
	assert.Equal(t, []string{"usr-friend"}, retrieved.SharedWith)
}

func TestUpdateVehicleSharing_NotFound(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	_, err := s.UpdateVehicleSharing(context.Background(), "veh-missing", func(v *domain.Vehicle) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestDeleteVehicle(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	require.NoError(t, s.CreateVehicle(ctx, newTestVehicle("veh-1", "ABC1D23", "usr-owner")))
	require.NoError(t, s.DeleteVehicle(ctx, "veh-1"))

	_, err := s.GetVehicle(ctx, "veh-1")
	assert.ErrorIs(t, err, ErrVehicleNotFound)

	// Plate index entry is gone too
	err = s.CreateVehicle(ctx, newTestVehicle("veh-2", "ABC1D23", "usr-owner"))
	require.NoError(t, err)
}

func TestListVehiclesVisibleTo(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	ctx := context.Background()

	owned := newTestVehicle("veh-1", "ABC1D23", "usr-alice")
	owned.CreatedAt = time.Now().Add(-2 * time.Hour)
	require.NoError(t, s.CreateVehicle(ctx, owned))

	shared := newTestVehicle("veh-2", "XYZ9Z99", "usr-bob")
	shared.SharedWith = []string{"usr-alice"}
	shared.CreatedAt = time.Now().Add(-1 * time.Hour)
	require.NoError(t, s.CreateVehicle(ctx, shared))

	hidden := newTestVehicle("veh-3", "QQQ1Q11", "usr-bob")
	require.NoError(t, s.CreateVehicle(ctx, hidden))

	vehicles, err := s.ListVehiclesVisibleTo(ctx, "usr-alice")
	require.NoError(t, err)
	require.Len(t, vehicles, 2)

	// Newest first
	assert.Equal(t, "veh-2", vehicles[0].ID)
	assert.Equal(t, "veh-1", vehicles[1].ID)
}

func TestListVehiclesVisibleTo_Empty(t *testing.T) {
	s, cleanup := setupTestStore(t)
	defer cleanup()

	vehicles, err := s.ListVehiclesVisibleTo(context.Background(), "usr-nobody")
	require.NoError(t, err)
	assert.Empty(t, vehicles)
}
