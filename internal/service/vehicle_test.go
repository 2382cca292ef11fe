package service

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// setupVehicleTest creates a vehicle service with temporary storage,
// including a photo storage backend.
func setupVehicleTest(t *testing.T) (*VehicleService, *MaintenanceService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "garagehub-vehicle-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	photoStorage, err := photos.NewStorage(filepath.Join(tmpDir, "photos"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	vehicleService := NewVehicleService(s, photoStorage, logger)
	maintenanceService := NewMaintenanceService(s, logger)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return vehicleService, maintenanceService, s, cleanup
}

func TestCreateVehicle_NormalizesPlate(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	owner := createTestUser(t, s, "owner@example.com")

	details, err := vehicles.Create(context.Background(), owner.ID, CreateVehicleRequest{
		Plate: "  abc1d23 ",
		Make:  "Fiat",
		Model: "Uno",
		Year:  2015,
	})
	require.NoError(t, err)

	assert.Equal(t, "ABC1D23", details.Vehicle.Plate)
}

func TestCreateVehicle_DefaultColor(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	owner := createTestUser(t, s, "owner@example.com")

	details, err := vehicles.Create(context.Background(), owner.ID, CreateVehicleRequest{
		Plate: "ABC1D23",
		Make:  "Fiat",
		Model: "Uno",
		Year:  2015,
	})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultColor, details.Vehicle.Color)
}

func TestCreateVehicle_InvalidPlate(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	owner := createTestUser(t, s, "owner@example.com")

	for _, plate := range []string{"ABC123", "1234567", "ABCDEFG"} {
		_, err := vehicles.Create(context.Background(), owner.ID, CreateVehicleRequest{
			Plate: plate,
			Make:  "Fiat",
			Model: "Uno",
			Year:  2015,
		})
		assert.ErrorIs(t, err, domainerrors.ErrValidation, "plate %q", plate)
	}
}

func TestCreateVehicle_YearBounds(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")

	_, err := vehicles.Create(ctx, owner.ID, CreateVehicleRequest{
		Plate: "ABC1D23", Make: "Fiat", Model: "Uno", Year: 1899,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	_, err = vehicles.Create(ctx, owner.ID, CreateVehicleRequest{
		Plate: "ABC1D23", Make: "Fiat", Model: "Uno", Year: time.Now().Year() + 2,
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	// Next calendar year is a valid model year
	_, err = vehicles.Create(ctx, owner.ID, CreateVehicleRequest{
		Plate: "ABC1D23", Make: "Fiat", Model: "Uno", Year: time.Now().Year() + 1,
	})
	require.NoError(t, err)
}

func TestCreateVehicle_DuplicatePlate(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	other := createTestUser(t, s, "other@example.com")

	_, err := vehicles.Create(ctx, owner.ID, CreateVehicleRequest{
		Plate: "ABC1D23", Make: "Fiat", Model: "Uno", Year: 2015,
	})
	require.NoError(t, err)

	// Same owner, same plate after normalization
	_, err = vehicles.Create(ctx, owner.ID, CreateVehicleRequest{
		Plate: "abc1d23", Make: "Ford", Model: "Ka", Year: 2018,
	})
	assert.ErrorIs(t, err, domainerrors.ErrDuplicatePlate)

	// Another account may register the same plate
	_, err = vehicles.Create(ctx, other.ID, CreateVehicleRequest{
		Plate: "ABC1D23", Make: "Ford", Model: "Ka", Year: 2018,
	})
	require.NoError(t, err)
}

func TestUpdateVehicle_PartialEdit(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	color := "blue"
	details, err := vehicles.Update(ctx, owner.ID, vehicle.ID, UpdateVehicleRequest{Color: &color})
	require.NoError(t, err)

	assert.Equal(t, "blue", details.Vehicle.Color)
	assert.Equal(t, vehicle.Make, details.Vehicle.Make)
	assert.Equal(t, vehicle.Plate, details.Vehicle.Plate)
}

func TestUpdateVehicle_EmptyColorResetsToDefault(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	empty := ""
	details, err := vehicles.Update(ctx, owner.ID, vehicle.ID, UpdateVehicleRequest{Color: &empty})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultColor, details.Vehicle.Color)
}

func TestUpdateVehicle_EmptyMakeRejected(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	empty := ""
	_, err := vehicles.Update(ctx, owner.ID, vehicle.ID, UpdateVehicleRequest{Make: &empty})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestDeleteVehicle_CascadesMaintenance(t *testing.T) {
	vehicles, maintenance, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	cost := 150.0
	_, err := maintenance.Add(ctx, owner.ID, vehicle.ID, AddMaintenanceRequest{
		Description: "oil change",
		Cost:        &cost,
	})
	require.NoError(t, err)

	require.NoError(t, vehicles.Delete(ctx, owner.ID, vehicle.ID))

	_, err = vehicles.Get(ctx, owner.ID, vehicle.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)

	records, err := s.ListMaintenanceByVehicle(ctx, vehicle.ID)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestAttachPhoto(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	grantee := createTestUser(t, s, "grantee@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	photo := []byte("jpeg-bytes")

	// Only the owner may upload
	err := vehicles.AttachPhoto(ctx, grantee.ID, vehicle.ID, photo)
	assert.ErrorIs(t, err, domainerrors.ErrForbidden)

	require.NoError(t, vehicles.AttachPhoto(ctx, owner.ID, vehicle.ID, photo))

	details, err := vehicles.Get(ctx, owner.ID, vehicle.ID)
	require.NoError(t, err)
	assert.True(t, details.Vehicle.HasPhoto)

	data, hash, err := vehicles.Photo(ctx, owner.ID, vehicle.ID)
	require.NoError(t, err)
	assert.Equal(t, photo, data)
	assert.NotEmpty(t, hash)
}

func TestAttachPhoto_SizeLimit(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	err := vehicles.AttachPhoto(ctx, owner.ID, vehicle.ID, make([]byte, maxPhotoSize+1))
	assert.ErrorIs(t, err, domainerrors.ErrValidation)

	err = vehicles.AttachPhoto(ctx, owner.ID, vehicle.ID, nil)
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestPhoto_NoneAttached(t *testing.T) {
	vehicles, _, s, cleanup := setupVehicleTest(t)
	defer cleanup()

	ctx := context.Background()
	owner := createTestUser(t, s, "owner@example.com")
	vehicle := createTestVehicle(t, vehicles, owner.ID, "ABC1D23")

	_, _, err := vehicles.Photo(ctx, owner.ID, vehicle.ID)
	assert.ErrorIs(t, err, domainerrors.ErrNotFound)
}
