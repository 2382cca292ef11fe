package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2/humatest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehubapp/garagehub-server/internal/auth"
	"github.com/garagehubapp/garagehub-server/internal/config"
	"github.com/garagehubapp/garagehub-server/internal/media/photos"
	"github.com/garagehubapp/garagehub-server/internal/service"
	"github.com/garagehubapp/garagehub-server/internal/store"
	"github.com/garagehubapp/garagehub-server/internal/weather"
)

// testEnvelope mirrors the wire envelope for decoding in tests.
type testEnvelope[T any] struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Data    T      `json:"data"`
	Error   string `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type testServer struct {
	*Server
	api     humatest.TestAPI
	cleanup func()
}

func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "garagehub-api-test-*")
	require.NoError(t, err)

	cfg := &config.Config{
		App:    config.AppConfig{Environment: "test"},
		Logger: config.LoggerConfig{Level: "error"},
		Data:   config.DataConfig{BasePath: tmpDir},
		Server: config.ServerConfig{
			Name: "GarageHub Test",
			Port: "0",
		},
		Auth: config.AuthConfig{
			AccessTokenDuration:  time.Hour,
			RefreshTokenDuration: 720 * time.Hour,
		},
	}

	st, err := store.New(filepath.Join(tmpDir, "db"), nil)
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour, 720*time.Hour)
	require.NoError(t, err)

	photoStorage, err := photos.NewStorage(filepath.Join(tmpDir, "photos"))
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	sessionService := service.NewSessionService(st, tokenService, logger)
	authService := service.NewAuthService(st, tokenService, sessionService, logger)
	vehicleService := service.NewVehicleService(st, photoStorage, logger)

	// No API key: the forecast endpoint answers 502 in tests
	weatherClient := weather.NewClient("", "BR", logger)

	services := &Services{
		Auth:        authService,
		Session:     sessionService,
		Vehicle:     vehicleService,
		Sharing:     service.NewSharingService(st, logger),
		Maintenance: service.NewMaintenanceService(st, logger),
		Weather:     service.NewWeatherService(weatherClient, logger),
		Content:     service.NewContentService(),
	}

	s := NewServer(cfg, st, services, &StorageServices{Photos: photoStorage}, logger)

	testAPI := humatest.Wrap(t, s.api)

	cleanup := func() {
		s.Close()
		_ = st.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return &testServer{Server: s, api: testAPI, cleanup: cleanup}
}

// registerUser creates an account via the API and returns its access token and ID.
func (ts *testServer) registerUser(t *testing.T, email string) (token string, userID string) {
	t.Helper()

	resp := ts.api.Post("/api/v1/auth/register", map[string]any{
		"email":    email,
		"password": "TestPassword123!",
	})
	require.Equal(t, http.StatusOK, resp.Code, "registration failed: %s", resp.Body.String())

	var envelope testEnvelope[AuthResponseBody]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	return envelope.Data.AccessToken, envelope.Data.User.ID
}

// createVehicle registers a vehicle via the API and returns its ID.
func (ts *testServer) createVehicle(t *testing.T, token, plate string) string {
	t.Helper()

	resp := ts.api.Post("/api/v1/vehicles",
		"Authorization: Bearer "+token,
		map[string]any{
			"plate": plate,
			"make":  "Fiat",
			"model": "Uno",
			"year":  2015,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, "create vehicle failed: %s", resp.Body.String())

	var envelope testEnvelope[VehicleResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	return envelope.Data.ID
}

func TestHealthCheck(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/health")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[map[string]any]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.True(t, envelope.Success)
	assert.Equal(t, "ok", envelope.Data["status"])
}

func TestRegisterAndLogin(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "driver@example.com")
	require.NotEmpty(t, token)

	resp := ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "driver@example.com",
		"password": "TestPassword123!",
	})
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Post("/api/v1/auth/login", map[string]any{
		"email":    "driver@example.com",
		"password": "WrongPassword!",
	})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestGetMe(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.registerUser(t, "driver@example.com")

	resp := ts.api.Get("/api/v1/auth/me", "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[UserResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "driver@example.com", envelope.Data.Email)
}

func TestVehicles_RequireAuth(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/vehicles")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = ts.api.Get("/api/v1/vehicles", "Authorization: Bearer garbage-token")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestCreateVehicle_WireShape(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, userID := ts.registerUser(t, "driver@example.com")

	resp := ts.api.Post("/api/v1/vehicles",
		"Authorization: Bearer "+token,
		map[string]any{
			"plate": "abc1d23",
			"make":  "Fiat",
			"model": "Uno",
			"year":  2015,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var envelope testEnvelope[VehicleResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))

	vehicle := envelope.Data
	assert.Equal(t, "ABC1D23", vehicle.Plate)
	assert.Equal(t, "unspecified", vehicle.Color)
	assert.Equal(t, userID, vehicle.Owner.ID)
	assert.Equal(t, "driver@example.com", vehicle.Owner.Email)
	assert.NotNil(t, vehicle.SharedWith)
	assert.Empty(t, vehicle.SharedWith)
	assert.Empty(t, vehicle.PhotoURL)
}

func TestCreateVehicle_DuplicatePlate(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "driver@example.com")
	ts.createVehicle(t, token, "ABC1D23")

	resp := ts.api.Post("/api/v1/vehicles",
		"Authorization: Bearer "+token,
		map[string]any{
			"plate": "abc1d23",
			"make":  "Ford",
			"model": "Ka",
			"year":  2018,
		},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)

	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.False(t, envelope.Success)
	assert.Equal(t, "DUPLICATE_PLATE", envelope.Code)
}

func TestShareFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ownerToken, _ := ts.registerUser(t, "owner@example.com")
	friendToken, friendID := ts.registerUser(t, "friend@example.com")
	vehicleID := ts.createVehicle(t, ownerToken, "ABC1D23")

	// Invisible before sharing
	resp := ts.api.Get("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+friendToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)

	// Grant
	resp = ts.api.Post("/api/v1/vehicles/"+vehicleID+"/shares",
		"Authorization: Bearer "+ownerToken,
		map[string]any{"email": "friend@example.com"},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// Visible now
	resp = ts.api.Get("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+friendToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Re-grant is rejected
	resp = ts.api.Post("/api/v1/vehicles/"+vehicleID+"/shares",
		"Authorization: Bearer "+ownerToken,
		map[string]any{"email": "friend@example.com"},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	var envelope testEnvelope[struct{}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "ALREADY_SHARED", envelope.Code)

	// Self-share is rejected
	resp = ts.api.Post("/api/v1/vehicles/"+vehicleID+"/shares",
		"Authorization: Bearer "+ownerToken,
		map[string]any{"email": "owner@example.com"},
	)
	require.Equal(t, http.StatusBadRequest, resp.Code)
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "INVALID_OPERATION", envelope.Code)

	// Unknown target email is 404
	resp = ts.api.Post("/api/v1/vehicles/"+vehicleID+"/shares",
		"Authorization: Bearer "+ownerToken,
		map[string]any{"email": "nobody@example.com"},
	)
	assert.Equal(t, http.StatusNotFound, resp.Code)

	// Revoke, then revoke again: both succeed
	resp = ts.api.Delete("/api/v1/vehicles/"+vehicleID+"/shares/"+friendID,
		"Authorization: Bearer "+ownerToken)
	assert.Equal(t, http.StatusOK, resp.Code)
	resp = ts.api.Delete("/api/v1/vehicles/"+vehicleID+"/shares/"+friendID,
		"Authorization: Bearer "+ownerToken)
	assert.Equal(t, http.StatusOK, resp.Code)

	// Visibility is gone
	resp = ts.api.Get("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+friendToken)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestShare_NonOwnerForbidden(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	ownerToken, _ := ts.registerUser(t, "owner@example.com")
	strangerToken, _ := ts.registerUser(t, "stranger@example.com")
	vehicleID := ts.createVehicle(t, ownerToken, "ABC1D23")

	resp := ts.api.Post("/api/v1/vehicles/"+vehicleID+"/shares",
		"Authorization: Bearer "+strangerToken,
		map[string]any{"email": "owner@example.com"},
	)
	assert.Equal(t, http.StatusForbidden, resp.Code)
}

func TestMaintenanceFlow(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "owner@example.com")
	vehicleID := ts.createVehicle(t, token, "ABC1D23")

	resp := ts.api.Post("/api/v1/vehicles/"+vehicleID+"/maintenance",
		"Authorization: Bearer "+token,
		map[string]any{
			"description": "oil change",
			"cost":        150.0,
			"odometer":    42000,
		},
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	resp = ts.api.Get("/api/v1/vehicles/"+vehicleID+"/maintenance",
		"Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Records []MaintenanceResponse `json:"records"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data.Records, 1)
	assert.Equal(t, "oil change", envelope.Data.Records[0].Description)
}

func TestDeleteVehicle(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "owner@example.com")
	vehicleID := ts.createVehicle(t, token, "ABC1D23")

	resp := ts.api.Delete("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+token)
	assert.Equal(t, http.StatusNotFound, resp.Code)
}

func TestContentRoutes_Public(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	resp := ts.api.Get("/api/v1/content/featured-vehicles")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/content/services")
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = ts.api.Get("/api/v1/content/maintenance-tips/motorcycle")
	assert.Equal(t, http.StatusOK, resp.Code)

	// Unknown type falls back to general tips
	resp = ts.api.Get("/api/v1/content/maintenance-tips/spaceship")
	assert.Equal(t, http.StatusOK, resp.Code)

	var envelope testEnvelope[struct {
		Tips []service.MaintenanceTip `json:"tips"`
	}]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.NotEmpty(t, envelope.Data.Tips)
}

func TestWeather_UnconfiguredIsBadGateway(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "owner@example.com")

	resp := ts.api.Get("/api/v1/weather/forecast?city=Curitiba",
		"Authorization: Bearer "+token)
	assert.Equal(t, http.StatusBadGateway, resp.Code)
}

func TestUploadAndServePhoto(t *testing.T) {
	ts := setupTestServer(t)
	defer ts.cleanup()

	token, _ := ts.registerUser(t, "owner@example.com")
	vehicleID := ts.createVehicle(t, token, "ABC1D23")

	photo := []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10}
	resp := ts.api.Put("/api/v1/vehicles/"+vehicleID+"/photo",
		"Authorization: Bearer "+token,
		"Content-Type: image/jpeg",
		bytes.NewReader(photo),
	)
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	// The listing now carries the photo URL
	resp = ts.api.Get("/api/v1/vehicles/"+vehicleID, "Authorization: Bearer "+token)
	require.Equal(t, http.StatusOK, resp.Code)
	var envelope testEnvelope[VehicleResponse]
	require.NoError(t, json.Unmarshal(resp.Body.Bytes(), &envelope))
	assert.Equal(t, "/api/v1/vehicles/"+vehicleID+"/photo", envelope.Data.PhotoURL)
}
