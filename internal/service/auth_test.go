package service

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/garagehubapp/garagehub-server/internal/auth"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// setupAuthTest creates an auth service backed by temporary storage and a
// throwaway token key.
func setupAuthTest(t *testing.T) (*AuthService, *store.Store, func()) {
	t.Helper()

	tmpDir, err := os.MkdirTemp("", "garagehub-auth-test-*")
	require.NoError(t, err)

	dbPath := filepath.Join(tmpDir, "test.db")
	s, err := store.New(dbPath, nil)
	require.NoError(t, err)

	key, err := auth.LoadOrGenerateKey(tmpDir)
	require.NoError(t, err)

	tokenService, err := auth.NewTokenService(hex.EncodeToString(key), time.Hour, 720*time.Hour)
	require.NoError(t, err)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sessionService := NewSessionService(s, tokenService, logger)
	authService := NewAuthService(s, tokenService, sessionService, logger)

	cleanup := func() {
		_ = s.Close()
		_ = os.RemoveAll(tmpDir)
	}

	return authService, s, cleanup
}

func TestRegister(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	resp, err := authService.Register(context.Background(), RegisterRequest{
		Email:       "new@example.com",
		Password:    "correct-horse-battery",
		DisplayName: "New User",
	})
	require.NoError(t, err)

	assert.Equal(t, "new@example.com", resp.User.Email)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.NotEqual(t, "correct-horse-battery", resp.User.PasswordHash)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	_, err = authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "another-password-1",
	})
	assert.ErrorIs(t, err, domainerrors.ErrAlreadyExists)
}

func TestRegister_WeakPassword(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	_, err := authService.Register(context.Background(), RegisterRequest{
		Email: "new@example.com", Password: "short",
	})
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestLogin(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	resp, err := authService.Login(ctx, LoginRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
}

func TestLogin_BadCredentialsDoNotLeakExistence(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	_, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	// Wrong password and unknown account produce the same error class
	_, errWrongPass := authService.Login(ctx, LoginRequest{
		Email: "new@example.com", Password: "wrong-password-123",
	})
	_, errNoUser := authService.Login(ctx, LoginRequest{
		Email: "nobody@example.com", Password: "whatever-password",
	})

	assert.ErrorIs(t, errWrongPass, domainerrors.ErrInvalidCredentials)
	assert.ErrorIs(t, errNoUser, domainerrors.ErrInvalidCredentials)
	assert.Equal(t, errWrongPass.Error(), errNoUser.Error())
}

func TestRefreshTokens_Rotation(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	refreshed, err := authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	require.NoError(t, err)
	assert.NotEqual(t, registered.RefreshToken, refreshed.RefreshToken)

	// The old refresh token is dead after rotation
	_, err = authService.RefreshTokens(ctx, RefreshRequest{
		RefreshToken: registered.RefreshToken,
	})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)
}

func TestLogout(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	require.NoError(t, authService.Logout(ctx, registered.RefreshToken))

	_, err = authService.RefreshTokens(ctx, RefreshRequest{RefreshToken: registered.RefreshToken})
	assert.ErrorIs(t, err, domainerrors.ErrUnauthorized)

	// Logging out twice is a no-op
	require.NoError(t, authService.Logout(ctx, registered.RefreshToken))
}

func TestVerifyAccessToken(t *testing.T) {
	authService, _, cleanup := setupAuthTest(t)
	defer cleanup()

	ctx := context.Background()

	registered, err := authService.Register(ctx, RegisterRequest{
		Email: "new@example.com", Password: "correct-horse-battery",
	})
	require.NoError(t, err)

	user, claims, err := authService.VerifyAccessToken(ctx, registered.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, user.ID)
	assert.Equal(t, registered.User.ID, claims.UserID)
	assert.Equal(t, "new@example.com", claims.Email)

	_, _, err = authService.VerifyAccessToken(ctx, "not-a-token")
	assert.Error(t, err)
}
