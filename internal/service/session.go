package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/garagehubapp/garagehub-server/internal/auth"
	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/id"
	"github.com/garagehubapp/garagehub-server/internal/store"
)

// SessionService manages refresh token sessions.
type SessionService struct {
	store        *store.Store
	tokenService *auth.TokenService
	logger       *slog.Logger
}

// NewSessionService creates a new session service.
func NewSessionService(st *store.Store, tokenService *auth.TokenService, logger *slog.Logger) *SessionService {
	return &SessionService{
		store:        st,
		tokenService: tokenService,
		logger:       logger,
	}
}

// SessionResponse contains a freshly issued token pair.
type SessionResponse struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time `json:"refresh_token_expires_at"`
}

// CreateSession issues an access/refresh token pair and persists the session.
func (s *SessionService) CreateSession(ctx context.Context, user *domain.User, ipAddress string) (*SessionResponse, error) {
	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, fmt.Errorf("generate access token: %w", err)
	}

	refreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, fmt.Errorf("generate refresh token: %w", err)
	}

	sessionID, err := id.Generate("sess")
	if err != nil {
		return nil, fmt.Errorf("generate session ID: %w", err)
	}

	now := time.Now()
	session := &domain.Session{
		ID:               sessionID,
		UserID:           user.ID,
		RefreshTokenHash: auth.HashRefreshToken(refreshToken),
		ExpiresAt:        now.Add(s.tokenService.RefreshTokenDuration()),
		CreatedAt:        now,
		LastSeenAt:       now,
		IPAddress:        ipAddress,
	}

	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	return &SessionResponse{
		AccessToken:           accessToken,
		RefreshToken:          refreshToken,
		AccessTokenExpiresAt:  now.Add(s.tokenService.AccessTokenDuration()),
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, nil
}

// RefreshSession rotates the refresh token and issues a new token pair.
// The old refresh token is invalidated.
func (s *SessionService) RefreshSession(ctx context.Context, refreshToken, ipAddress string) (*SessionResponse, *domain.User, error) {
	oldHash := auth.HashRefreshToken(refreshToken)

	session, err := s.store.GetSessionByTokenHash(ctx, oldHash)
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) {
			return nil, nil, domainerrors.Unauthorized("invalid refresh token")
		}
		if errors.Is(err, store.ErrSessionExpired) {
			return nil, nil, domainerrors.TokenExpired("refresh token expired")
		}
		return nil, nil, fmt.Errorf("lookup session: %w", err)
	}

	user, err := s.store.GetUser(ctx, session.UserID)
	if err != nil {
		return nil, nil, domainerrors.Unauthorized("invalid refresh token")
	}

	accessToken, err := s.tokenService.GenerateAccessToken(user)
	if err != nil {
		return nil, nil, fmt.Errorf("generate access token: %w", err)
	}

	newRefreshToken, err := s.tokenService.GenerateRefreshToken()
	if err != nil {
		return nil, nil, fmt.Errorf("generate refresh token: %w", err)
	}

	now := time.Now()
	session.RefreshTokenHash = auth.HashRefreshToken(newRefreshToken)
	session.ExpiresAt = now.Add(s.tokenService.RefreshTokenDuration())
	if ipAddress != "" {
		session.IPAddress = ipAddress
	}
	session.Touch()

	if err := s.store.UpdateSession(ctx, session, oldHash); err != nil {
		return nil, nil, fmt.Errorf("update session: %w", err)
	}

	return &SessionResponse{
		AccessToken:           accessToken,
		RefreshToken:          newRefreshToken,
		AccessTokenExpiresAt:  now.Add(s.tokenService.AccessTokenDuration()),
		RefreshTokenExpiresAt: session.ExpiresAt,
	}, user, nil
}

// RevokeSession deletes the session matching a refresh token.
// Unknown tokens are a no-op so logout is idempotent.
func (s *SessionService) RevokeSession(ctx context.Context, refreshToken string) error {
	session, err := s.store.GetSessionByTokenHash(ctx, auth.HashRefreshToken(refreshToken))
	if err != nil {
		if errors.Is(err, store.ErrSessionNotFound) || errors.Is(err, store.ErrSessionExpired) {
			return nil
		}
		return fmt.Errorf("lookup session: %w", err)
	}

	return s.store.DeleteSession(ctx, session)
}
