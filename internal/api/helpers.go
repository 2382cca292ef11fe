package api

import (
	"context"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/domain"
)

// authenticateRequest resolves the calling user from the Authorization
// header, falling back to the middleware-populated context. Returns the
// user or a 401 error.
func (s *Server) authenticateRequest(ctx context.Context, authorization string) (*domain.User, error) {
	if userID, err := GetUserID(ctx); err == nil {
		user, err := s.store.GetUser(ctx, userID)
		if err == nil {
			return user, nil
		}
	}

	if authorization == "" {
		return nil, huma.Error401Unauthorized("Authentication required")
	}
	if !strings.HasPrefix(authorization, "Bearer ") {
		return nil, huma.Error401Unauthorized("Invalid authorization header format")
	}

	token := strings.TrimPrefix(authorization, "Bearer ")
	user, _, err := s.services.Auth.VerifyAccessToken(ctx, token)
	if err != nil {
		return nil, huma.Error401Unauthorized("Invalid or expired token", err)
	}

	return user, nil
}
