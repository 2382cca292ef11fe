package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	"github.com/garagehubapp/garagehub-server/internal/service"
)

// UserResponse is the public user shape. Credentials never leave the service layer.
type UserResponse struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	LastLoginAt time.Time `json:"last_login_at,omitzero"`
}

func toUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		CreatedAt:   user.CreatedAt,
		LastLoginAt: user.LastLoginAt,
	}
}

// AuthResponseBody carries the token pair and the authenticated user.
type AuthResponseBody struct {
	User                  UserResponse `json:"user"`
	AccessToken           string       `json:"access_token"`
	RefreshToken          string       `json:"refresh_token"`
	AccessTokenExpiresAt  time.Time    `json:"access_token_expires_at"`
	RefreshTokenExpiresAt time.Time    `json:"refresh_token_expires_at"`
}

func toAuthResponseBody(resp *service.AuthResponse) AuthResponseBody {
	return AuthResponseBody{
		User:                  toUserResponse(resp.User),
		AccessToken:           resp.AccessToken,
		RefreshToken:          resp.RefreshToken,
		AccessTokenExpiresAt:  resp.AccessTokenExpiresAt,
		RefreshTokenExpiresAt: resp.RefreshTokenExpiresAt,
	}
}

// MessageResponse is a simple acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// MessageOutput wraps MessageResponse for huma.
type MessageOutput struct {
	Body MessageResponse
}

// AuthOutput wraps AuthResponseBody for huma.
type AuthOutput struct {
	Body AuthResponseBody
}

// RegisterInput is the request for account creation.
type RegisterInput struct {
	Body struct {
		Email       string `json:"email" format:"email" doc:"Email address"`
		Password    string `json:"password" minLength:"8" doc:"Password, at least 8 characters"`
		DisplayName string `json:"display_name,omitempty" maxLength:"100" doc:"Optional display name"`
	}
}

// LoginInput is the request for credential login.
type LoginInput struct {
	Body struct {
		Email    string `json:"email" format:"email" doc:"Email address"`
		Password string `json:"password" doc:"Password"`
	}
}

// RefreshInput is the request for token rotation.
type RefreshInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
	}
}

// LogoutInput revokes the session holding the refresh token.
type LogoutInput struct {
	Body struct {
		RefreshToken string `json:"refresh_token" doc:"Opaque refresh token"`
	}
}

// MeInput asks for the calling user's profile.
type MeInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
}

// MeOutput wraps the profile response.
type MeOutput struct {
	Body UserResponse
}

func (s *Server) registerAuthRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "register",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/register",
		Summary:     "Register a new account",
		Description: "Creates a user account and returns a token pair.",
		Tags:        []string{"Auth"},
	}, s.handleRegister)

	huma.Register(s.api, huma.Operation{
		OperationID: "login",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/login",
		Summary:     "Log in",
		Description: "Exchanges credentials for a token pair.",
		Tags:        []string{"Auth"},
	}, s.handleLogin)

	huma.Register(s.api, huma.Operation{
		OperationID: "refresh-token",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/refresh",
		Summary:     "Refresh tokens",
		Description: "Rotates the refresh token and issues a new access token.",
		Tags:        []string{"Auth"},
	}, s.handleRefresh)

	huma.Register(s.api, huma.Operation{
		OperationID: "logout",
		Method:      http.MethodPost,
		Path:        "/api/v1/auth/logout",
		Summary:     "Log out",
		Description: "Revokes the session holding the given refresh token.",
		Tags:        []string{"Auth"},
	}, s.handleLogout)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-me",
		Method:      http.MethodGet,
		Path:        "/api/v1/auth/me",
		Summary:     "Get current user",
		Tags:        []string{"Auth"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleMe)
}

func (s *Server) handleRegister(ctx context.Context, input *RegisterInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Register(ctx, service.RegisterRequest{
		Email:       input.Body.Email,
		Password:    input.Body.Password,
		DisplayName: input.Body.DisplayName,
		IPAddress:   GetClientIP(ctx),
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Registration failed", err)
	}

	return &AuthOutput{Body: toAuthResponseBody(resp)}, nil
}

func (s *Server) handleLogin(ctx context.Context, input *LoginInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.Login(ctx, service.LoginRequest{
		Email:     input.Body.Email,
		Password:  input.Body.Password,
		IPAddress: GetClientIP(ctx),
	})
	if err != nil {
		return nil, huma.Error401Unauthorized("Login failed", err)
	}

	return &AuthOutput{Body: toAuthResponseBody(resp)}, nil
}

func (s *Server) handleRefresh(ctx context.Context, input *RefreshInput) (*AuthOutput, error) {
	resp, err := s.services.Auth.RefreshTokens(ctx, service.RefreshRequest{
		RefreshToken: input.Body.RefreshToken,
		IPAddress:    GetClientIP(ctx),
	})
	if err != nil {
		return nil, huma.Error401Unauthorized("Token refresh failed", err)
	}

	return &AuthOutput{Body: toAuthResponseBody(resp)}, nil
}

func (s *Server) handleLogout(ctx context.Context, input *LogoutInput) (*MessageOutput, error) {
	if err := s.services.Auth.Logout(ctx, input.Body.RefreshToken); err != nil {
		return nil, huma.Error500InternalServerError("Logout failed", err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "logged out"}}, nil
}

func (s *Server) handleMe(ctx context.Context, input *MeInput) (*MeOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	return &MeOutput{Body: toUserResponse(user)}, nil
}
