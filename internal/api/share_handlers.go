package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/service"
)

// GrantShareInput grants another account access to a vehicle.
type GrantShareInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
	Body          struct {
		Email string `json:"email" format:"email" doc:"Email of the account to share with"`
	}
}

// RevokeShareInput removes a grant from a vehicle.
type RevokeShareInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
	UserID        string `path:"userId" doc:"User ID whose grant is revoked"`
}

func (s *Server) registerShareRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "grant-share",
		Method:      http.MethodPost,
		Path:        "/api/v1/vehicles/{id}/shares",
		Summary:     "Share a vehicle",
		Description: "Owner-only. Grants the account behind the given email read and contribute access.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGrantShare)

	huma.Register(s.api, huma.Operation{
		OperationID: "revoke-share",
		Method:      http.MethodDelete,
		Path:        "/api/v1/vehicles/{id}/shares/{userId}",
		Summary:     "Revoke a share",
		Description: "Owner-only. Revoking an absent grant succeeds without change.",
		Tags:        []string{"Sharing"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleRevokeShare)
}

func (s *Server) handleGrantShare(ctx context.Context, input *GrantShareInput) (*VehicleOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	details, err := s.services.Sharing.GrantShare(ctx, user.ID, input.ID, service.GrantShareRequest{
		Email: input.Body.Email,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to share vehicle", err)
	}

	return &VehicleOutput{Body: toVehicleResponse(details)}, nil
}

func (s *Server) handleRevokeShare(ctx context.Context, input *RevokeShareInput) (*VehicleOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	details, err := s.services.Sharing.RevokeShare(ctx, user.ID, input.ID, input.UserID)
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to revoke share", err)
	}

	return &VehicleOutput{Body: toVehicleResponse(details)}, nil
}
