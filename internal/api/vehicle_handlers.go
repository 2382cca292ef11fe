package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	domainerrors "github.com/garagehubapp/garagehub-server/internal/errors"
	"github.com/garagehubapp/garagehub-server/internal/service"
)

// VehicleResponse is the wire shape of a vehicle. Stored user IDs are
// resolved to identity references before leaving the server.
type VehicleResponse struct {
	ID         string           `json:"id"`
	Plate      string           `json:"plate"`
	Make       string           `json:"make"`
	Model      string           `json:"model"`
	Year       int              `json:"year"`
	Color      string           `json:"color"`
	PhotoURL   string           `json:"photo_url,omitempty"`
	Owner      domain.UserRef   `json:"owner"`
	SharedWith []domain.UserRef `json:"shared_with"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
}

func toVehicleResponse(details *service.VehicleDetails) VehicleResponse {
	v := details.Vehicle

	resp := VehicleResponse{
		ID:         v.ID,
		Plate:      v.Plate,
		Make:       v.Make,
		Model:      v.Model,
		Year:       v.Year,
		Color:      v.Color,
		Owner:      details.Owner,
		SharedWith: details.SharedWith,
		CreatedAt:  v.CreatedAt,
		UpdatedAt:  v.UpdatedAt,
	}
	if resp.SharedWith == nil {
		resp.SharedWith = []domain.UserRef{}
	}
	if v.HasPhoto {
		resp.PhotoURL = fmt.Sprintf("/api/v1/vehicles/%s/photo", v.ID)
	}

	return resp
}

// VehicleOutput wraps a single vehicle.
type VehicleOutput struct {
	Body VehicleResponse
}

// VehicleListOutput wraps the visible-vehicle listing.
type VehicleListOutput struct {
	Body struct {
		Vehicles []VehicleResponse `json:"vehicles"`
	}
}

// ListVehiclesInput asks for every vehicle visible to the caller.
type ListVehiclesInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
}

// CreateVehicleInput registers a new vehicle for the caller.
type CreateVehicleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	Body          struct {
		Plate string `json:"plate" doc:"License plate, AAA0A00 format, case-insensitive"`
		Make  string `json:"make" maxLength:"100" doc:"Manufacturer"`
		Model string `json:"model" maxLength:"100" doc:"Model name"`
		Year  int    `json:"year" doc:"Model year"`
		Color string `json:"color,omitempty" maxLength:"50" doc:"Color, defaults to unspecified"`
	}
}

// GetVehicleInput fetches one vehicle by ID.
type GetVehicleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
}

// UpdateVehicleInput applies a partial edit. Omitted fields are unchanged.
type UpdateVehicleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
	Body          struct {
		Plate *string `json:"plate,omitempty" doc:"License plate"`
		Make  *string `json:"make,omitempty" maxLength:"100" doc:"Manufacturer"`
		Model *string `json:"model,omitempty" maxLength:"100" doc:"Model name"`
		Year  *int    `json:"year,omitempty" doc:"Model year"`
		Color *string `json:"color,omitempty" maxLength:"50" doc:"Color"`
	}
}

// DeleteVehicleInput removes a vehicle and its maintenance log.
type DeleteVehicleInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
}

func (s *Server) registerVehicleRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-vehicles",
		Method:      http.MethodGet,
		Path:        "/api/v1/vehicles",
		Summary:     "List vehicles",
		Description: "Returns every vehicle the caller owns or has been granted access to, newest first.",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListVehicles)

	huma.Register(s.api, huma.Operation{
		OperationID: "create-vehicle",
		Method:      http.MethodPost,
		Path:        "/api/v1/vehicles",
		Summary:     "Register a vehicle",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleCreateVehicle)

	huma.Register(s.api, huma.Operation{
		OperationID: "get-vehicle",
		Method:      http.MethodGet,
		Path:        "/api/v1/vehicles/{id}",
		Summary:     "Get a vehicle",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleGetVehicle)

	huma.Register(s.api, huma.Operation{
		OperationID: "update-vehicle",
		Method:      http.MethodPatch,
		Path:        "/api/v1/vehicles/{id}",
		Summary:     "Update a vehicle",
		Description: "Owner-only partial edit of vehicle attributes.",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUpdateVehicle)

	huma.Register(s.api, huma.Operation{
		OperationID: "delete-vehicle",
		Method:      http.MethodDelete,
		Path:        "/api/v1/vehicles/{id}",
		Summary:     "Delete a vehicle",
		Description: "Owner-only. Removes the vehicle, its maintenance log, and its photo.",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleDeleteVehicle)
}

func (s *Server) handleListVehicles(ctx context.Context, input *ListVehiclesInput) (*VehicleListOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	vehicles, err := s.services.Vehicle.List(ctx, user.ID)
	if err != nil {
		return nil, huma.Error500InternalServerError("Failed to list vehicles", err)
	}

	resp := &VehicleListOutput{}
	resp.Body.Vehicles = make([]VehicleResponse, 0, len(vehicles))
	for _, details := range vehicles {
		resp.Body.Vehicles = append(resp.Body.Vehicles, toVehicleResponse(details))
	}

	return resp, nil
}

func (s *Server) handleCreateVehicle(ctx context.Context, input *CreateVehicleInput) (*VehicleOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	// Registration is limited per account, independent of the IP limits.
	if !s.createRateLimiter.Allow(user.ID) {
		return nil, huma.Error429TooManyRequests("Vehicle registration limit reached",
			domainerrors.RateLimited("too many vehicles registered recently, try again later"))
	}

	details, err := s.services.Vehicle.Create(ctx, user.ID, service.CreateVehicleRequest{
		Plate: input.Body.Plate,
		Make:  input.Body.Make,
		Model: input.Body.Model,
		Year:  input.Body.Year,
		Color: input.Body.Color,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to create vehicle", err)
	}

	return &VehicleOutput{Body: toVehicleResponse(details)}, nil
}

func (s *Server) handleGetVehicle(ctx context.Context, input *GetVehicleInput) (*VehicleOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	details, err := s.services.Vehicle.Get(ctx, user.ID, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("Vehicle not found", err)
	}

	return &VehicleOutput{Body: toVehicleResponse(details)}, nil
}

func (s *Server) handleUpdateVehicle(ctx context.Context, input *UpdateVehicleInput) (*VehicleOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	details, err := s.services.Vehicle.Update(ctx, user.ID, input.ID, service.UpdateVehicleRequest{
		Plate: input.Body.Plate,
		Make:  input.Body.Make,
		Model: input.Body.Model,
		Year:  input.Body.Year,
		Color: input.Body.Color,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to update vehicle", err)
	}

	return &VehicleOutput{Body: toVehicleResponse(details)}, nil
}

func (s *Server) handleDeleteVehicle(ctx context.Context, input *DeleteVehicleInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Vehicle.Delete(ctx, user.ID, input.ID); err != nil {
		return nil, huma.Error400BadRequest("Failed to delete vehicle", err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "vehicle deleted"}}, nil
}
