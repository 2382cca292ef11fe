package api

import (
	"context"
	"net/http"
	"time"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/domain"
	"github.com/garagehubapp/garagehub-server/internal/service"
)

// MaintenanceResponse is the wire shape of one maintenance record.
type MaintenanceResponse struct {
	ID          string    `json:"id"`
	VehicleID   string    `json:"vehicle_id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Cost        float64   `json:"cost"`
	Odometer    int       `json:"odometer"`
	CreatedAt   time.Time `json:"created_at"`
}

func toMaintenanceResponse(record *domain.MaintenanceRecord) MaintenanceResponse {
	return MaintenanceResponse{
		ID:          record.ID,
		VehicleID:   record.VehicleID,
		Description: record.Description,
		Date:        record.Date,
		Cost:        record.Cost,
		Odometer:    record.Odometer,
		CreatedAt:   record.CreatedAt,
	}
}

// AddMaintenanceInput appends one record to a vehicle's log.
type AddMaintenanceInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
	Body          struct {
		Description string     `json:"description" maxLength:"500" doc:"What was done"`
		Date        *time.Time `json:"date,omitempty" doc:"Service date, defaults to now"`
		Cost        *float64   `json:"cost" minimum:"0" doc:"Cost of the work"`
		Odometer    *int       `json:"odometer,omitempty" minimum:"0" doc:"Odometer reading"`
	}
}

// AddMaintenanceOutput wraps the created record.
type AddMaintenanceOutput struct {
	Body MaintenanceResponse
}

// ListMaintenanceInput asks for a vehicle's maintenance log.
type ListMaintenanceInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
}

// ListMaintenanceOutput wraps the log, newest first by service date.
type ListMaintenanceOutput struct {
	Body struct {
		Records []MaintenanceResponse `json:"records"`
	}
}

func (s *Server) registerMaintenanceRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "add-maintenance",
		Method:      http.MethodPost,
		Path:        "/api/v1/vehicles/{id}/maintenance",
		Summary:     "Add a maintenance record",
		Description: "Open to the owner and anyone the vehicle is shared with. Records are append-only.",
		Tags:        []string{"Maintenance"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleAddMaintenance)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-maintenance",
		Method:      http.MethodGet,
		Path:        "/api/v1/vehicles/{id}/maintenance",
		Summary:     "List maintenance records",
		Tags:        []string{"Maintenance"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleListMaintenance)
}

func (s *Server) handleAddMaintenance(ctx context.Context, input *AddMaintenanceInput) (*AddMaintenanceOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	record, err := s.services.Maintenance.Add(ctx, user.ID, input.ID, service.AddMaintenanceRequest{
		Description: input.Body.Description,
		Date:        input.Body.Date,
		Cost:        input.Body.Cost,
		Odometer:    input.Body.Odometer,
	})
	if err != nil {
		return nil, huma.Error400BadRequest("Failed to add maintenance record", err)
	}

	return &AddMaintenanceOutput{Body: toMaintenanceResponse(record)}, nil
}

func (s *Server) handleListMaintenance(ctx context.Context, input *ListMaintenanceInput) (*ListMaintenanceOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	records, err := s.services.Maintenance.List(ctx, user.ID, input.ID)
	if err != nil {
		return nil, huma.Error404NotFound("Vehicle not found", err)
	}

	resp := &ListMaintenanceOutput{}
	resp.Body.Records = make([]MaintenanceResponse, 0, len(records))
	for _, record := range records {
		resp.Body.Records = append(resp.Body.Records, toMaintenanceResponse(record))
	}

	return resp, nil
}
