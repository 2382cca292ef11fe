package api

import (
	"context"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/service"
)

// FeaturedVehiclesOutput wraps the public showcase listing.
type FeaturedVehiclesOutput struct {
	Body struct {
		Vehicles []service.FeaturedVehicle `json:"vehicles"`
	}
}

// OfferedServicesOutput wraps the public service catalog.
type OfferedServicesOutput struct {
	Body struct {
		Services []service.OfferedService `json:"services"`
	}
}

// MaintenanceTipsInput selects tips by vehicle type.
type MaintenanceTipsInput struct {
	VehicleType string `path:"vehicleType" doc:"Vehicle type (car, motorcycle, truck); unknown types get general tips"`
}

// MaintenanceTipsOutput wraps the tips listing.
type MaintenanceTipsOutput struct {
	Body struct {
		Tips []service.MaintenanceTip `json:"tips"`
	}
}

// Content routes are public; no authentication is required.
func (s *Server) registerContentRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "list-featured-vehicles",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/featured-vehicles",
		Summary:     "List featured vehicles",
		Tags:        []string{"Content"},
	}, s.handleFeaturedVehicles)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-services",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/services",
		Summary:     "List offered services",
		Tags:        []string{"Content"},
	}, s.handleOfferedServices)

	huma.Register(s.api, huma.Operation{
		OperationID: "list-maintenance-tips",
		Method:      http.MethodGet,
		Path:        "/api/v1/content/maintenance-tips/{vehicleType}",
		Summary:     "List maintenance tips for a vehicle type",
		Tags:        []string{"Content"},
	}, s.handleMaintenanceTips)
}

func (s *Server) handleFeaturedVehicles(ctx context.Context, input *struct{}) (*FeaturedVehiclesOutput, error) {
	resp := &FeaturedVehiclesOutput{}
	resp.Body.Vehicles = s.services.Content.FeaturedVehicles()
	return resp, nil
}

func (s *Server) handleOfferedServices(ctx context.Context, input *struct{}) (*OfferedServicesOutput, error) {
	resp := &OfferedServicesOutput{}
	resp.Body.Services = s.services.Content.OfferedServices()
	return resp, nil
}

func (s *Server) handleMaintenanceTips(ctx context.Context, input *MaintenanceTipsInput) (*MaintenanceTipsOutput, error) {
	resp := &MaintenanceTipsOutput{}
	resp.Body.Tips = s.services.Content.MaintenanceTips(input.VehicleType)
	return resp, nil
}
