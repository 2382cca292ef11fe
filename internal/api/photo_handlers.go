package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"

	"github.com/garagehubapp/garagehub-server/internal/http/response"
)

// UploadPhotoInput replaces a vehicle's photo. The body is raw JPEG bytes.
type UploadPhotoInput struct {
	Authorization string `header:"Authorization" doc:"Bearer access token"`
	ID            string `path:"id" doc:"Vehicle ID"`
	RawBody       []byte `contentType:"image/jpeg" doc:"JPEG image data, 5 MiB max"`
}

func (s *Server) registerPhotoRoutes() {
	huma.Register(s.api, huma.Operation{
		OperationID: "upload-vehicle-photo",
		Method:      http.MethodPut,
		Path:        "/api/v1/vehicles/{id}/photo",
		Summary:     "Upload a vehicle photo",
		Description: "Owner-only. Replaces any existing photo.",
		Tags:        []string{"Vehicles"},
		Security:    []map[string][]string{{"bearer": {}}},
	}, s.handleUploadPhoto)

	// Raw chi route: image bytes must bypass the JSON envelope.
	s.router.Get("/api/v1/vehicles/{id}/photo", s.handleServePhoto)
}

func (s *Server) handleUploadPhoto(ctx context.Context, input *UploadPhotoInput) (*MessageOutput, error) {
	user, err := s.authenticateRequest(ctx, input.Authorization)
	if err != nil {
		return nil, err
	}

	if err := s.services.Vehicle.AttachPhoto(ctx, user.ID, input.ID, input.RawBody); err != nil {
		return nil, huma.Error400BadRequest("Failed to store photo", err)
	}

	return &MessageOutput{Body: MessageResponse{Message: "photo stored"}}, nil
}

func (s *Server) handleServePhoto(w http.ResponseWriter, r *http.Request) {
	userID, err := GetUserID(r.Context())
	if err != nil {
		response.Unauthorized(w, "authentication required", s.logger)
		return
	}

	vehicleID := chi.URLParam(r, "id")
	data, hash, err := s.services.Vehicle.Photo(r.Context(), userID, vehicleID)
	if err != nil {
		response.HandleError(w, err, s.logger)
		return
	}

	etag := `"` + hash + `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	w.Header().Set("Content-Type", "image/jpeg")
	w.Header().Set("Content-Length", strconv.Itoa(len(data)))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.Header().Set("ETag", etag)

	if _, err := w.Write(data); err != nil {
		s.logger.Warn("Failed to write photo response", "vehicle_id", vehicleID, "error", err)
	}
}
