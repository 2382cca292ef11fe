package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/danielgtaylor/huma/v2"

	"github.com/garagehubapp/garagehub-server/internal/service"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// userIDKey is the context key for the authenticated user ID.
const userIDKey ctxKey = "userID"

// clientIPKey is the context key for the resolved client IP.
const clientIPKey ctxKey = "clientIP"

// GetClientIP returns the client IP stored by clientIPMiddleware, or empty.
func GetClientIP(ctx context.Context) string {
	ip, _ := ctx.Value(clientIPKey).(string)
	return ip
}

// clientIPMiddleware resolves the client IP once and stores it in context
// for handlers that record it (session bookkeeping).
func clientIPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), clientIPKey, getClientIP(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetUserID returns the authenticated user ID from context.
// Returns 401 error if user is not authenticated.
func GetUserID(ctx context.Context) (string, error) {
	userID, ok := ctx.Value(userIDKey).(string)
	if !ok || userID == "" {
		return "", huma.Error401Unauthorized("Authentication required")
	}
	return userID, nil
}

// setUserID stores the user ID in context.
func setUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// authMiddleware returns a middleware that validates Bearer tokens and stores user ID in context.
// If no token is present or invalid, continues without user in context.
// Handlers use GetUserID to check authentication.
func authMiddleware(auth *service.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				next.ServeHTTP(w, r)
				return
			}

			token := authHeader[7:]
			user, _, err := auth.VerifyAccessToken(r.Context(), token)
			if err != nil {
				// Invalid token - continue without user (handler will reject if auth required)
				next.ServeHTTP(w, r)
				return
			}

			ctx := setUserID(r.Context(), user.ID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// envelopeVersion is the wire format version reported in every response.
const envelopeVersion = 1

// successEnvelope wraps successful response bodies.
type successEnvelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data,omitempty"`
}

// errorEnvelope wraps error response bodies. Error carries the
// human-readable text; code/message/details are present for typed errors.
type errorEnvelope struct {
	V       int    `json:"v"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Details any    `json:"details,omitempty"`
}

// EnvelopeTransformer wraps every response body in the versioned envelope.
// Registered as a huma transformer so handlers return bare DTOs.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   apiErr.Message,
			Code:    apiErr.Code,
			Message: apiErr.Message,
			Details: apiErr.Details,
		}, nil
	}

	if err, ok := v.(error); ok {
		return errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   err.Error(),
		}, nil
	}

	if isErrorStatus(status) {
		return errorEnvelope{
			V:       envelopeVersion,
			Success: false,
			Error:   http.StatusText(statusCode(status)),
		}, nil
	}

	return successEnvelope{
		V:       envelopeVersion,
		Success: true,
		Data:    v,
	}, nil
}

// isErrorStatus reports whether an HTTP status string is 4xx or 5xx.
func isErrorStatus(status string) bool {
	return len(status) > 0 && (status[0] == '4' || status[0] == '5')
}

// statusCode parses the numeric status, defaulting to 500 on garbage.
func statusCode(status string) int {
	code := 0
	for i := 0; i < len(status); i++ {
		if status[i] < '0' || status[i] > '9' {
			return http.StatusInternalServerError
		}
		code = code*10 + int(status[i]-'0')
	}
	if code < 100 || code > 599 {
		return http.StatusInternalServerError
	}
	return code
}
