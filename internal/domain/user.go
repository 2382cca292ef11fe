package domain

import "time"

// User represents an authenticated user account in the system.
type User struct {
	Entity
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash,omitempty"` // Stored hashed, filter from API responses
	DisplayName  string    `json:"display_name,omitempty"`
	LastLoginAt  time.Time `json:"last_login_at,omitzero"`
}

// Name returns the best available name to display for the user.
func (u *User) Name() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

// UserRef is a display-friendly identity reference embedded in API payloads.
// Other entities store bare user IDs; reads resolve them to this shape.
type UserRef struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

// Ref returns the user's identity reference.
func (u *User) Ref() UserRef {
	return UserRef{ID: u.ID, Email: u.Email}
}

// Session represents an active user session with refresh token.
// Each device gets its own session.
type Session struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	RefreshTokenHash string    `json:"refresh_token_hash,omitempty"` // Stored hashed, filter from API responses
	ExpiresAt        time.Time `json:"expires_at"`
	CreatedAt        time.Time `json:"created_at"`
	LastSeenAt       time.Time `json:"last_seen_at"`
	IPAddress        string    `json:"ip_address,omitempty"`
}

// Touch updates the session's last seen timestamp.
func (s *Session) Touch() {
	s.LastSeenAt = time.Now()
}

// IsExpired checks if the session has passed its expiration time.
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}
