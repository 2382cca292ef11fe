package domain

import "time"

// Entity provides common identity and timestamp fields for stored types.
// Embed it in any domain type that is persisted.
type Entity struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	ID        string    `json:"id"`
}

// Touch updates the UpdatedAt timestamp to the current time.
// Call this whenever the underlying entity changes.
func (e *Entity) Touch() {
	e.UpdatedAt = time.Now()
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new entity.
func (e *Entity) InitTimestamps() {
	now := time.Now()
	e.CreatedAt = now
	e.UpdatedAt = now
}
