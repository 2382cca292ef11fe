package domain

import (
	"regexp"
	"strings"
	"time"
)

// DefaultColor is recorded when a vehicle is created without a color.
const DefaultColor = "unspecified"

// MinYear is the oldest model year a vehicle record may carry.
const MinYear = 1900

// plateRE matches normalized Mercosul-style plates: three letters, a digit,
// a letter or digit, then two digits.
var plateRE = regexp.MustCompile(`^[A-Z]{3}[0-9][A-Z0-9][0-9]{2}$`)

// NormalizePlate trims surrounding whitespace and uppercases a plate.
// Normalization happens before validation and before uniqueness checks.
func NormalizePlate(plate string) string {
	return strings.ToUpper(strings.TrimSpace(plate))
}

// ValidPlate reports whether a normalized plate matches the expected pattern.
func ValidPlate(plate string) bool {
	return plateRE.MatchString(plate)
}

// MaxYear returns the newest model year currently accepted.
// Manufacturers release next year's models ahead of the calendar.
func MaxYear() int {
	return time.Now().Year() + 1
}

// Relationship classifies an identity's access to a vehicle.
type Relationship string

const (
	// RelationshipOwner holds full control: edit, delete, and share management.
	RelationshipOwner Relationship = "owner"
	// RelationshipGrantee holds visibility and maintenance contribution only.
	RelationshipGrantee Relationship = "grantee"
	// RelationshipNone means the vehicle is invisible to the identity.
	RelationshipNone Relationship = "none"
)

// Vehicle represents a vehicle record owned by exactly one user and
// optionally shared with others. OwnerID is immutable after creation.
type Vehicle struct {
	Entity
	Plate      string   `json:"plate"`
	Make       string   `json:"make"`
	Model      string   `json:"model"`
	Year       int      `json:"year"`
	Color      string   `json:"color"`
	HasPhoto   bool     `json:"has_photo,omitempty"`
	OwnerID    string   `json:"owner_id"`
	SharedWith []string `json:"shared_with,omitempty"`
}

// Relationship returns the access classification of userID for this vehicle.
// The owner is never classified as a grantee even if present in SharedWith.
func (v *Vehicle) Relationship(userID string) Relationship {
	if userID == "" {
		return RelationshipNone
	}
	if v.OwnerID == userID {
		return RelationshipOwner
	}
	for _, id := range v.SharedWith {
		if id == userID {
			return RelationshipGrantee
		}
	}
	return RelationshipNone
}

// IsOwner reports whether userID owns this vehicle.
func (v *Vehicle) IsOwner(userID string) bool {
	return v.Relationship(userID) == RelationshipOwner
}

// IsVisibleTo reports whether userID may see this vehicle at all.
func (v *Vehicle) IsVisibleTo(userID string) bool {
	return v.Relationship(userID) != RelationshipNone
}

// AddGrantee appends userID to the shared-with set.
// Returns false without modifying the set when userID is the owner or
// already present.
func (v *Vehicle) AddGrantee(userID string) bool {
	if userID == "" || userID == v.OwnerID {
		return false
	}
	for _, id := range v.SharedWith {
		if id == userID {
			return false
		}
	}
	v.SharedWith = append(v.SharedWith, userID)
	return true
}

// RemoveGrantee removes userID from the shared-with set.
// Returns false when userID was not present; callers treat that as a no-op.
func (v *Vehicle) RemoveGrantee(userID string) bool {
	for i, id := range v.SharedWith {
		if id == userID {
			v.SharedWith = append(v.SharedWith[:i], v.SharedWith[i+1:]...)
			return true
		}
	}
	return false
}
