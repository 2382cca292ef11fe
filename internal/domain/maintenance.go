package domain

import "time"

// MaintenanceRecord is one entry in a vehicle's append-only service log.
// Records are never edited in place; they disappear only when their vehicle
// is deleted.
type MaintenanceRecord struct {
	Entity
	VehicleID   string    `json:"vehicle_id"`
	Description string    `json:"description"`
	Date        time.Time `json:"date"`
	Cost        float64   `json:"cost"`
	Odometer    int       `json:"odometer"`
}
