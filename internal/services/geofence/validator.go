// Package geofence confirms a reported location lies within a store's
// allowed radius by delegating to the backend, which knows the store's
// registered coordinates.
package geofence

import (
	"context"
	"log"

	"clockin/internal/models"
)

// Checker is the remote capability the validator delegates to.
type Checker interface {
	CheckGeofence(ctx context.Context, storeID string, lat, lng float64) (bool, error)
}

// Validator wraps the remote check with the engine's fail-open policy:
// when the check itself errors (network, timeout) the answer is allow.
// Blocking a legitimate check-in on an infrastructure hiccup costs more
// than occasionally letting an out-of-radius scan through; the trade-off
// is availability over strictness and is intentional.
type Validator struct {
	checker Checker
}

// NewValidator creates a geofence validator.
func NewValidator(checker Checker) *Validator {
	if checker == nil {
		panic("geofence checker is required")
	}
	return &Validator{checker: checker}
}

// IsWithinGeofence reports whether the sample is inside the store's radius.
func (v *Validator) IsWithinGeofence(ctx context.Context, storeID string, loc models.LocationSample) bool {
	within, err := v.checker.CheckGeofence(ctx, storeID, loc.Latitude, loc.Longitude)
	if err != nil {
		log.Printf("geofence check for store %s failed, allowing: %v", storeID, err)
		return true
	}
	return within
}
