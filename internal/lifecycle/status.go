package lifecycle

import (
	"time"

	"github.com/BearBump/PigeonPost/internal/models"
)

const (
	approachingWindow = 30 * time.Minute
	inTransitWindow   = 2 * time.Hour
	assignedWindow    = 4 * time.Hour
)

// DeriveStatus maps the time left until estimatedDelivery to a lifecycle stage.
func DeriveStatus(now, estimatedDelivery time.Time) models.Status {
	left := estimatedDelivery.Sub(now)
	switch {
	case left <= 0:
		return models.StatusDelivered
	case left <= approachingWindow:
		return models.StatusApproaching
	case left <= inTransitWindow:
		return models.StatusInTransit
	case left <= assignedWindow:
		return models.StatusAssigned
	default:
		return models.StatusProcessing
	}
}

// EffectiveStatus returns the later of the stored and derived stages.
// A stage set manually acts as a floor: elapsed time never moves a record backwards.
func EffectiveStatus(stored, derived models.Status) models.Status {
	if stored.Rank() > derived.Rank() {
		return stored
	}
	return derived
}
