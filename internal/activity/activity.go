// Package activity holds logged activities and the append-only log that owns them.
package activity

import (
	"time"

	"github.com/rshade/ecotrack/internal/emission"
)

// ID identifies an activity. IDs sort lexicographically in append order.
type ID string

// Activity is a single logged event. It is immutable once appended.
type Activity struct {
	ID       ID                `json:"id"`
	UserID   string            `json:"user_id"`
	Date     Date              `json:"date"`
	Category emission.Category `json:"category"`
	Subtype  string            `json:"subtype"`
	Quantity float64           `json:"quantity"`
	// Emission is derived by the calculator, in kg CO2e rounded to 2 decimals.
	Emission float64 `json:"emission_kg"`
	// Components holds per-subtype quantities of a composite activity.
	Components map[string]float64 `json:"components,omitempty"`
	RecordedAt time.Time          `json:"recorded_at"`
}

// FromEmission builds an unsaved Activity from a calculation result.
// The ID is assigned by Log.Append.
func FromEmission(userID string, date Date, e emission.Emission, recordedAt time.Time) Activity {
	return Activity{
		UserID:     userID,
		Date:       date,
		Category:   e.Category,
		Subtype:    e.Subtype,
		Quantity:   e.Quantity,
		Emission:   e.Kg,
		Components: copyComponents(e.Components),
		RecordedAt: recordedAt,
	}
}

// clone returns a copy that shares no mutable state with a.
func (a Activity) clone() Activity {
	a.Components = copyComponents(a.Components)
	return a
}

func copyComponents(in map[string]float64) map[string]float64 {
	if in == nil {
		return nil
	}
	out := make(map[string]float64, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
