package greenops

import (
	"math"
	"strings"
)

// Mass conversion factors to kilograms.
const (
	GramsToKg  = 0.001
	KgToKg     = 1.0
	TonsToKg   = 1000.0
	PoundsToKg = 0.453592
)

// ErrInvalidUnit indicates an unrecognized mass unit.
const ErrInvalidUnit = constError("unrecognized carbon unit")

func unitFactor(unit string) (float64, bool) {
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "g", "gco2e", "gco2":
		return GramsToKg, true
	case "", "kg", "kgco2e", "kgco2":
		return KgToKg, true
	case "t", "tco2e", "tco2":
		return TonsToKg, true
	case "lb", "lbco2e", "lbco2":
		return PoundsToKg, true
	default:
		return 0, false
	}
}

// NormalizeToKg converts value, expressed in unit, to kilograms.
// An empty unit means kilograms. Matching is case-insensitive and accepts
// a CO2 or CO2e suffix, e.g. "gCO2e".
func NormalizeToKg(value float64, unit string) (float64, error) {
	if math.IsInf(value, 0) || math.IsNaN(value) {
		return 0, ErrCalculationOverflow
	}
	if value < 0 {
		return 0, ErrNegativeValue
	}

	factor, ok := unitFactor(unit)
	if !ok {
		return 0, ErrInvalidUnit
	}

	result := value * factor
	if math.IsInf(result, 0) {
		return 0, ErrCalculationOverflow
	}
	return result, nil
}

// IsRecognizedUnit reports whether NormalizeToKg accepts unit.
func IsRecognizedUnit(unit string) bool {
	_, ok := unitFactor(unit)
	return ok
}
