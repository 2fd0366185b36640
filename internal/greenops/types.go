// Package greenops turns kilograms of CO2e into offset estimates and relatable equivalents.
//
// TreesNeeded answers "how many trees would absorb this", with one documented
// absorption constant per use case. Calculate adds display-ready equivalents
// such as kilometres driven by car, formatted with locale-aware separators.
package greenops

import "fmt"

// EquivalencyType represents a category of carbon emission equivalency.
type EquivalencyType int

const (
	// EquivalencyTrees is the number of trees needed to absorb the emission.
	EquivalencyTrees EquivalencyType = iota

	// EquivalencyKmDriven converts CO2e to kilometres driven by private car.
	EquivalencyKmDriven

	// EquivalencySmartphonesCharged converts CO2e to smartphone full charges.
	EquivalencySmartphonesCharged
)

// String returns a human-readable representation of the EquivalencyType.
func (e EquivalencyType) String() string {
	switch e {
	case EquivalencyTrees:
		return "Trees"
	case EquivalencyKmDriven:
		return "KmDriven"
	case EquivalencySmartphonesCharged:
		return "SmartphonesCharged"
	default:
		return fmt.Sprintf("EquivalencyType(%d)", e)
	}
}

// EquivalencyResult represents a single calculated equivalency.
type EquivalencyResult struct {
	Type           EquivalencyType `json:"type"`
	Value          float64         `json:"value"`
	FormattedValue string          `json:"formatted_value"`
	Label          string          `json:"label"`
}

// EquivalencyOutput contains all equivalency results for display.
type EquivalencyOutput struct {
	// InputKg is the emission the equivalencies were computed for.
	InputKg float64 `json:"input_kg"`

	// Results contains calculated equivalencies in display order.
	Results []EquivalencyResult `json:"results"`

	// DisplayText is the full prose format for CLI/TUI output.
	// Example: "Equivalent to driving ~108 km or charging ~3,285 smartphones"
	DisplayText string `json:"display_text"`

	// CompactText is the abbreviated format for narrow outputs.
	// Example: "(≈ 108 km, 3,285 phones, 454 trees)"
	CompactText string `json:"compact_text"`

	IsEmpty bool `json:"is_empty"`
}
