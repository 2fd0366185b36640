package greenops

import (
	"fmt"
	"math"
)

// Calculate computes relatable equivalents for an emission in kg CO2e:
// trees needed (lifetime constant), kilometres by car and smartphone charges.
//
// Returns an empty output with ErrNegativeValue for negative input and with
// ErrCalculationOverflow for non-finite input. Amounts below
// MinEquivalencyThresholdKg produce an empty output without error.
func Calculate(kg float64) (EquivalencyOutput, error) {
	if math.IsNaN(kg) || math.IsInf(kg, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}
	if kg < 0 {
		return EquivalencyOutput{IsEmpty: true}, ErrNegativeValue
	}
	if kg < MinEquivalencyThresholdKg {
		return EquivalencyOutput{InputKg: kg, IsEmpty: true}, nil
	}

	trees, err := TreesNeeded(kg, LifetimeTreeAbsorptionKg)
	if err != nil {
		return EquivalencyOutput{IsEmpty: true}, err
	}
	km := kg / CarKmFactor
	phones := kg / SmartphoneChargeFactor
	if math.IsInf(km, 0) || math.IsInf(phones, 0) {
		return EquivalencyOutput{IsEmpty: true}, ErrCalculationOverflow
	}

	treesFormatted := FormatNumber(int64(trees))
	kmFormatted := formatEquivalencyValue(km)
	phonesFormatted := formatEquivalencyValue(phones)

	results := []EquivalencyResult{
		{Type: EquivalencyTrees, Value: float64(trees), FormattedValue: treesFormatted, Label: "trees to offset"},
		{Type: EquivalencyKmDriven, Value: km, FormattedValue: kmFormatted, Label: "km driven by car"},
		{Type: EquivalencySmartphonesCharged, Value: phones, FormattedValue: phonesFormatted, Label: "smartphones charged"},
	}

	return EquivalencyOutput{
		InputKg:     kg,
		Results:     results,
		DisplayText: fmt.Sprintf("Equivalent to driving ~%s km or charging ~%s smartphones", kmFormatted, phonesFormatted),
		CompactText: fmt.Sprintf("(≈ %s km, %s phones, %s trees)", kmFormatted, phonesFormatted, treesFormatted),
	}, nil
}

// formatEquivalencyValue scales values of a million and above, otherwise
// rounds to a separated integer.
func formatEquivalencyValue(v float64) string {
	if v >= LargeNumberThreshold {
		return FormatLarge(v)
	}
	return FormatNumber(int64(math.Round(v)))
}
