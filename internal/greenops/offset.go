package greenops

import (
	"math"
)

// TreesNeeded returns ceil(emissionKg / absorptionKg), the number of trees
// whose absorption neutralizes the emission. Zero or negative emissions need no trees.
//
// Returns ErrInvalidAbsorption if absorptionKg is not a positive finite number and
// ErrCalculationOverflow if emissionKg is not finite or the result exceeds an int.
func TreesNeeded(emissionKg, absorptionKg float64) (int, error) {
	if absorptionKg <= 0 || math.IsNaN(absorptionKg) || math.IsInf(absorptionKg, 0) {
		return 0, ErrInvalidAbsorption
	}
	if math.IsNaN(emissionKg) || math.IsInf(emissionKg, 0) {
		return 0, ErrCalculationOverflow
	}
	if emissionKg <= 0 {
		return 0, nil
	}

	trees := math.Ceil(emissionKg/absorptionKg - ceilTolerance)
	if math.IsInf(trees, 0) || trees > math.MaxInt32 {
		return 0, ErrCalculationOverflow
	}
	return int(trees), nil
}

// DailyTrees is TreesNeeded with DailyTreeAbsorptionKg, for today's total.
// Non-finite input yields 0.
func DailyTrees(emissionKg float64) int {
	n, err := TreesNeeded(emissionKg, DailyTreeAbsorptionKg)
	if err != nil {
		return 0
	}
	return n
}

// LifetimeTrees is TreesNeeded with LifetimeTreeAbsorptionKg, for running totals
// and single records. Non-finite input yields 0.
func LifetimeTrees(emissionKg float64) int {
	n, err := TreesNeeded(emissionKg, LifetimeTreeAbsorptionKg)
	if err != nil {
		return 0
	}
	return n
}
