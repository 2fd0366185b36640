package greenops

// Tree absorption constants, in kg CO2e absorbed per tree.
//
// Each use case has exactly one constant:
//
//	trees = ceil(kg_CO2e / absorption)
const (
	// LifetimeTreeAbsorptionKg applies to lifetime and per-record stats.
	LifetimeTreeAbsorptionKg = 0.0596

	// DailyTreeAbsorptionKg applies to "trees needed to neutralize today".
	DailyTreeAbsorptionKg = 0.5
)

// Equivalency factors, in kg CO2e per unit of the equivalent activity.
const (
	// CarKmFactor is kg CO2e per km by private car (the built-in "mobil" factor).
	CarKmFactor = 0.25

	// SmartphoneChargeFactor is kg CO2e per smartphone charge.
	// Source: EPA GHG Equivalencies Calculator (2024 edition).
	SmartphoneChargeFactor = 0.00822
)

// Display thresholds.
const (
	// MinEquivalencyThresholdKg is the smallest amount for which equivalencies are shown.
	MinEquivalencyThresholdKg = 0.01

	// LargeNumberThreshold switches FormatLarge to "~X.X million".
	LargeNumberThreshold = 1_000_000

	// BillionThreshold switches FormatLarge to "~X.X billion".
	BillionThreshold = 1_000_000_000
)

// ceilTolerance keeps exact multiples such as 0.3/0.1 from rounding up a whole tree.
const ceilTolerance = 1e-9
