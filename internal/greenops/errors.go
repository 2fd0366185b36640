package greenops

// constError is an immutable error type for sentinel errors.
// It implements the error interface and provides compile-time safety.
type constError string

func (e constError) Error() string { return string(e) }

// Error types for offset and equivalency calculations.
// These are sentinel errors that can be compared with errors.Is().
var (
	// ErrInvalidAbsorption indicates a non-positive or non-finite absorption constant.
	ErrInvalidAbsorption = constError("invalid tree absorption")

	// ErrNegativeValue indicates a negative carbon value.
	// Carbon emissions cannot be negative.
	ErrNegativeValue = constError("negative carbon value")

	// ErrCalculationOverflow indicates a value too large to calculate safely.
	ErrCalculationOverflow = constError("calculation overflow")
)
