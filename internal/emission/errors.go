package emission

// constError is an immutable error type for sentinel errors.
type constError string

func (e constError) Error() string { return string(e) }

// Sentinel errors for catalog lookups and emission calculations.
// Compare with errors.Is; calculation failures are wrapped with the offending input.
var (
	// ErrUnknownCategory indicates the category is not defined by the catalog.
	ErrUnknownCategory = constError("unknown category")

	// ErrUnknownSubtype indicates the category exists but has no such subtype.
	ErrUnknownSubtype = constError("unknown subtype")

	// ErrInvalidQuantity indicates a non-positive or non-finite quantity.
	// Zero is accepted only for zero-factor subtypes.
	ErrInvalidQuantity = constError("invalid quantity")

	// ErrEmissionOverflow indicates factor * quantity is not representable.
	ErrEmissionOverflow = constError("emission overflow")

	// ErrInvalidCatalog indicates a malformed catalog document.
	ErrInvalidCatalog = constError("invalid catalog")

	// ErrDuplicateSubtype indicates a subtype name or alias defined more than once.
	ErrDuplicateSubtype = constError("duplicate subtype")

	// ErrIncompatibleCatalog indicates a catalog whose major version this build cannot read.
	ErrIncompatibleCatalog = constError("incompatible catalog version")
)
