package emission

import (
	"fmt"
	"math"
	"sort"
)

// CompositeSubtype is the subtype recorded for activities computed by ComputeComposite.
const CompositeSubtype = "daily"

// roundingNudge absorbs binary representation error (2.675*100 = 267.49999...)
// so that values exactly halfway in decimal round up.
const roundingNudge = 1e-9

// Emission is the outcome of a calculation.
type Emission struct {
	Category Category
	// Subtype is the canonical subtype name, or CompositeSubtype.
	Subtype  string
	Quantity float64
	Kg       float64
	// Components holds per-subtype quantities for composite calculations.
	Components map[string]float64
}

// Calculator computes emissions from a Catalog. It holds no mutable state.
type Calculator struct {
	catalog *Catalog
}

// NewCalculator returns a Calculator over catalog.
// A nil catalog uses the built-in table.
func NewCalculator(catalog *Catalog) *Calculator {
	if catalog == nil {
		catalog = Default()
	}
	return &Calculator{catalog: catalog}
}

// Catalog returns the catalog backing the calculator.
func (c *Calculator) Catalog() *Catalog {
	return c.catalog
}

// Compute returns factor(category, subtype) * quantity rounded to 2 decimals.
//
// The quantity must be finite and strictly positive. Zero is accepted only
// when the subtype's factor is itself zero (cycling, walking).
func (c *Calculator) Compute(category Category, subtype string, quantity float64) (Emission, error) {
	f, err := c.catalog.Lookup(category, subtype)
	if err != nil {
		return Emission{}, err
	}

	if err := validateQuantity(quantity, f.KgPerUnit == 0); err != nil {
		return Emission{}, fmt.Errorf("%s/%s: %w", category, subtype, err)
	}

	kg := f.KgPerUnit * quantity
	if math.IsInf(kg, 0) {
		return Emission{}, fmt.Errorf("%s/%s x %v: %w", category, subtype, quantity, ErrEmissionOverflow)
	}

	return Emission{
		Category: category,
		Subtype:  f.Subtype,
		Quantity: quantity,
		Kg:       Round2(kg),
	}, nil
}

// ComputeComposite sums factor * quantity over several subtypes of one category,
// for example {"ac": 2, "tv": 3} hours of energy use. The sum is rounded once.
//
// Every entry must be finite and non-negative and at least one must be positive.
// Aliases are resolved, and entries naming the same canonical subtype are summed.
func (c *Calculator) ComputeComposite(category Category, quantities map[string]float64) (Emission, error) {
	if !c.catalog.HasCategory(category) {
		return Emission{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	if len(quantities) == 0 {
		return Emission{}, fmt.Errorf("%s: no components: %w", category, ErrInvalidQuantity)
	}

	// Deterministic iteration keeps the floating-point sum stable.
	keys := make([]string, 0, len(quantities))
	for k := range quantities {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	components := make(map[string]float64, len(quantities))
	var total, kg float64
	for _, k := range keys {
		q := quantities[k]
		f, err := c.catalog.Lookup(category, k)
		if err != nil {
			return Emission{}, err
		}
		if math.IsNaN(q) || math.IsInf(q, 0) || q < 0 {
			return Emission{}, fmt.Errorf("%s/%s quantity %v: %w", category, k, q, ErrInvalidQuantity)
		}
		if q == 0 {
			continue
		}
		components[f.Subtype] += q
		total += q
		kg += f.KgPerUnit * q
	}

	if total <= 0 {
		return Emission{}, fmt.Errorf("%s: all components are zero: %w", category, ErrInvalidQuantity)
	}
	if math.IsInf(kg, 0) || math.IsInf(total, 0) {
		return Emission{}, fmt.Errorf("%s: %w", category, ErrEmissionOverflow)
	}

	return Emission{
		Category:   category,
		Subtype:    CompositeSubtype,
		Quantity:   total,
		Kg:         Round2(kg),
		Components: components,
	}, nil
}

// validateQuantity rejects NaN, infinities, negatives, and zero unless allowZero.
func validateQuantity(q float64, allowZero bool) error {
	switch {
	case math.IsNaN(q), math.IsInf(q, 0):
		return fmt.Errorf("quantity %v is not finite: %w", q, ErrInvalidQuantity)
	case q < 0:
		return fmt.Errorf("quantity %v is negative: %w", q, ErrInvalidQuantity)
	case q == 0 && !allowZero:
		return fmt.Errorf("quantity must be greater than zero: %w", ErrInvalidQuantity)
	}
	return nil
}

// Round2 rounds a non-negative value to 2 decimal places, half up.
func Round2(v float64) float64 {
	const scale = 100
	return math.Floor(v*scale+0.5+roundingNudge) / scale
}
