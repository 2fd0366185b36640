// Package emission converts logged activities into kilograms of CO2e.
//
// A Catalog holds the per-unit emission factors for every known
// (category, subtype) pair. A Calculator multiplies a quantity by the
// matching factor and rounds the result to two decimals.
package emission

import (
	_ "embed"
	"fmt"
	"math"
	"os"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"

	"github.com/rshade/ecotrack/internal/greenops"
)

// Category is an activity category key such as "transport".
// Category keys are case-sensitive.
type Category string

// Built-in categories.
const (
	CategoryTransport Category = "transport"
	CategoryFood      Category = "food"
	CategoryEnergy    Category = "energy"
)

// SchemaMajor is the catalog document major version this build understands.
const SchemaMajor = 1

//go:embed catalog.yaml
var builtinCatalog []byte

// Factor is one emission factor entry.
type Factor struct {
	Category  Category `json:"category"`
	Subtype   string   `json:"subtype"`
	KgPerUnit float64  `json:"kg_per_unit"`
	Unit      string   `json:"unit"`
	Aliases   []string `json:"aliases,omitempty"`
}

// Catalog is an immutable table of emission factors.
// It is safe for concurrent use once constructed.
type Catalog struct {
	version    *semver.Version
	categories []Category
	factors    map[Category]map[string]Factor
	// names maps every lower-cased subtype and alias to its canonical subtype.
	names map[Category]map[string]string
}

// catalogDocument is the YAML form of a catalog.
type catalogDocument struct {
	Version    string             `yaml:"version"`
	Categories []categoryDocument `yaml:"categories"`
}

type categoryDocument struct {
	Name    string           `yaml:"name"`
	Unit    string           `yaml:"unit"`
	Factors []factorDocument `yaml:"factors"`
}

type factorDocument struct {
	Subtype   string   `yaml:"subtype"`
	KgPerUnit *float64 `yaml:"kg_per_unit"`
	Unit      string   `yaml:"unit,omitempty"`
	Aliases   []string `yaml:"aliases,omitempty"`

	// EmissionUnit is the mass unit of KgPerUnit, e.g. "g" for a factor
	// published as 150 gCO2e/km. Empty means kg.
	EmissionUnit string `yaml:"emission_unit,omitempty"`
}

// Default returns the built-in catalog.
// The embedded document is fixed at build time, so a parse failure is a programming error.
func Default() *Catalog {
	c, err := Parse(builtinCatalog)
	if err != nil {
		panic(fmt.Sprintf("emission: built-in catalog is invalid: %v", err))
	}
	return c
}

// Load reads a catalog document from path.
// An empty path returns the built-in catalog.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog %s: %w", path, err)
	}

	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading catalog %s: %w", path, err)
	}
	return c, nil
}

// Parse builds a Catalog from a YAML document.
//
// The document must declare a semantic version whose major component equals
// SchemaMajor. Factors must be finite and non-negative, and every subtype name
// and alias must be unique across the whole catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc catalogDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidCatalog, err)
	}

	if doc.Version == "" {
		return nil, fmt.Errorf("%w: missing version", ErrInvalidCatalog)
	}
	version, err := semver.NewVersion(doc.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: version %q: %w", ErrInvalidCatalog, doc.Version, err)
	}
	if version.Major() != SchemaMajor {
		return nil, fmt.Errorf("%w: %s (supported major version %d)",
			ErrIncompatibleCatalog, version, SchemaMajor)
	}

	if len(doc.Categories) == 0 {
		return nil, fmt.Errorf("%w: no categories", ErrInvalidCatalog)
	}

	c := &Catalog{
		version: version,
		factors: make(map[Category]map[string]Factor, len(doc.Categories)),
		names:   make(map[Category]map[string]string, len(doc.Categories)),
	}

	// seen tracks every name across categories so a subtype belongs to exactly one table.
	seen := make(map[string]Category)

	for _, cd := range doc.Categories {
		if err := c.addCategory(cd, seen); err != nil {
			return nil, err
		}
	}

	return c, nil
}

func (c *Catalog) addCategory(cd categoryDocument, seen map[string]Category) error {
	if cd.Name == "" {
		return fmt.Errorf("%w: category without name", ErrInvalidCatalog)
	}
	category := Category(cd.Name)
	if _, exists := c.factors[category]; exists {
		return fmt.Errorf("%w: category %q defined twice", ErrInvalidCatalog, cd.Name)
	}

	factors := make(map[string]Factor, len(cd.Factors))
	names := make(map[string]string, len(cd.Factors))

	claim := func(name, canonical string) error {
		key := normalizeSubtype(name)
		if key == "" {
			return fmt.Errorf("%w: empty subtype in category %q", ErrInvalidCatalog, cd.Name)
		}
		if owner, dup := seen[key]; dup {
			return fmt.Errorf("%w: %q in %q already defined in %q", ErrDuplicateSubtype, key, cd.Name, owner)
		}
		seen[key] = category
		names[key] = canonical
		return nil
	}

	for _, fd := range cd.Factors {
		canonical := normalizeSubtype(fd.Subtype)
		if fd.KgPerUnit == nil {
			return fmt.Errorf("%w: %s/%s has no kg_per_unit", ErrInvalidCatalog, cd.Name, fd.Subtype)
		}
		if v := *fd.KgPerUnit; v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s/%s factor %v must be finite and non-negative",
				ErrInvalidCatalog, cd.Name, fd.Subtype, v)
		}
		kg, err := greenops.NormalizeToKg(*fd.KgPerUnit, fd.EmissionUnit)
		if err != nil {
			return fmt.Errorf("%w: %s/%s emission_unit %q: %w",
				ErrInvalidCatalog, cd.Name, fd.Subtype, fd.EmissionUnit, err)
		}

		if err := claim(fd.Subtype, canonical); err != nil {
			return err
		}
		aliases := make([]string, 0, len(fd.Aliases))
		for _, alias := range fd.Aliases {
			if err := claim(alias, canonical); err != nil {
				return err
			}
			aliases = append(aliases, normalizeSubtype(alias))
		}

		unit := fd.Unit
		if unit == "" {
			unit = cd.Unit
		}
		factors[canonical] = Factor{
			Category:  category,
			Subtype:   canonical,
			KgPerUnit: kg,
			Unit:      unit,
			Aliases:   aliases,
		}
	}

	if len(factors) == 0 {
		return fmt.Errorf("%w: category %q has no factors", ErrInvalidCatalog, cd.Name)
	}

	c.categories = append(c.categories, category)
	c.factors[category] = factors
	c.names[category] = names
	return nil
}

// normalizeSubtype lower-cases and trims a subtype for lookup.
func normalizeSubtype(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Version returns the catalog document version.
func (c *Catalog) Version() string {
	return c.version.String()
}

// Lookup resolves a subtype (or alias) within category to its Factor.
//
// Returns ErrUnknownCategory if the category is not defined, and
// ErrUnknownSubtype if the category exists but the subtype does not.
func (c *Catalog) Lookup(category Category, subtype string) (Factor, error) {
	names, ok := c.names[category]
	if !ok {
		return Factor{}, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	canonical, ok := names[normalizeSubtype(subtype)]
	if !ok {
		return Factor{}, fmt.Errorf("%w: %q in category %q", ErrUnknownSubtype, subtype, category)
	}
	return c.factors[category][canonical], nil
}

// Factor returns the kg CO2e per unit for a (category, subtype) pair.
func (c *Catalog) Factor(category Category, subtype string) (float64, error) {
	f, err := c.Lookup(category, subtype)
	if err != nil {
		return 0, err
	}
	return f.KgPerUnit, nil
}

// HasCategory reports whether the catalog defines category.
func (c *Catalog) HasCategory(category Category) bool {
	_, ok := c.factors[category]
	return ok
}

// Categories returns the categories in document order.
func (c *Catalog) Categories() []Category {
	out := make([]Category, len(c.categories))
	copy(out, c.categories)
	return out
}

// Subtypes returns the factors of a category sorted by subtype name.
func (c *Catalog) Subtypes(category Category) ([]Factor, error) {
	factors, ok := c.factors[category]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}

	out := make([]Factor, 0, len(factors))
	for _, f := range factors {
		f.Aliases = append([]string(nil), f.Aliases...)
		out = append(out, f)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Subtype < out[j].Subtype })
	return out, nil
}
