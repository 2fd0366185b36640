package emission

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogFactors(t *testing.T) {
	c := Default()

	tests := []struct {
		category Category
		subtype  string
		want     float64
	}{
		{CategoryTransport, "motor", 0.15},
		{CategoryTransport, "mobil", 0.25},
		{CategoryTransport, "car", 0.25},
		{CategoryTransport, "bus", 0.05},
		{CategoryTransport, "busway", 0.05},
		{CategoryTransport, "kereta", 0.04},
		{CategoryTransport, "sepeda", 0},
		{CategoryFood, "sapi", 27},
		{CategoryFood, "daging_sapi", 27},
		{CategoryFood, "ayam", 6.9},
		{CategoryFood, "ikan", 5.1},
		{CategoryFood, "sayur", 2.0},
		{CategoryFood, "nasi", 4},
		{CategoryFood, "telur", 4.8},
		{CategoryEnergy, "ac", 0.9},
		{CategoryEnergy, "komputer", 0.1},
		{CategoryEnergy, "lampu", 0.05},
		{CategoryEnergy, "listrik", 0.8},
	}

	for _, tt := range tests {
		t.Run(string(tt.category)+"/"+tt.subtype, func(t *testing.T) {
			got, err := c.Factor(tt.category, tt.subtype)
			require.NoError(t, err)
			assert.InDelta(t, tt.want, got, 1e-12)
		})
	}
}

func TestLookupResolvesAliasesCaseInsensitively(t *testing.T) {
	c := Default()

	f, err := c.Lookup(CategoryFood, "  SAPI ")
	require.NoError(t, err)
	assert.Equal(t, "daging_sapi", f.Subtype)
	assert.Equal(t, "portion", f.Unit)

	f, err = c.Lookup(CategoryEnergy, "Electricity")
	require.NoError(t, err)
	assert.Equal(t, "listrik", f.Subtype)
	assert.Equal(t, "kWh", f.Unit)
}

func TestLookupErrors(t *testing.T) {
	c := Default()

	_, err := c.Factor("hewan", "kucing")
	require.ErrorIs(t, err, ErrUnknownCategory)

	// Category keys are case-sensitive.
	_, err = c.Factor("Transport", "motor")
	require.ErrorIs(t, err, ErrUnknownCategory)

	_, err = c.Factor(CategoryTransport, "pesawat")
	require.ErrorIs(t, err, ErrUnknownSubtype)

	// A subtype from another category is unknown, not silently found.
	_, err = c.Factor(CategoryTransport, "sapi")
	require.ErrorIs(t, err, ErrUnknownSubtype)
}

func TestCategoriesAndSubtypes(t *testing.T) {
	c := Default()

	assert.Equal(t, []Category{CategoryTransport, CategoryFood, CategoryEnergy}, c.Categories())
	assert.Equal(t, "1.0.0", c.Version())

	subs, err := c.Subtypes(CategoryEnergy)
	require.NoError(t, err)
	names := make([]string, 0, len(subs))
	for _, s := range subs {
		names = append(names, s.Subtype)
	}
	assert.Equal(t, []string{"ac", "lampu", "listrik", "tv"}, names)

	_, err = c.Subtypes("hewan")
	require.ErrorIs(t, err, ErrUnknownCategory)
}

func TestParseRejectsBadDocuments(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr error
	}{
		{
			name:    "not yaml",
			doc:     "version: [",
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "missing version",
			doc:     "categories:\n  - name: food\n    factors:\n      - {subtype: nasi, kg_per_unit: 4}\n",
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "bad version",
			doc:     "version: one\ncategories: []\n",
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "future major version",
			doc:     "version: 2.0.0\ncategories:\n  - name: food\n    factors:\n      - {subtype: nasi, kg_per_unit: 4}\n",
			wantErr: ErrIncompatibleCatalog,
		},
		{
			name:    "negative factor",
			doc:     "version: 1.1.0\ncategories:\n  - name: food\n    factors:\n      - {subtype: nasi, kg_per_unit: -4}\n",
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "missing factor",
			doc:     "version: 1.1.0\ncategories:\n  - name: food\n    factors:\n      - {subtype: nasi}\n",
			wantErr: ErrInvalidCatalog,
		},
		{
			name: "alias collides across categories",
			doc: "version: 1.1.0\ncategories:\n" +
				"  - name: food\n    factors:\n      - {subtype: nasi, kg_per_unit: 4}\n" +
				"  - name: energy\n    factors:\n      - {subtype: ac, kg_per_unit: 0.9, aliases: [NASI]}\n",
			wantErr: ErrDuplicateSubtype,
		},
		{
			name:    "unknown emission unit",
			doc:     "version: 1.1.0\ncategories:\n  - name: food\n    factors:\n      - {subtype: nasi, kg_per_unit: 4, emission_unit: oz}\n",
			wantErr: ErrInvalidCatalog,
		},
		{
			name:    "empty category",
			doc:     "version: 1.1.0\ncategories:\n  - name: food\n",
			wantErr: ErrInvalidCatalog,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestLoadCustomCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.yaml")
	doc := `version: 1.2.0
categories:
  - name: transport
    unit: km
    factors:
      - subtype: ojek
        kg_per_unit: 0.12
`
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "1.2.0", c.Version())

	got, err := c.Factor(CategoryTransport, "Ojek")
	require.NoError(t, err)
	assert.InDelta(t, 0.12, got, 1e-12)

	_, err = c.Factor(CategoryFood, "nasi")
	require.ErrorIs(t, err, ErrUnknownCategory)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)

	def, err := Load("")
	require.NoError(t, err)
	assert.True(t, def.HasCategory(CategoryFood))
}

func TestParseConvertsEmissionUnits(t *testing.T) {
	doc := `version: 1.0.0
categories:
  - name: transport
    unit: km
    factors:
      - subtype: ojek
        kg_per_unit: 110
        emission_unit: gCO2e
      - subtype: pesawat
        kg_per_unit: 0.000255
        emission_unit: t
      - subtype: kapal
        kg_per_unit: 0.02
`
	c, err := Parse([]byte(doc))
	require.NoError(t, err)

	tests := map[string]float64{"ojek": 0.11, "pesawat": 0.255, "kapal": 0.02}
	for subtype, want := range tests {
		got, err := c.Factor(CategoryTransport, subtype)
		require.NoError(t, err)
		assert.InDelta(t, want, got, 1e-12, subtype)
	}
}
