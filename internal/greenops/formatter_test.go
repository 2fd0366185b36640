package greenops

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatNumber(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{123, "123"},
		{1234, "1,234"},
		{1234567, "1,234,567"},
		{0, "0"},
		{-1234, "-1,234"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatNumber(tt.n))
	}
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name      string
		f         float64
		precision int
		want      string
	}{
		{name: "round to integer", f: 18248.56, precision: 0, want: "18,249"},
		{name: "two decimals", f: 1234.5678, precision: 2, want: "1,234.57"},
		{name: "pads zeros", f: 1.5, precision: 2, want: "1.50"},
		{name: "zero", f: 0, precision: 2, want: "0.00"},
		{name: "negative", f: -1234.56, precision: 2, want: "-1,234.56"},
		{name: "round up at boundary", f: 999.999, precision: 2, want: "1,000.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.f, tt.precision))
		})
	}
}

func TestFormatKg(t *testing.T) {
	assert.Equal(t, "27.00 kg CO₂", FormatKg(27))
	assert.Equal(t, "1.50 kg CO₂", FormatKg(1.5))
}

func TestFormatLarge(t *testing.T) {
	assert.Equal(t, "999,999", FormatLarge(999999))
	assert.Equal(t, "~1.0 million", FormatLarge(1000000))
	assert.Equal(t, "~5.2 million", FormatLarge(5200000))
	assert.Equal(t, "~1.5 billion", FormatLarge(1500000000))
	assert.Equal(t, "0", FormatLarge(0))
}

func TestSetLocale(t *testing.T) {
	t.Cleanup(func() { require.NoError(t, SetLocale("en")) })

	require.NoError(t, SetLocale("id"))
	assert.Equal(t, "1.234", FormatNumber(1234))
	assert.Equal(t, "1.234,50", FormatFloat(1234.5, 2))

	require.Error(t, SetLocale("not a locale!"))
	assert.Equal(t, "1.234", FormatNumber(1234), "failed SetLocale keeps the previous locale")
}
