package greenops

import (
	"fmt"
	"math"
	"sync"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// printer is the locale-aware message printer for number formatting.
//
//nolint:gochecknoglobals // Global printer is idiomatic for x/text/message usage.
var (
	printerMu sync.RWMutex
	printer   = message.NewPrinter(language.English)
)

// SetLocale switches number formatting to the given BCP 47 tag, e.g. "id" for
// Indonesian ("1.234,5"). An unparseable tag leaves the locale unchanged.
func SetLocale(tag string) error {
	t, err := language.Parse(tag)
	if err != nil {
		return fmt.Errorf("parsing locale %q: %w", tag, err)
	}
	printerMu.Lock()
	defer printerMu.Unlock()
	printer = message.NewPrinter(t)
	return nil
}

func currentPrinter() *message.Printer {
	printerMu.RLock()
	defer printerMu.RUnlock()
	return printer
}

// FormatNumber formats an integer with thousand separators.
// Example: FormatNumber(18248) returns "18,248".
func FormatNumber(n int64) string {
	return currentPrinter().Sprintf("%d", n)
}

// FormatFloat formats a float with exactly precision decimals and thousand separators.
// Example: FormatFloat(1234.567, 2) returns "1,234.57".
func FormatFloat(f float64, precision int) string {
	const base = 10
	multiplier := math.Pow(base, float64(precision))
	rounded := math.Round(f*multiplier) / multiplier

	if precision == 0 {
		return FormatNumber(int64(rounded))
	}
	return currentPrinter().Sprint(number.Decimal(rounded, number.Scale(precision)))
}

// FormatKg formats kilograms of CO2e for display, e.g. "1.50 kg CO₂".
func FormatKg(kg float64) string {
	return FormatFloat(kg, 2) + " kg CO₂"
}

// FormatLarge formats large numbers with abbreviated notation.
//
// Values below LargeNumberThreshold (1 million) use comma-separated format.
// Values at or above LargeNumberThreshold use "~X.X million" format.
// Values at or above BillionThreshold use "~X.X billion" format.
func FormatLarge(n float64) string {
	if n >= BillionThreshold {
		return fmt.Sprintf("~%.1f billion", n/BillionThreshold)
	}
	if n >= LargeNumberThreshold {
		return fmt.Sprintf("~%.1f million", n/LargeNumberThreshold)
	}
	return FormatNumber(int64(math.Round(n)))
}
