// Package format renders numbers the way the dashboard shows them: Hebrew
// locale, Israeli shekels, no fraction digits.
package format

import (
	"fmt"
	"math"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Locale is the display locale of the dashboard.
var Locale = language.MustParse("he-IL")

// Currency is the unit all prices and grants are quoted in.
var Currency = currency.MustParseISO("ILS")

var printer = message.NewPrinter(Locale)

// FormatNumber formats n as a grouped integer, e.g. 1234567.4 -> "1,234,567".
// Halves round away from zero.
func FormatNumber(n float64) string {
	return printer.Sprint(number.Decimal(round(n), number.MaxFractionDigits(0)))
}

// FormatCurrency formats n as whole shekels, e.g. 1234 -> "1,234 ₪".
// The amount and the symbol are separated by a no-break space.
func FormatCurrency(n float64) string {
	return FormatNumber(n) + "\u00a0" + Symbol()
}

// Symbol returns the narrow symbol of Currency in Locale.
func Symbol() string {
	return printer.Sprint(currency.NarrowSymbol(Currency))
}

// FormatOptional formats an optional count, or returns placeholder when n is nil.
func FormatOptional(n *int, placeholder string) string {
	if n == nil {
		return placeholder
	}
	return FormatNumber(float64(*n))
}

// Percent formats a percentage with two fraction digits, e.g. "12.90%".
func Percent(p float64) string {
	return fmt.Sprintf("%.2f%%", p)
}

func round(n float64) int64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return int64(math.Round(n))
}
