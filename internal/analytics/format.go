package analytics

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// printer groups thousands with "." as enrollment reports do.
var printer = message.NewPrinter(language.BrazilianPortuguese)

// FormatThousands renders v rounded to a whole number with "." grouping,
// e.g. 1234567 as "1.234.567".
func FormatThousands(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(v)))
}

// FormatShare renders a percentage with one decimal, e.g. "12.5%".
func FormatShare(p float64) string {
	return message.NewPrinter(language.English).Sprintf("%.1f%%", p)
}
