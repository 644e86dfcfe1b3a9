// Package format renders monetary amounts and percentages as display text.
package format

import (
	"fmt"
	"math"
	"strings"

	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Currency returns a currency string with a dollar sign and thousands separators (e.g., "-$1,234.56").
// Amounts that round to zero cents carry no sign.
func Currency(amount float64) string {
	formatted := formatPositiveCurrency(math.Abs(amount))
	if mathutil.Round(amount) < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// WholeCurrency returns a currency string rounded to whole dollars (e.g., "$1,235").
func WholeCurrency(amount float64) string {
	rounded := math.Round(math.Abs(amount))
	formatted := groupThousands(fmt.Sprintf("%.0f", rounded))
	if amount < 0 && rounded != 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

// Percent returns a percentage with one decimal (e.g., "80.0%").
func Percent(value float64) string {
	if value == 0 {
		value = 0 // normalize negative zero
	}
	return fmt.Sprintf("%.1f%%", value)
}

// LocalizedCurrency formats the amount with the separators of the given BCP 47
// tag. Unknown tags fall back to English. The dollar sign is always used.
func LocalizedCurrency(tag string, amount float64) string {
	lang, err := language.Parse(tag)
	if err != nil {
		lang = language.English
	}
	p := message.NewPrinter(lang)
	formatted := p.Sprintf("%.2f", math.Abs(amount))
	if mathutil.Round(amount) < 0 {
		return "-$" + formatted
	}
	return "$" + formatted
}

func formatPositiveCurrency(value float64) string {
	formatted := fmt.Sprintf("%.2f", value)
	parts := strings.SplitN(formatted, ".", 2)
	intPart := groupThousands(parts[0])
	decPart := "00"
	if len(parts) == 2 {
		decPart = parts[1]
	}
	return intPart + "." + decPart
}

func groupThousands(intPart string) string {
	if len(intPart) <= 3 {
		return intPart
	}
	var builder strings.Builder
	for i, digit := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			builder.WriteByte(',')
		}
		builder.WriteRune(digit)
	}
	return builder.String()
}
