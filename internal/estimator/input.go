// Package estimator holds the interactive calculator state: the inputs a user
// is editing, the busy flag bracketing a calculation and the latest result.
package estimator

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Field names accepted by Session.SetField.
const (
	FieldLoanAmount   = "loanAmount"
	FieldDownPayment  = "downPayment"
	FieldInterestRate = "interestRate"
	FieldLoanTerm     = "loanTerm"
)

// ErrUnknownField is returned when setting a field the calculator does not have.
var ErrUnknownField = errors.New("unknown field")

// ParseAmount converts user text into a number. Empty or malformed text is
// coerced to 0 rather than rejected, and so are non-finite values. A leading
// numeric prefix is honored ("12abc" is 12).
func ParseAmount(text string) float64 {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return 0
	}

	value, err := strconv.ParseFloat(numericPrefix(trimmed), 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0
	}
	return value
}

// maxTermYears bounds parsed terms so the int conversion stays defined.
const maxTermYears = 1000

// ParseTerm converts user text into a whole number of years. Fractions are
// truncated; malformed or out-of-range text becomes 0.
func ParseTerm(text string) int {
	years := ParseAmount(text)
	if math.Abs(years) > maxTermYears {
		return 0
	}
	return int(years)
}

// numericPrefix returns the longest leading run of text that looks like a
// decimal number with an optional sign and exponent.
func numericPrefix(text string) string {
	end := 0
	seenDigit, seenDot, seenExp := false, false, false

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c >= '0' && c <= '9':
			seenDigit = true
			end = i + 1
		case (c == '+' || c == '-') && (i == 0 || text[i-1] == 'e' || text[i-1] == 'E'):
			continue
		case c == '.' && !seenDot && !seenExp:
			seenDot = true
			if seenDigit {
				end = i + 1
			}
		case (c == 'e' || c == 'E') && seenDigit && !seenExp:
			seenExp = true
		default:
			return text[:end]
		}
	}
	return text[:end]
}

func fieldError(field string) error {
	return fmt.Errorf("%w: %q", ErrUnknownField, field)
}
