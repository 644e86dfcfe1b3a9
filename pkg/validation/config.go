// Package validation provides configuration validation utilities.
package validation

import (
	"errors"
	"fmt"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

var (
	// ErrTermNotAllowed is returned for a loan term outside the offered set.
	ErrTermNotAllowed = errors.New("loan term not allowed")

	// ErrNonFiniteResult is returned when inputs overflow the payment formula.
	ErrNonFiniteResult = errors.New("result is not a finite number")
)

// CanCalculate reports whether the inputs pass the gate that enables the
// calculate action. It only excludes the inputs the calculator cannot handle;
// a down payment above the loan amount still passes.
func CanCalculate(in mortgage.LoanInputs) bool {
	return in.LoanAmount > 0 && in.InterestRate >= 0 && in.LoanTermYears > 0
}

// ValidateTerm checks that years is one of the offered loan terms.
func ValidateTerm(years int) error {
	if !mortgage.IsAllowedTerm(years) {
		return fmt.Errorf("%w: %d years (expected one of %v)", ErrTermNotAllowed, years, constants.AllowedLoanTermsYears)
	}
	return nil
}

// ValidateResult checks that a computed breakdown can be displayed.
func ValidateResult(b mortgage.PaymentBreakdown) error {
	if !b.IsFinite() {
		return ErrNonFiniteResult
	}
	return nil
}

// ValidateLoanInputs returns warnings for inputs that are accepted but likely
// unintended.
func ValidateLoanInputs(in mortgage.LoanInputs) []string {
	var warnings []string

	if in.LoanAmount <= 0 {
		warnings = append(warnings, fmt.Sprintf("Loan amount %.2f is not positive - calculation is disabled", in.LoanAmount))
	}
	if in.DownPayment < 0 {
		warnings = append(warnings, fmt.Sprintf("Down payment %.2f is negative", in.DownPayment))
	}
	if in.DownPayment > in.LoanAmount && in.LoanAmount > 0 {
		warnings = append(warnings, fmt.Sprintf("Down payment %.2f exceeds loan amount %.2f - monthly payment will be negative",
			in.DownPayment, in.LoanAmount))
	}
	if in.InterestRate < 0 {
		warnings = append(warnings, fmt.Sprintf("Interest rate %.3f%% is negative - calculation is disabled", in.InterestRate))
	}
	if err := ValidateTerm(in.LoanTermYears); err != nil {
		warnings = append(warnings, err.Error())
	}

	return warnings
}
