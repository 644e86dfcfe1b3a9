// Package mortgage computes fixed-rate amortizing payments for a home loan.
package mortgage

import (
	"math"

	"github.com/iwvelando/mortgage-calculator/pkg/constants"
)

// LoanInputs holds the values a user enters into the calculator.
type LoanInputs struct {
	LoanAmount    float64 `json:"loanAmount" yaml:"loanAmount"`
	DownPayment   float64 `json:"downPayment" yaml:"downPayment"`
	InterestRate  float64 `json:"interestRate" yaml:"interestRate"` // annual percent, 6.5 means 6.5%
	LoanTermYears int     `json:"loanTerm" yaml:"loanTerm"`
}

// PaymentBreakdown holds the aggregate figures for one calculation.
type PaymentBreakdown struct {
	MonthlyPayment       float64 `json:"monthlyPayment"`
	TotalInterest        float64 `json:"totalInterest"`
	TotalPayment         float64 `json:"totalPayment"`
	PrincipalAndInterest float64 `json:"principalAndInterest"`
}

// IsFinite reports whether every figure is a real number. Extreme inputs can
// overflow the formula to NaN or an infinity.
func (b PaymentBreakdown) IsFinite() bool {
	for _, v := range []float64{b.MonthlyPayment, b.TotalInterest, b.TotalPayment, b.PrincipalAndInterest} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// Principal returns the financed amount. It is negative when the down payment
// exceeds the loan amount.
func (in LoanInputs) Principal() float64 {
	return in.LoanAmount - in.DownPayment
}

// NumberOfPayments returns the count of monthly installments.
func (in LoanInputs) NumberOfPayments() int {
	return in.LoanTermYears * constants.MonthsPerYear
}

// Compute runs the calculator over the inputs.
func (in LoanInputs) Compute() PaymentBreakdown {
	return Compute(in.LoanAmount, in.DownPayment, in.InterestRate, in.LoanTermYears)
}

// Compute returns the payment breakdown for a fixed-rate loan. The caller is
// responsible for loanTermYears > 0; no rounding is applied.
func Compute(loanAmount, downPayment, interestRateAnnualPercent float64, loanTermYears int) PaymentBreakdown {
	principal := loanAmount - downPayment
	monthlyRate := interestRateAnnualPercent / constants.PercentageMultiplier / constants.MonthsPerYear
	numberOfPayments := float64(loanTermYears * constants.MonthsPerYear)

	if monthlyRate == 0 {
		monthlyPayment := principal / numberOfPayments
		return PaymentBreakdown{
			MonthlyPayment:       monthlyPayment,
			TotalInterest:        0,
			TotalPayment:         principal,
			PrincipalAndInterest: monthlyPayment,
		}
	}

	power := math.Pow(1+monthlyRate, numberOfPayments)
	monthlyPayment := principal * (monthlyRate * power) / (power - 1)
	totalPayment := monthlyPayment * numberOfPayments

	return PaymentBreakdown{
		MonthlyPayment:       monthlyPayment,
		TotalInterest:        totalPayment - principal,
		TotalPayment:         totalPayment,
		PrincipalAndInterest: monthlyPayment,
	}
}

// IsAllowedTerm reports whether years is one of the offered loan terms.
func IsAllowedTerm(years int) bool {
	for _, allowed := range constants.AllowedLoanTermsYears {
		if years == allowed {
			return true
		}
	}
	return false
}

// AllowedTerms returns a copy of the offered loan terms in years.
func AllowedTerms() []int {
	return append([]int(nil), constants.AllowedLoanTermsYears...)
}
