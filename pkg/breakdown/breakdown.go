// Package breakdown derives the display-only figures shown next to a payment
// breakdown: the principal/interest proportion and the loan-to-value ratio.
package breakdown

import (
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/mathutil"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// Segment names.
const (
	SegmentPrincipal = "Principal"
	SegmentInterest  = "Interest"
)

// Segment is one slice of the proportion chart.
type Segment struct {
	Name       string  `json:"name"`
	Value      float64 `json:"value"`
	Percentage float64 `json:"percentage"` // rounded to one decimal
}

// Shares splits the total payment into its principal and interest segments.
// Both percentages are 0 when the total payment is 0.
func Shares(b mortgage.PaymentBreakdown) []Segment {
	principal := b.TotalPayment - b.TotalInterest

	return []Segment{
		{
			Name:       SegmentPrincipal,
			Value:      principal,
			Percentage: share(principal, b.TotalPayment),
		},
		{
			Name:       SegmentInterest,
			Value:      b.TotalInterest,
			Percentage: share(b.TotalInterest, b.TotalPayment),
		},
	}
}

func share(value, total float64) float64 {
	return mathutil.RoundTo(mathutil.CalculatePercentage(value, total), constants.ShareDecimals)
}

// LoanToValue returns the financed principal as a percentage of the loan
// amount. The second return is false when the ratio is not displayed, i.e.
// without a down payment or when the loan amount is zero.
func LoanToValue(in mortgage.LoanInputs) (float64, bool) {
	if in.DownPayment <= 0 || in.LoanAmount == 0 {
		return 0, false
	}
	return in.Principal() / in.LoanAmount * constants.PercentageMultiplier, true
}
