// Package report turns a payment breakdown into the figures shown to a user:
// formatted summary values, the loan details and the proportion chart.
package report

import (
	"fmt"
	"strconv"

	"github.com/iwvelando/mortgage-calculator/pkg/breakdown"
	"github.com/iwvelando/mortgage-calculator/pkg/format"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

// Report is the rendered view of one calculation.
type Report struct {
	Inputs    mortgage.LoanInputs       `json:"inputs"`
	Breakdown mortgage.PaymentBreakdown `json:"breakdown"`

	MonthlyPayment       string `json:"monthlyPayment"`
	PrincipalAndInterest string `json:"principalAndInterest"`
	TotalInterest        string `json:"totalInterest"`
	TotalPayment         string `json:"totalPayment"`

	FinancedAmount string `json:"financedAmount"`
	DownPayment    string `json:"downPayment"`
	InterestRate   string `json:"interestRate"`
	LoanTerm       string `json:"loanTerm"`
	LoanToValue    string `json:"loanToValue,omitempty"`

	Chart    []ChartSegment `json:"chart"`
	Warnings []string       `json:"warnings,omitempty"`
}

// ChartSegment is a proportion chart slice with its display text.
type ChartSegment struct {
	breakdown.Segment
	Amount string `json:"amount"`
	Share  string `json:"share"`
}

// Build renders the report with US formatting.
func Build(in mortgage.LoanInputs, b mortgage.PaymentBreakdown) Report {
	return BuildLocalized("", in, b)
}

// BuildLocalized renders the report using the number separators of the given
// BCP 47 tag. An empty tag uses US formatting.
func BuildLocalized(tag string, in mortgage.LoanInputs, b mortgage.PaymentBreakdown) Report {
	money := format.Currency
	if tag != "" {
		money = func(amount float64) string {
			return format.LocalizedCurrency(tag, amount)
		}
	}

	r := Report{
		Inputs:               in,
		Breakdown:            b,
		MonthlyPayment:       money(b.MonthlyPayment),
		PrincipalAndInterest: money(b.PrincipalAndInterest),
		TotalInterest:        money(b.TotalInterest),
		TotalPayment:         money(b.TotalPayment),
		FinancedAmount:       money(in.Principal()),
		DownPayment:          money(in.DownPayment),
		InterestRate:         strconv.FormatFloat(in.InterestRate, 'f', -1, 64) + "% APR",
		LoanTerm:             fmt.Sprintf("%d years", in.LoanTermYears),
		Warnings:             validation.ValidateLoanInputs(in),
	}

	if ltv, ok := breakdown.LoanToValue(in); ok {
		r.LoanToValue = format.Percent(ltv)
	}

	for _, segment := range breakdown.Shares(b) {
		r.Chart = append(r.Chart, ChartSegment{
			Segment: segment,
			Amount:  format.WholeCurrency(segment.Value),
			Share:   format.Percent(segment.Percentage),
		})
	}

	return r
}
