// Package testutil provides common utility functions for testing.
package testutil

import (
	"github.com/iwvelando/mortgage-calculator/pkg/breakdown"
	"github.com/iwvelando/mortgage-calculator/pkg/mortgage"
)

// Scenario is a reference loan and the results it is known to produce.
type Scenario struct {
	Name           string
	Inputs         mortgage.LoanInputs
	MonthlyPayment float64
	TotalPayment   float64
	TotalInterest  float64
	// Tolerance applies to the totals; monthly payments are checked to the cent.
	Tolerance float64
}

// ReferenceScenarios returns a fresh copy of the reference loans.
func ReferenceScenarios() []Scenario {
	return []Scenario{
		{
			Name:           "30-year fixed, 20% down",
			Inputs:         mortgage.LoanInputs{LoanAmount: 300000, DownPayment: 60000, InterestRate: 6, LoanTermYears: 30},
			MonthlyPayment: 1438.92,
			TotalPayment:   518011.65,
			TotalInterest:  278011.65,
			Tolerance:      0.5,
		},
		{
			Name:           "15-year interest free",
			Inputs:         mortgage.LoanInputs{LoanAmount: 100000, InterestRate: 0, LoanTermYears: 15},
			MonthlyPayment: 555.56,
			TotalPayment:   100000,
			TotalInterest:  0,
			Tolerance:      0.01,
		},
		{
			Name:           "30-year fixed at 4.5%",
			Inputs:         mortgage.LoanInputs{LoanAmount: 175000, InterestRate: 4.5, LoanTermYears: 30},
			MonthlyPayment: 886.70,
			TotalPayment:   319211.75,
			TotalInterest:  144211.75,
			Tolerance:      0.5,
		},
		{
			Name:           "Paid in full up front",
			Inputs:         mortgage.LoanInputs{LoanAmount: 250000, DownPayment: 250000, InterestRate: 5.5, LoanTermYears: 20},
			MonthlyPayment: 0,
			TotalPayment:   0,
			TotalInterest:  0,
			Tolerance:      0,
		},
	}
}

// FindScenario finds a scenario by name in the scenarios slice.
// Returns a pointer to the scenario if found, nil otherwise.
func FindScenario(scenarios []Scenario, name string) *Scenario {
	for i := range scenarios {
		if scenarios[i].Name == name {
			return &scenarios[i]
		}
	}
	return nil
}

// FindSegment finds a chart segment by name, or returns nil.
func FindSegment(segments []breakdown.Segment, name string) *breakdown.Segment {
	for i := range segments {
		if segments[i].Name == name {
			return &segments[i]
		}
	}
	return nil
}
