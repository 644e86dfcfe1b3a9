// Package output provides utilities for writing calculation reports.
package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-calculator/internal/report"
	"github.com/iwvelando/mortgage-calculator/pkg/constants"
	"github.com/iwvelando/mortgage-calculator/pkg/validation"
)

// Write renders the report in the given output format. A report whose
// breakdown is not finite is refused before anything is written.
func Write(w io.Writer, outputFormat string, r report.Report) error {
	if err := validation.ValidateResult(r.Breakdown); err != nil {
		return err
	}

	switch outputFormat {
	case constants.OutputFormatPretty:
		return PrettyFormat(w, r)
	case constants.OutputFormatCSV:
		return CsvFormat(w, r)
	case constants.OutputFormatJSON:
		return JSONFormat(w, r)
	default:
		return fmt.Errorf("unsupported output format %q", outputFormat)
	}
}

// PrettyFormat outputs a human-readable rather than machine-readable summary.
func PrettyFormat(w io.Writer, r report.Report) error {
	lines := []string{
		"--- Your Mortgage Breakdown ---",
		fmt.Sprintf("Monthly Payment | %s (principal & interest only)", r.MonthlyPayment),
		fmt.Sprintf("Total Interest  | %s over %s", r.TotalInterest, r.LoanTerm),
		fmt.Sprintf("Total Payment   | %s", r.TotalPayment),
		"",
		fmt.Sprintf("Loan Amount     | %s", r.FinancedAmount),
		fmt.Sprintf("Down Payment    | %s", r.DownPayment),
		fmt.Sprintf("Interest Rate   | %s", r.InterestRate),
		fmt.Sprintf("Loan Term       | %s", r.LoanTerm),
	}
	if r.LoanToValue != "" {
		lines = append(lines, fmt.Sprintf("Loan-to-Value   | %s", r.LoanToValue))
	}

	lines = append(lines, "", "--- Payment Breakdown ---")
	for _, segment := range r.Chart {
		lines = append(lines, fmt.Sprintf("%-15s | %s (%s)", segment.Name, segment.Amount, segment.Share))
	}

	for _, warning := range r.Warnings {
		lines = append(lines, "warning: "+warning)
	}

	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

// CsvFormat outputs the raw and formatted figures in comma-separated value format.
func CsvFormat(w io.Writer, r report.Report) error {
	writer := csv.NewWriter(w)
	rows := [][]string{
		{"field", "value", "display"},
		{"loanAmount", formatFloat(r.Inputs.LoanAmount), ""},
		{"downPayment", formatFloat(r.Inputs.DownPayment), r.DownPayment},
		{"interestRate", formatFloat(r.Inputs.InterestRate), r.InterestRate},
		{"loanTerm", strconv.Itoa(r.Inputs.LoanTermYears), r.LoanTerm},
		{"principal", formatFloat(r.Inputs.Principal()), r.FinancedAmount},
		{"monthlyPayment", formatFloat(r.Breakdown.MonthlyPayment), r.MonthlyPayment},
		{"totalInterest", formatFloat(r.Breakdown.TotalInterest), r.TotalInterest},
		{"totalPayment", formatFloat(r.Breakdown.TotalPayment), r.TotalPayment},
		{"principalAndInterest", formatFloat(r.Breakdown.PrincipalAndInterest), r.PrincipalAndInterest},
	}
	if r.LoanToValue != "" {
		rows = append(rows, []string{"loanToValue", "", r.LoanToValue})
	}
	for _, segment := range r.Chart {
		rows = append(rows, []string{"share" + segment.Name, formatFloat(segment.Percentage), segment.Share})
	}

	if err := writer.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}

// JSONFormat outputs the report as indented JSON.
func JSONFormat(w io.Writer, r report.Report) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(r)
}

func formatFloat(value float64) string {
	return strconv.FormatFloat(value, 'f', -1, 64)
}
