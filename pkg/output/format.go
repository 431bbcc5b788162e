// Package output provides utilities for formatting and displaying simulation results.
package output

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// PrettyFormat writes a human-readable summary of every simulation.
func PrettyFormat(w io.Writer, results []simulation.Result) {
	p := message.NewPrinter(language.English)
	for i, result := range results {
		s := result.Summary
		_, _ = fmt.Fprintf(w, "--- Results for simulation %s (%s) ---\n", s.Name, s.Type)
		_, _ = p.Fprintf(w, "Loan                 | %.2f\n", s.Loan)
		_, _ = p.Fprintf(w, "Periods              | %d\n", s.Periods)
		_, _ = p.Fprintf(w, "Initial rate         | %.4f%%\n", mathutil.ToPercentage(s.InitialRate))
		_, _ = p.Fprintf(w, "Final rate           | %.4f%%\n", mathutil.ToPercentage(s.FinalRate))
		_, _ = p.Fprintf(w, "Initial payment      | %.2f\n", s.InitialPayment)
		_, _ = p.Fprintf(w, "Final payment        | %.2f\n", s.FinalPayment)
		_, _ = p.Fprintf(w, "Total paid           | %.2f\n", s.TotalPaid)
		_, _ = p.Fprintf(w, "Accumulated interest | %.2f\n", s.AccumulatedInterest)
		_, _ = p.Fprintf(w, "Pending loan         | %.2f\n", mathutil.Round(s.FinalBalance))
		if s.PaidOff {
			_, _ = fmt.Fprintf(w, "Paid off             | yes\n")
		} else {
			_, _ = fmt.Fprintf(w, "Paid off             | no\n")
		}
		if s.RateUpdates > 0 {
			_, _ = p.Fprintf(w, "Rate updates         | %d\n", s.RateUpdates)
		}
		if result.LedgerPath != "" {
			_, _ = fmt.Fprintf(w, "Ledger               | %s\n", result.LedgerPath)
		}
		if i < len(results)-1 {
			_, _ = fmt.Fprintf(w, "\n")
		}
	}
}

// CsvFormat writes one comma-separated row per simulation.
func CsvFormat(w io.Writer, results []simulation.Result) error {
	cw := csv.NewWriter(w)
	header := []string{
		"name", "type", "loan", "periods", "initial_rate", "final_rate",
		"initial_payment", "final_payment", "total_paid", "accumulated_interest",
		"pending_loan", "paid_off", "ledger",
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	for _, result := range results {
		s := result.Summary
		row := []string{
			s.Name,
			s.Type,
			fmt.Sprintf("%.2f", s.Loan),
			strconv.Itoa(s.Periods),
			fmt.Sprintf("%.6f", s.InitialRate),
			fmt.Sprintf("%.6f", s.FinalRate),
			fmt.Sprintf("%.2f", s.InitialPayment),
			fmt.Sprintf("%.2f", s.FinalPayment),
			fmt.Sprintf("%.2f", s.TotalPaid),
			fmt.Sprintf("%.2f", s.AccumulatedInterest),
			fmt.Sprintf("%.2f", mathutil.Round(s.FinalBalance)),
			strconv.FormatBool(s.PaidOff),
			result.LedgerPath,
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// CsvString returns the CsvFormat output as a string.
func CsvString(results []simulation.Result) string {
	var buf bytes.Buffer
	// Writes to a bytes.Buffer cannot fail.
	_ = CsvFormat(&buf, results)
	return buf.String()
}
