package integration

import (
	"bytes"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iwvelando/mortgage-simulator/internal/config"
	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/constants"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
	"github.com/iwvelando/mortgage-simulator/pkg/mathutil"
	"github.com/iwvelando/mortgage-simulator/pkg/output"
	"github.com/iwvelando/mortgage-simulator/pkg/testutil"
	"go.uber.org/zap"
)

var exampleConfig = filepath.Join("..", "..", constants.ExampleConfigFile)

// runExample loads the example configuration exactly as main() does and runs
// it into a temporary output directory.
func runExample(t *testing.T) (*config.Configuration, []simulation.Result) {
	t.Helper()

	conf, err := config.LoadConfiguration(exampleConfig)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.Output.Directory = t.TempDir()

	results, err := simulation.Run(zap.NewNop(), *conf, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	return conf, results
}

// TestMainIntegrationBaseline checks the example simulations against known
// reference values.
func TestMainIntegrationBaseline(t *testing.T) {
	_, results := runExample(t)

	expected := []string{"fija", "variable"}
	if len(results) != len(expected) {
		t.Fatalf("Expected %d results, got %d", len(expected), len(results))
	}
	for i, name := range expected {
		if results[i].Summary.Name != name {
			t.Errorf("Expected simulation %s, got %s", name, results[i].Summary.Name)
		}
	}

	fixed := testutil.FindResult(results, "fija")
	if fixed == nil {
		t.Fatal("fixed simulation missing")
	}
	checks := []struct {
		name      string
		actual    float64
		expected  float64
		tolerance float64
	}{
		{"initial payment", fixed.Summary.InitialPayment, 643.2790408930008, 1e-9},
		{"accumulated interest", fixed.Summary.AccumulatedInterest, 31580.4547, 1e-3},
		{"final balance", fixed.Summary.FinalBalance, 0, 1e-6},
		{"total paid", fixed.Summary.TotalPaid, 643.2790408930008 * 360, 1e-6},
	}
	for _, check := range checks {
		if !mathutil.WithinTolerance(check.actual, check.expected, check.tolerance) {
			t.Errorf("fixed %s = %v, expected %v", check.name, check.actual, check.expected)
		}
	}

	if !fixed.Summary.PaidOff {
		t.Errorf("fixed loan not reported as paid off")
	}

	variable := testutil.FindResult(results, "variable")
	if variable == nil {
		t.Fatal("variable simulation missing")
	}
	if variable.Summary.PaidOff {
		t.Errorf("variable loan reported as paid off with balance %v", variable.Summary.FinalBalance)
	}
	if math.Abs(variable.Summary.InitialRate-0.00142) > 1e-12 {
		t.Errorf("variable initial rate = %v, expected 0.00142", variable.Summary.InitialRate)
	}
	if math.Abs(variable.Summary.InitialPayment-567.5058) > 1e-3 {
		t.Errorf("variable initial payment = %v, expected about 567.5058", variable.Summary.InitialPayment)
	}
	if variable.Summary.RateUpdates != 29 {
		t.Errorf("variable rate updates = %d, expected 29", variable.Summary.RateUpdates)
	}
}

// TestLedgerFiles checks the ledger files written for the example.
func TestLedgerFiles(t *testing.T) {
	conf, results := runExample(t)

	for _, result := range results {
		t.Run(result.Summary.Name, func(t *testing.T) {
			if filepath.Dir(result.LedgerPath) != conf.Output.Directory {
				t.Errorf("ledger %s not under %s", result.LedgerPath, conf.Output.Directory)
			}

			data, err := os.ReadFile(result.LedgerPath)
			if err != nil {
				t.Fatalf("ReadFile() error = %v", err)
			}
			lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
			if lines[0] != ledger.Header {
				t.Errorf("header = %q, expected %q", lines[0], ledger.Header)
			}
			if len(lines) != result.Summary.Periods+1 {
				t.Errorf("ledger has %d lines, expected %d", len(lines), result.Summary.Periods+1)
			}

			records := testutil.ReadLedger(t, result.LedgerPath)
			validateLedger(t, result.Summary.Loan, records)

			last := records[len(records)-1]
			if last.PendingLoan != result.Summary.FinalBalance {
				t.Errorf("last pending loan %v differs from summary %v", last.PendingLoan, result.Summary.FinalBalance)
			}
		})
	}
}

// validateLedger checks the per-row accounting identities of a ledger.
func validateLedger(t *testing.T, loan float64, records []ledger.Record) {
	t.Helper()

	balance := loan
	accumulated := 0.0
	for i, r := range records {
		if r.Month != i {
			t.Fatalf("row %d has month %d", i, r.Month)
		}
		if math.Abs(r.MonthlyInterest-balance*r.Interest/12) > 1e-6 {
			t.Errorf("month %d: interest %v, expected %v", i, r.MonthlyInterest, balance*r.Interest/12)
		}
		if math.Abs(r.AmortizedLoan-(r.MonthlyPayment-r.MonthlyInterest)) > 1e-6 {
			t.Errorf("month %d: amortized %v does not match payment minus interest", i, r.AmortizedLoan)
		}
		balance -= r.AmortizedLoan
		accumulated += r.MonthlyInterest
		if math.Abs(r.PendingLoan-balance) > 1e-6 {
			t.Errorf("month %d: pending %v, expected %v", i, r.PendingLoan, balance)
		}
		if math.Abs(r.AccumulatedInterest-accumulated) > 1e-6 {
			t.Errorf("month %d: accumulated interest %v, expected %v", i, r.AccumulatedInterest, accumulated)
		}
		balance = r.PendingLoan
		accumulated = r.AccumulatedInterest
	}
}

// TestVariableRateSchedule checks that the variable rate only changes on
// year boundaries and follows the linear policy.
func TestVariableRateSchedule(t *testing.T) {
	_, results := runExample(t)

	variable := testutil.FindResult(results, "variable")
	if variable == nil {
		t.Fatal("variable simulation missing")
	}
	records := testutil.ReadLedger(t, variable.LedgerPath)

	for i, r := range records {
		year := i / 12
		expected := 0.007 - 0.00558 + float64(year)*0.001
		if math.Abs(r.Interest-expected) > 1e-9 {
			t.Errorf("month %d: rate %v, expected %v", i, r.Interest, expected)
		}
		if i > 0 && i%12 != 0 && r.MonthlyPayment != records[i-1].MonthlyPayment {
			t.Errorf("month %d: payment changed mid-year", i)
		}
	}
}

// TestPrettyOutputFormat tests the pretty print output
func TestPrettyOutputFormat(t *testing.T) {
	_, results := runExample(t)

	var buf bytes.Buffer
	output.PrettyFormat(&buf, results)

	for _, want := range []string{"fija", "variable"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("pretty output missing %q", want)
		}
	}
}

// TestCsvFormat tests the CSV format function
func TestCsvFormat(t *testing.T) {
	_, results := runExample(t)

	lines := strings.Split(strings.TrimRight(output.CsvString(results), "\n"), "\n")
	if len(lines) != len(results)+1 {
		t.Fatalf("CSV has %d lines, expected %d", len(lines), len(results)+1)
	}
	for i, result := range results {
		if !strings.Contains(lines[i+1], result.Summary.Name) {
			t.Errorf("CSV line %d does not mention %s: %s", i+1, result.Summary.Name, lines[i+1])
		}
	}
}

// TestConfigurationValidation runs the example through the warning checks.
func TestConfigurationValidation(t *testing.T) {
	conf, err := config.LoadConfiguration(exampleConfig)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	warnings := conf.ValidateConfiguration()
	found := false
	for _, w := range warnings {
		if strings.Contains(w, "variable-series") && strings.Contains(w, "inactive") {
			found = true
		}
	}
	if !found {
		t.Errorf("expected an inactive warning for variable-series, got %v", warnings)
	}
}

// TestSeriesPolicyEndToEnd activates the series simulation of the example.
func TestSeriesPolicyEndToEnd(t *testing.T) {
	conf, err := config.LoadConfiguration(exampleConfig)
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}
	conf.Output.Directory = t.TempDir()

	active := true
	for i := range conf.Simulations {
		if conf.Simulations[i].Name == "variable-series" {
			conf.Simulations[i].Active = &active
		}
	}

	results, err := simulation.Run(zap.NewNop(), *conf, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	series := testutil.FindResult(results, "variable-series")
	if series == nil {
		t.Fatal("series simulation missing")
	}

	records := testutil.ReadLedger(t, series.LedgerPath)
	if len(records) != 240 {
		t.Fatalf("series ledger has %d rows, expected 240", len(records))
	}
	values := []float64{0.0321, 0.0285, 0.0250, 0.0225}
	for year := 0; year < 20; year++ {
		v := values[len(values)-1]
		if year < len(values) {
			v = values[year]
		}
		if got := records[year*12].Interest; math.Abs(got-(0.0099+v)) > 1e-9 {
			t.Errorf("year %d: rate %v, expected %v", year, got, 0.0099+v)
		}
	}
}
