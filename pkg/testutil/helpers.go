// Package testutil provides common utility functions for testing.
package testutil

import (
	"os"
	"testing"

	"github.com/iwvelando/mortgage-simulator/internal/simulation"
	"github.com/iwvelando/mortgage-simulator/pkg/ledger"
)

// FindResult finds a simulation result by name in the results slice.
// Returns a pointer to the result if found, nil otherwise.
func FindResult(results []simulation.Result, name string) *simulation.Result {
	for i := range results {
		if results[i].Summary.Name == name {
			return &results[i]
		}
	}
	return nil
}

// ReadLedger parses the ledger file at path, failing the test on error.
func ReadLedger(t testing.TB, path string) []ledger.Record {
	t.Helper()

	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open ledger %s: %v", path, err)
	}
	defer func() {
		_ = f.Close()
	}()

	records, err := ledger.Read(f)
	if err != nil {
		t.Fatalf("read ledger %s: %v", path, err)
	}
	return records
}
