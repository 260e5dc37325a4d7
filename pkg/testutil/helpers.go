// Package testutil provides common utility functions for testing.
package testutil

import (
	"math"
	"testing"

	"github.com/iwvelando/carcost/internal/comparison"
)

// FindRow finds the comparison row for a car and scenario.
// Returns a pointer to the row if found, nil otherwise.
func FindRow(rows []comparison.Row, carID, scenarioID string) *comparison.Row {
	for i := range rows {
		if rows[i].CarID == carID && rows[i].ScenarioID == scenarioID {
			return &rows[i]
		}
	}
	return nil
}

// AssertClose fails the test when got and want differ by more than tolerance.
func AssertClose(t testing.TB, name string, got, want, tolerance float64) {
	t.Helper()
	if math.Abs(got-want) > tolerance {
		t.Errorf("%s = %.4f, expected %.4f (tolerance %.4f)", name, got, want, tolerance)
	}
}
