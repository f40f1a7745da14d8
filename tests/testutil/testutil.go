package testutil

import (
	"os"
	"testing"
)

// MustSetTestEnvironment forces GO_ENV=test for the current process. Suite
// setup calls this so config loading and environment guards behave the same
// way everywhere tests run.
func MustSetTestEnvironment(t *testing.T) {
	t.Helper()

	if err := os.Setenv("GO_ENV", "test"); err != nil {
		t.Fatalf("Failed to set GO_ENV=test: %v", err)
	}
}
