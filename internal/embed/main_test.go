package embed

import (
	"testing"

	"go.uber.org/goleak"
)

// TestMain enables goroutine leak detection for all tests in the embed
// package, catching unclosed Redis clients and miniredis instances.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
