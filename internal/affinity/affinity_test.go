package affinity

import (
	"runtime"
	"testing"
)

func TestPinDoesNotErrorOnValidCPU(t *testing.T) {
	if err := Pin(0); err != nil {
		t.Fatalf("expected Pin(0) to succeed, got %v", err)
	}
	_ = runtime.NumCPU()
}
