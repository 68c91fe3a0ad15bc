package resampler

import (
	"testing"

	"sincresample/pkg/window"
)

func TestNewKernel_DispatchesToAWorkingBackEnd(t *testing.T) {
	t.Parallel()

	bank := buildFilterBank[float64](32, 8, 0.9, window.Hann)
	k := newKernel[float64](bank)

	if k.Len() != bank.Len() {
		t.Errorf("Len() = %d, want %d", k.Len(), bank.Len())
	}
	if k.NbrSincs() != bank.NbrSincs() {
		t.Errorf("NbrSincs() = %d, want %d", k.NbrSincs(), bank.NbrSincs())
	}

	buffer := make([]float64, bank.Len())
	buffer[0] = 1.0
	got := k.GetSincInterpolated(buffer, 0, 0)
	want := bank.taps[0][0]
	if got != want {
		t.Errorf("GetSincInterpolated with single unit impulse = %v, want %v", got, want)
	}
}
