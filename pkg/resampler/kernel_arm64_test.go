//go:build arm64

package resampler

import (
	"math"
	"testing"

	"sincresample/pkg/window"
)

func TestNeonKernel_MatchesScalar(t *testing.T) {
	t.Parallel()

	bank := buildFilterBank[float64](64, 16, 0.9, window.BlackmanHarris2)
	scalar := newScalarKernel[float64](bank)
	neon := newNeonKernel[float64](bank)

	buffer := make([]float64, bank.Len()+32)
	for i := range buffer {
		buffer[i] = math.Sin(float64(i) * 0.37)
	}

	for base := 0; base <= 32; base += 7 {
		for sub := 0; sub < bank.NbrSincs(); sub += 5 {
			want := scalar.GetSincInterpolated(buffer, base, sub)
			got := neon.GetSincInterpolated(buffer, base, sub)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("base=%d sub=%d: got %v, want %v (scalar)", base, sub, got, want)
			}
		}
	}
}
