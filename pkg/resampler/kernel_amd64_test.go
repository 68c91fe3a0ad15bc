//go:build amd64

package resampler

import (
	"math"
	"testing"

	"sincresample/pkg/window"
)

func TestSSEKernel_MatchesScalar(t *testing.T) {
	t.Parallel()
	assertKernelMatchesScalar(t, func(bank *FilterBank[float64]) Kernel[float64] {
		return newSSEKernel[float64](bank)
	})
}

func TestAVXKernel_MatchesScalar(t *testing.T) {
	t.Parallel()
	assertKernelMatchesScalar(t, func(bank *FilterBank[float64]) Kernel[float64] {
		return newAVXKernel[float64](bank)
	})
}

func assertKernelMatchesScalar(t *testing.T, build func(*FilterBank[float64]) Kernel[float64]) {
	t.Helper()

	bank := buildFilterBank[float64](64, 16, 0.9, window.BlackmanHarris2)
	scalar := newScalarKernel[float64](bank)
	other := build(bank)

	buffer := make([]float64, bank.Len()+32)
	for i := range buffer {
		buffer[i] = math.Sin(float64(i) * 0.37)
	}

	for base := 0; base <= 32; base += 7 {
		for sub := 0; sub < bank.NbrSincs(); sub += 5 {
			want := scalar.GetSincInterpolated(buffer, base, sub)
			got := other.GetSincInterpolated(buffer, base, sub)
			if math.Abs(got-want) > 1e-9 {
				t.Fatalf("base=%d sub=%d: got %v, want %v (scalar)", base, sub, got, want)
			}
		}
	}
}
