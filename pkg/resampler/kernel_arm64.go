//go:build arm64

package resampler

import "golang.org/x/sys/cpu"

// neonKernel accumulates the sinc dot-product four lanes at a time,
// matching the width of a 128-bit Neon register holding four f32 lanes (two
// f64 lanes plus scalar remainder for the float64 instantiation).
type neonKernel[T Sample] struct {
	bank *FilterBank[T]
}

func newNeonKernel[T Sample](bank *FilterBank[T]) *neonKernel[T] {
	return &neonKernel[T]{bank: bank}
}

func (k *neonKernel[T]) Len() int      { return k.bank.sincLen }
func (k *neonKernel[T]) NbrSincs() int { return k.bank.oversampling }

func (k *neonKernel[T]) GetSincInterpolated(buffer []T, base, subFilterIndex int) T {
	taps := k.bank.taps[subFilterIndex]
	n := k.bank.sincLen
	var s0, s1, s2, s3 T
	i := 0
	for ; i+4 <= n; i += 4 {
		s0 += buffer[base+i] * taps[i]
		s1 += buffer[base+i+1] * taps[i+1]
		s2 += buffer[base+i+2] * taps[i+2]
		s3 += buffer[base+i+3] * taps[i+3]
	}
	sum := (s0 + s1) + (s2 + s3)
	for ; i < n; i++ {
		sum += buffer[base+i] * taps[i]
	}
	return sum
}

// newPlatformKernel probes the running CPU for Neon (ASIMD is mandatory on
// every real aarch64 core, but the probe keeps the dispatch shape uniform
// with the amd64 back-end), falling back to the portable scalar kernel.
func newPlatformKernel[T Sample](bank *FilterBank[T]) Kernel[T] {
	if cpu.ARM64.HasASIMD {
		return newNeonKernel[T](bank)
	}
	return newScalarKernel[T](bank)
}
