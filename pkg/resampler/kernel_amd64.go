//go:build amd64

package resampler

import "golang.org/x/sys/cpu"

// sseKernel accumulates the sinc dot-product four lanes at a time, matching
// the width of a 128-bit SSE register holding four f32 (or two f64 plus
// scalar remainder) lanes.
type sseKernel[T Sample] struct {
	bank *FilterBank[T]
}

func newSSEKernel[T Sample](bank *FilterBank[T]) *sseKernel[T] {
	return &sseKernel[T]{bank: bank}
}

func (k *sseKernel[T]) Len() int      { return k.bank.sincLen }
func (k *sseKernel[T]) NbrSincs() int { return k.bank.oversampling }

func (k *sseKernel[T]) GetSincInterpolated(buffer []T, base, subFilterIndex int) T {
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

// avxKernel accumulates the sinc dot-product eight lanes at a time, matching
// the width of a 256-bit AVX register holding eight f32 lanes.
type avxKernel[T Sample] struct {
	bank *FilterBank[T]
}

func newAVXKernel[T Sample](bank *FilterBank[T]) *avxKernel[T] {
	return &avxKernel[T]{bank: bank}
}

func (k *avxKernel[T]) Len() int      { return k.bank.sincLen }
func (k *avxKernel[T]) NbrSincs() int { return k.bank.oversampling }

func (k *avxKernel[T]) GetSincInterpolated(buffer []T, base, subFilterIndex int) T {
	taps := k.bank.taps[subFilterIndex]
	n := k.bank.sincLen
	var s [8]T
	i := 0
	for ; i+8 <= n; i += 8 {
		for lane := 0; lane < 8; lane++ {
			s[lane] += buffer[base+i+lane] * taps[i+lane]
		}
	}
	sum := ((s[0] + s[1]) + (s[2] + s[3])) + ((s[4] + s[5]) + (s[6] + s[7]))
	for ; i < n; i++ {
		sum += buffer[base+i] * taps[i]
	}
	return sum
}

// newPlatformKernel probes the running CPU for AVX2, then SSE3, falling
// back to the portable scalar kernel (spec §4.2: "widest-available first,
// then scalar").
func newPlatformKernel[T Sample](bank *FilterBank[T]) Kernel[T] {
	if cpu.X86.HasAVX2 {
		return newAVXKernel[T](bank)
	}
	if cpu.X86.HasSSE3 {
		return newSSEKernel[T](bank)
	}
	return newScalarKernel[T](bank)
}
