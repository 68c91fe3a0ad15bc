//go:build !amd64 && !arm64

package resampler

// newPlatformKernel falls back to the portable scalar kernel on
// architectures with no hand-unrolled back-end.
func newPlatformKernel[T Sample](bank *FilterBank[T]) Kernel[T] {
	return newScalarKernel[T](bank)
}
