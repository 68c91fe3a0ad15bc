package resampler

// Kernel computes one reconstructed sample by a dot-product of sincLen
// consecutive ring-buffer samples against a selected polyphase sub-filter
// (spec §4.2). base is a 0-based index into a contiguous ring buffer; a
// kernel never checks bounds — the driver (AsyncSincResampler) guarantees
// base+Len() <= len(buffer) for every call it makes.
//
// All back-ends must be bit-exact-equivalent up to floating-point
// associativity with the scalar reference; the scalar back-end is the
// specification other back-ends are measured against.
type Kernel[T Sample] interface {
	// Len returns sinc_len, the number of taps per sub-filter.
	Len() int
	// NbrSincs returns oversampling_factor, the number of sub-filters.
	NbrSincs() int
	// GetSincInterpolated dot-products buffer[base:base+Len()] against the
	// sub-filter at subFilterIndex.
	GetSincInterpolated(buffer []T, base, subFilterIndex int) T
}

// newKernel selects a back-end by runtime CPU-feature probe, widest
// available first, falling back to the portable scalar kernel. The probe
// and the selected type are fixed for the lifetime of the bank.
func newKernel[T Sample](bank *FilterBank[T]) Kernel[T] {
	return newPlatformKernel[T](bank)
}
