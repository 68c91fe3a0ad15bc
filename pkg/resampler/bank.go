package resampler

import (
	"math"

	"sincresample/pkg/window"
)

// FilterBank is the polyphase filter bank described by spec §3 and §4.1: a
// dense matrix of shape [oversamplingFactor][sincLen]. Row k is the sinc
// prototype evaluated at offsets (i - sincLen/2 - k/oversamplingFactor),
// multiplied by the chosen window, so its peak sits k/oversamplingFactor of
// a sample past the centre tap. It is computed once at construction and
// never mutated afterward, so a shared read-only reference is safe to hand
// to multiple kernel back-ends or processing goroutines.
type FilterBank[T Sample] struct {
	taps         [][]T
	sincLen      int
	oversampling int
}

// NewFilterBank tabulates a polyphase bank for the given filter length,
// oversampling factor, relative cutoff, and window kind. sincLen is rounded
// up to the nearest multiple of 8 before use; the rounded value is what
// Kernel.Len() later reports.
func NewFilterBank[T Sample](sincLen, oversamplingFactor int, fCutoff float64, win window.Kind) *FilterBank[T] {
	return buildFilterBank[T](roundSincLenUp8(sincLen), oversamplingFactor, fCutoff, win)
}

func buildFilterBank[T Sample](sincLen, oversamplingFactor int, fCutoff float64, win window.Kind) *FilterBank[T] {
	taps := make([][]T, oversamplingFactor)
	half := float64(sincLen) / 2.0
	for k := 0; k < oversamplingFactor; k++ {
		row := make([]T, sincLen)
		for i := 0; i < sincLen; i++ {
			x := float64(i) - half - float64(k)/float64(oversamplingFactor)
			s := sincValue(fCutoff * x)
			w := window.Value(win, x/half)
			row[i] = T(fCutoff * s * w)
		}
		taps[k] = row
	}
	return &FilterBank[T]{taps: taps, sincLen: sincLen, oversampling: oversamplingFactor}
}

// sincValue computes sin(pi*x)/(pi*x), with sinc(0) = 1.
func sincValue(x float64) float64 {
	if math.Abs(x) < 1e-9 {
		return 1.0
	}
	px := math.Pi * x
	return math.Sin(px) / px
}

// roundSincLenUp8 rounds sincLen up to the next multiple of 8 (spec §3/§4.1).
func roundSincLenUp8(sincLen int) int {
	if sincLen <= 0 {
		return 8
	}
	return 8 * int(math.Ceil(float64(sincLen)/8.0))
}

// Len returns the number of taps per sub-filter (sinc_len).
func (b *FilterBank[T]) Len() int { return b.sincLen }

// NbrSincs returns the number of polyphase sub-filters (oversampling_factor).
func (b *FilterBank[T]) NbrSincs() int { return b.oversampling }

// Taps returns the bank's tap matrix, [sub-filter][tap]. The returned slices
// alias the bank's internal storage and must not be mutated; it exists so a
// bank can be serialized by a cache without recomputing it.
func (b *FilterBank[T]) Taps() [][]T { return b.taps }

// NewFilterBankFromTaps wraps a precomputed tap matrix (e.g. one decoded
// from a cache file) as a FilterBank, skipping the cosine-sum tabulation in
// buildFilterBank. The caller is responsible for taps being well-formed:
// oversamplingFactor rows, each sincLen long.
func NewFilterBankFromTaps[T Sample](taps [][]T, sincLen, oversamplingFactor int) *FilterBank[T] {
	return &FilterBank[T]{taps: taps, sincLen: sincLen, oversampling: oversamplingFactor}
}
