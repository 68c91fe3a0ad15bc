// Package resampler implements an asynchronous, band-limited sample-rate
// converter: a streaming state machine that reconstructs a continuous-time
// signal via a windowed-sinc anti-aliasing filter and resamples it at an
// arbitrary, dynamically adjustable ratio.
//
// The ratio need not be a simple fraction and can be ramped smoothly across
// a chunk. Resampling is not real-time-safe during construction (which
// tabulates the polyphase filter bank), but ProcessIntoBuffer performs no
// heap allocation and is safe to call from an audio callback.
package resampler

import "sincresample/pkg/window"

// Sample is the floating-point scalar type a resampler instance operates
// on. Both 32- and 64-bit precision are supported; the cursor and per-sample
// step are always tracked in float64 regardless of T (spec design note:
// fractional arithmetic uses 64-bit floats even for a float32 resampler).
type Sample interface {
	~float32 | ~float64
}

// ChunkMode selects which of the input or output frame count is held fixed
// across calls to ProcessIntoBuffer.
type ChunkMode int

const (
	// FixedInput holds the number of input frames constant per chunk; the
	// number of output frames produced varies with the current ratio.
	FixedInput ChunkMode = iota
	// FixedOutput holds the number of output frames constant per chunk; the
	// number of input frames consumed varies with the current ratio.
	FixedOutput
)

func (m ChunkMode) String() string {
	switch m {
	case FixedInput:
		return "fixed-input"
	case FixedOutput:
		return "fixed-output"
	default:
		return "unknown"
	}
}

// InterpolationType selects the polynomial used to refine between the
// discretely oversampled polyphase grid and the true fractional position.
type InterpolationType int

const (
	// Cubic fits a cubic polynomial through the four nearest oversampled
	// taps. Needs fewer intermediate points for a given quality than Linear,
	// at roughly twice its per-sample cost.
	Cubic InterpolationType = iota
	// Quadratic fits a quadratic polynomial through the three nearest taps.
	Quadratic
	// Linear interpolates between the two nearest taps.
	Linear
	// Nearest returns the single nearest oversampled tap unmodified. Exact
	// when oversamplingFactor equals the true rational ratio denominator,
	// e.g. oversampling=2 for a 48kHz -> 96kHz conversion.
	Nearest
)

func (t InterpolationType) String() string {
	switch t {
	case Cubic:
		return "cubic"
	case Quadratic:
		return "quadratic"
	case Linear:
		return "linear"
	case Nearest:
		return "nearest"
	default:
		return "unknown"
	}
}

// tapCount returns how many polyphase taps the interpolation type consumes.
func (t InterpolationType) tapCount() int {
	switch t {
	case Cubic:
		return 4
	case Quadratic:
		return 3
	case Linear:
		return 2
	default:
		return 1
	}
}

// Parameters holds the construction-time parameters of the windowed-sinc
// interpolation filter and the chosen inter-tap interpolation scheme.
type Parameters struct {
	// SincLen is the length of the windowed sinc filter. Rounded up to the
	// nearest multiple of 8. 256 is a good starting point for high quality;
	// 64 is adequate for modest ratio changes.
	SincLen int
	// FCutoff is the relative cutoff frequency of the sinc filter, in
	// (0, 1), relative to the lower of the input/output Nyquist frequency.
	// 0.95 is a good starting point.
	FCutoff float64
	// OversamplingFactor is the number of polyphase sub-filters tabulated
	// between input samples. 128-160 is a good starting point; lower values
	// keep the bank cache-resident at the cost of interpolation accuracy.
	OversamplingFactor int
	// Interpolation selects the inter-tap polynomial.
	Interpolation InterpolationType
	// Window selects the window function applied to the sinc prototype.
	Window window.Kind
}
