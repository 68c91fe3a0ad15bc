// Package window tabulates standard cosine-sum window functions used to
// taper a windowed-sinc anti-aliasing filter.
//
// A window function is a pure mapping from a normalized position in
// [-1, 1] to a weight; it knows nothing about sinc filters, oversampling,
// or sample rates. The resampler package combines a window with a sinc
// prototype to build its polyphase filter bank.
package window

import "math"

// Kind selects a cosine-sum window function.
type Kind int

const (
	// BlackmanHarris2 is the square of the 4-term Blackman-Harris window.
	// It gives a deeper stopband at the cost of a wider main lobe than the
	// plain BlackmanHarris window, and is the recommended default.
	BlackmanHarris2 Kind = iota
	// BlackmanHarris is the plain 4-term Blackman-Harris window.
	BlackmanHarris
	// Blackman is the classic 3-term Blackman window.
	Blackman
	// Hann is the raised-cosine (Hann) window.
	Hann
)

// String returns a human-readable name, used for logging and display.
func (k Kind) String() string {
	switch k {
	case BlackmanHarris2:
		return "blackman_harris2"
	case BlackmanHarris:
		return "blackman_harris"
	case Blackman:
		return "blackman"
	case Hann:
		return "hann"
	default:
		return "unknown"
	}
}

// Value evaluates the window at x, where x is expected to lie in [-1, 1].
// Values outside that range return 0.
func Value(k Kind, x float64) float64 {
	if x < -1.0 || x > 1.0 {
		return 0.0
	}
	switch k {
	case BlackmanHarris2:
		v := blackmanHarris(x)
		return v * v
	case BlackmanHarris:
		return blackmanHarris(x)
	case Blackman:
		return blackman(x)
	case Hann:
		return hann(x)
	default:
		return blackmanHarris(x)
	}
}

// blackmanHarris evaluates the 4-term Blackman-Harris window at x in [-1, 1].
func blackmanHarris(x float64) float64 {
	const (
		a0 = 0.35875
		a1 = 0.48829
		a2 = 0.14128
		a3 = 0.01168
	)
	t := math.Pi * (x + 1.0)
	return a0 - a1*math.Cos(t) + a2*math.Cos(2*t) - a3*math.Cos(3*t)
}

// blackman evaluates the classic 3-term Blackman window at x in [-1, 1].
func blackman(x float64) float64 {
	const (
		a0 = 0.42
		a1 = 0.5
		a2 = 0.08
	)
	t := math.Pi * (x + 1.0)
	return a0 - a1*math.Cos(t) + a2*math.Cos(2*t)
}

// hann evaluates the raised-cosine (Hann) window at x in [-1, 1].
func hann(x float64) float64 {
	return 0.5 - 0.5*math.Cos(math.Pi*(x+1.0))
}
