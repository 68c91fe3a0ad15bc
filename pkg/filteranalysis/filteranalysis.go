// Package filteranalysis computes the frequency response of a resampler
// filter bank's polyphase sub-filters via FFT, for diagnosing passband
// ripple and stopband attenuation.
package filteranalysis

import (
	"fmt"
	"math"
	"math/cmplx"

	algofft "github.com/MeKo-Christian/algo-fft"

	"sincresample/pkg/resampler"
)

// Response is the one-sided magnitude spectrum of a single polyphase
// sub-filter, from DC up to Nyquist.
type Response struct {
	// SubFilter is the polyphase index the response was computed for.
	SubFilter int
	// Frequencies holds normalized frequency (0 at DC, 1 at Nyquist) for
	// each bin.
	Frequencies []float64
	// MagnitudeDB holds magnitude in dB, normalized to 0 dB at DC.
	MagnitudeDB []float64
}

// Analyze computes the frequency response of a single polyphase sub-filter
// of bank, zero-padded to fftSize before transforming. fftSize must be a
// power of two at least as large as bank.Len().
func Analyze[T resampler.Sample](bank *resampler.FilterBank[T], subFilter, fftSize int) (*Response, error) {
	if subFilter < 0 || subFilter >= bank.NbrSincs() {
		return nil, fmt.Errorf("subFilter %d out of range [0, %d)", subFilter, bank.NbrSincs())
	}
	if fftSize < bank.Len() {
		return nil, fmt.Errorf("fftSize %d smaller than filter length %d", fftSize, bank.Len())
	}

	taps := bank.Taps()[subFilter]
	padded := make([]float32, fftSize)
	for i, v := range taps {
		padded[i] = float32(v)
	}

	plan, err := algofft.NewPlanReal32(fftSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create FFT plan for size %d: %w", fftSize, err)
	}

	spectrum := make([]complex64, fftSize/2+1)
	if err := plan.Forward(spectrum, padded); err != nil {
		return nil, fmt.Errorf("forward FFT failed: %w", err)
	}

	dc := cmplx.Abs(complex128(spectrum[0]))
	if dc == 0 {
		dc = 1
	}

	freqs := make([]float64, len(spectrum))
	mags := make([]float64, len(spectrum))
	for i, c := range spectrum {
		freqs[i] = float64(i) / float64(len(spectrum)-1)
		mag := cmplx.Abs(complex128(c)) / dc
		mags[i] = linearToDB(mag)
	}

	return &Response{SubFilter: subFilter, Frequencies: freqs, MagnitudeDB: mags}, nil
}

func linearToDB(mag float64) float64 {
	const floor = -300.0
	if mag <= 0 {
		return floor
	}
	db := 20 * math.Log10(mag)
	if db < floor {
		return floor
	}
	return db
}

// PassbandRipple returns the peak deviation from 0 dB, in dB, over the
// normalized frequency range [0, cutoff).
func (r *Response) PassbandRipple(cutoff float64) float64 {
	ripple := 0.0
	for i, f := range r.Frequencies {
		if f >= cutoff {
			break
		}
		if d := math.Abs(r.MagnitudeDB[i]); d > ripple {
			ripple = d
		}
	}
	return ripple
}

// StopbandAttenuation returns the smallest magnitude of attenuation (as a
// positive dB value) found anywhere in the normalized frequency range
// [cutoff, 1], i.e. the worst-case leakage into the stopband.
func (r *Response) StopbandAttenuation(cutoff float64) float64 {
	worst := math.Inf(1)
	for i, f := range r.Frequencies {
		if f < cutoff {
			continue
		}
		if atten := -r.MagnitudeDB[i]; atten < worst {
			worst = atten
		}
	}
	if math.IsInf(worst, 1) {
		return 0
	}
	return worst
}
