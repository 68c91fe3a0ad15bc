// Command analyze-filter reports the frequency response of a windowed-sinc
// polyphase filter bank, for tuning SincLen/FCutoff/Window choices offline.
package main

import (
	"flag"
	"fmt"
	"os"

	"sincresample/pkg/filteranalysis"
	"sincresample/pkg/resampler"
	"sincresample/pkg/window"
)

func parseWindow(name string) (window.Kind, error) {
	switch name {
	case "blackman-harris2":
		return window.BlackmanHarris2, nil
	case "blackman-harris":
		return window.BlackmanHarris, nil
	case "blackman":
		return window.Blackman, nil
	case "hann":
		return window.Hann, nil
	default:
		return 0, fmt.Errorf("unknown window %q", name)
	}
}

func main() {
	sincLen := flag.Int("sinc-len", 128, "Windowed sinc filter length")
	cutoff := flag.Float64("cutoff", 0.92, "Relative filter cutoff frequency, in (0, 1)")
	oversampling := flag.Int("oversampling", 128, "Number of tabulated polyphase sub-filters")
	winName := flag.String("window", "blackman-harris2", "Sinc window: blackman-harris2, blackman-harris, blackman, or hann")
	subFilter := flag.Int("sub-filter", 0, "Polyphase sub-filter index to analyze")
	fftSize := flag.Int("fft-size", 8192, "FFT size used to compute the response (power of two)")

	flag.Parse()

	win, err := parseWindow(*winName)
	if err != nil {
		//nolint:forbidigo // CLI error output
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}

	bank := resampler.NewFilterBank[float64](*sincLen, *oversampling, *cutoff, win)

	resp, err := filteranalysis.Analyze[float64](bank, *subFilter, *fftSize)
	if err != nil {
		//nolint:forbidigo // CLI error output
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}

	passbandEdge := *cutoff * 0.9
	ripple := resp.PassbandRipple(passbandEdge)
	atten := resp.StopbandAttenuation(*cutoff)

	//nolint:forbidigo // CLI report output
	fmt.Printf("Filter bank: sincLen=%d oversampling=%d cutoff=%.3f window=%s sub-filter=%d\n",
		bank.Len(), bank.NbrSincs(), *cutoff, win, *subFilter)
	//nolint:forbidigo // CLI report output
	fmt.Printf("Passband ripple (0 .. %.3f):       %.2f dB\n", passbandEdge, ripple)
	//nolint:forbidigo // CLI report output
	fmt.Printf("Stopband attenuation (%.3f .. 1):   %.2f dB\n", *cutoff, atten)
}
