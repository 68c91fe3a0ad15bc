// Command resample converts an AIFF file to a new sample rate using the
// asynchronous windowed-sinc resampler, writing the result as AIFF.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"

	"sincresample/internal/aiff"
	"sincresample/pkg/resampler"
	"sincresample/pkg/window"
)

func parseInterpolation(name string) (resampler.InterpolationType, error) {
	switch name {
	case "cubic":
		return resampler.Cubic, nil
	case "quadratic":
		return resampler.Quadratic, nil
	case "linear":
		return resampler.Linear, nil
	case "nearest":
		return resampler.Nearest, nil
	default:
		return 0, fmt.Errorf("unknown interpolation %q", name)
	}
}

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
	inPath := flag.String("in", "", "Input AIFF file")
	outPath := flag.String("out", "", "Output AIFF file")
	outRate := flag.Float64("out-rate", 48000, "Target sample rate in Hz")
	sincLen := flag.Int("sinc-len", 256, "Windowed sinc filter length")
	cutoff := flag.Float64("cutoff", 0.95, "Relative filter cutoff frequency, in (0, 1)")
	oversampling := flag.Int("oversampling", 128, "Number of tabulated polyphase sub-filters")
	interpName := flag.String("interpolation", "cubic", "Inter-tap interpolation: cubic, quadratic, linear, or nearest")
	winName := flag.String("window", "blackman-harris2", "Sinc window: blackman-harris2, blackman-harris, blackman, or hann")
	chunkSize := flag.Int("chunk-size", 4096, "Frames processed per internal chunk")

	flag.Parse()

	if *inPath == "" || *outPath == "" {
		//nolint:forbidigo // CLI error output
		fmt.Println("usage: resample -in input.aiff -out output.aiff [-out-rate 48000] ...")
		os.Exit(1)
	}

	interp, err := parseInterpolation(*interpName)
	if err != nil {
		fatalf("%v", err)
	}
	win, err := parseWindow(*winName)
	if err != nil {
		fatalf("%v", err)
	}

	in, err := os.Open(*inPath)
	if err != nil {
		fatalf("failed to open %s: %v", *inPath, err)
	}
	defer in.Close()

	src, err := aiff.Parse(in)
	if err != nil {
		fatalf("failed to parse %s: %v", *inPath, err)
	}

	params := resampler.Parameters{
		SincLen:            *sincLen,
		FCutoff:            *cutoff,
		OversamplingFactor: *oversampling,
		Interpolation:      interp,
		Window:             win,
	}

	ratio := src.ResampleRatioTo(*outRate)
	r, err := resampler.New[float64](ratio, 4.0, params, *chunkSize, src.NumChannels, resampler.FixedInput)
	if err != nil {
		fatalf("failed to construct resampler: %v", err)
	}

	inBuf := make([][]float64, src.NumChannels)
	for ch := range inBuf {
		inBuf[ch] = make([]float64, len(src.Data[ch]))
		for i, v := range src.Data[ch] {
			inBuf[ch][i] = float64(v)
		}
	}

	outChannels := make([][]float64, src.NumChannels)
	for ch := range outChannels {
		outChannels[ch] = make([]float64, 0, int(float64(len(inBuf[ch]))*ratio)+r.OutputDelay()+len(inBuf[0]))
	}

	needed := r.InputFramesNext()
	pos := 0
	for pos+needed <= len(inBuf[0]) {
		chunk := make([][]float64, src.NumChannels)
		for ch := range chunk {
			chunk[ch] = inBuf[ch][pos : pos+needed]
		}

		out, err := r.Process(chunk, nil)
		if err != nil {
			fatalf("resampling failed: %v", err)
		}
		for ch := range outChannels {
			outChannels[ch] = append(outChannels[ch], out[ch]...)
		}

		pos += needed
		needed = r.InputFramesNext()
	}

	outData := make([][]float32, src.NumChannels)
	for ch := range outData {
		outData[ch] = make([]float32, len(outChannels[ch]))
		for i, v := range outChannels[ch] {
			outData[ch][i] = float32(v)
		}
	}

	out, err := os.Create(*outPath)
	if err != nil {
		fatalf("failed to create %s: %v", *outPath, err)
	}
	defer out.Close()

	if err := aiff.Write(out, outData, *outRate); err != nil {
		fatalf("failed to write %s: %v", *outPath, err)
	}

	slog.Info("resampled",
		"in", *inPath, "out", *outPath,
		"inRate", src.SampleRate, "outRate", *outRate,
		"inFrames", len(inBuf[0]), "outFrames", len(outChannels[0]))
}

func fatalf(format string, args ...any) {
	//nolint:forbidigo // CLI error output
	fmt.Printf("ERROR: "+format+"\n", args...)
	os.Exit(1)
}
