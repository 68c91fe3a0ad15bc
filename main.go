package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"sincresample/pkg/resampler"
	"sincresample/pkg/window"
	"sincresample/web"
)

// engineWebAdapter narrows *Engine's snapshot to the shape web.Server
// expects, keeping package web free of a dependency on package main.
type engineWebAdapter struct {
	*Engine
}

func (a engineWebAdapter) Snapshot() web.StatsSnapshot {
	s := a.Engine.Snapshot()
	return web.StatsSnapshot{
		InputFramesNext:    s.InputFramesNext,
		OutputFramesNext:   s.OutputFramesNext,
		BufferFillFraction: s.BufferFillFraction,
		OutputDelay:        s.OutputDelay,
		FramesTotal:        s.FramesTotal,
		InPeak:             s.InPeak,
		OutPeak:            s.OutPeak,
	}
}

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
		return 0, fmt.Errorf("unknown interpolation %q (want cubic, quadratic, linear, or nearest)", name)
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
		return 0, fmt.Errorf("unknown window %q (want blackman-harris2, blackman-harris, blackman, or hann)", name)
	}
}

func parseMode(name string) (resampler.ChunkMode, error) {
	switch name {
	case "fixed-input":
		return resampler.FixedInput, nil
	case "fixed-output":
		return resampler.FixedOutput, nil
	default:
		return 0, fmt.Errorf("unknown chunk mode %q (want fixed-input or fixed-output)", name)
	}
}

func main() {
	inRate := flag.Float64("in-rate", 44100, "Input sample rate in Hz")
	outRate := flag.Float64("out-rate", 48000, "Output sample rate in Hz")
	channels := flag.Int("channels", 2, "Number of channels")
	toneHz := flag.Float64("tone", 440, "Frequency of the synthetic test tone fed to the monitor, in Hz")
	chunkSize := flag.Int("chunk-size", 1024, "Frames per processing chunk")
	mode := flag.String("mode", "fixed-input", "Chunk sizing mode: fixed-input or fixed-output")
	interp := flag.String("interpolation", "cubic", "Inter-tap interpolation: cubic, quadratic, linear, or nearest")
	win := flag.String("window", "blackman-harris2", "Sinc window: blackman-harris2, blackman-harris, blackman, or hann")
	sincLen := flag.Int("sinc-len", 128, "Windowed sinc filter length (rounded up to a multiple of 8)")
	cutoff := flag.Float64("cutoff", 0.92, "Relative filter cutoff frequency, in (0, 1)")
	oversampling := flag.Int("oversampling", 128, "Number of tabulated polyphase sub-filters")
	maxRelRatio := flag.Float64("max-ratio-change", 2.0, "Maximum ratio deviation allowed from the construction-time ratio")
	tick := flag.Duration("tick", 10*time.Millisecond, "Interval between synthetic-signal processing ticks")
	webPort := flag.Int("port", 8080, "Web server port")
	noWeb := flag.Bool("no-web", false, "Disable web server")
	noTUI := flag.Bool("no-tui", false, "Disable interactive TUI")
	noBrowser := flag.Bool("no-browser", false, "Don't auto-open browser")
	logFile := flag.String("log", "sincresample.log", "Log file path")
	showHelp := flag.Bool("help", false, "Show this help message")

	flag.Parse()

	if *showHelp {
		//nolint:forbidigo // CLI help output requires fmt.Println
		fmt.Println("sincresample - asynchronous band-limited sample-rate conversion monitor")
		//nolint:forbidigo // CLI help output requires fmt.Println
		fmt.Println("=========================================================================")
		//nolint:forbidigo // CLI help output requires fmt.Println
		fmt.Println("\nDrives an AsyncSincResampler against a synthetic test signal and exposes")
		//nolint:forbidigo // CLI help output requires fmt.Println
		fmt.Println("its live state through a terminal UI and a web dashboard.")
		//nolint:forbidigo // CLI help output requires fmt.Println
		fmt.Println("\nOptions:")
		flag.PrintDefaults()
		os.Exit(0)
	}

	file, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o666)
	if err != nil {
		//nolint:forbidigo // error output before logging is initialized
		fmt.Printf("Failed to open log file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	logger := slog.New(slog.NewTextHandler(file, nil))
	slog.SetDefault(logger)
	slog.Info("Starting sincresample", "args", os.Args)

	interpolation, err := parseInterpolation(*interp)
	if err != nil {
		//nolint:forbidigo // critical error output to user
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	windowKind, err := parseWindow(*win)
	if err != nil {
		//nolint:forbidigo // critical error output to user
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}
	chunkMode, err := parseMode(*mode)
	if err != nil {
		//nolint:forbidigo // critical error output to user
		fmt.Printf("ERROR: %v\n", err)
		os.Exit(1)
	}

	cfg := EngineConfig{
		InRate:      *inRate,
		OutRate:     *outRate,
		Channels:    *channels,
		ToneHz:      *toneHz,
		ChunkSize:   *chunkSize,
		Mode:        chunkMode,
		MaxRelRatio: *maxRelRatio,
		Params: resampler.Parameters{
			SincLen:            *sincLen,
			FCutoff:            *cutoff,
			OversamplingFactor: *oversampling,
			Interpolation:      interpolation,
			Window:             windowKind,
		},
		TickInterval: *tick,
	}

	engine, err := NewEngine(cfg)
	if err != nil {
		slog.Error("Failed to construct engine", "error", err)
		//nolint:forbidigo // critical error output to user
		fmt.Printf("ERROR: Failed to construct resampler engine: %v\n", err)
		os.Exit(1)
	}
	slog.Info("Engine constructed",
		"inRate", *inRate, "outRate", *outRate, "channels", *channels,
		"mode", chunkMode, "interpolation", interpolation, "window", windowKind)

	go engine.Run()
	defer engine.Stop()

	var webServer *web.Server
	if !*noWeb {
		webServer = web.NewServer(engineWebAdapter{engine}, *webPort)

		go func() {
			slog.Info("Starting web server", "port", *webPort)
			if err := webServer.Start(); err != nil {
				slog.Error("Web server error", "error", err)
			}
		}()

		if !*noBrowser {
			time.Sleep(200 * time.Millisecond)
			go func() {
				url := fmt.Sprintf("http://localhost:%d", *webPort)
				if err := web.OpenBrowser(url); err != nil {
					slog.Error("Failed to open browser", "error", err)
				}
			}()
		}

		//nolint:forbidigo // startup message
		fmt.Printf("Web UI available at http://localhost:%d\n", *webPort)
	}

	if *noTUI {
		//nolint:forbidigo // headless mode startup message
		fmt.Println("Starting sincresample monitor...")
		//nolint:forbidigo // headless mode startup message
		fmt.Println("TUI disabled. Running in headless mode.")
		//nolint:forbidigo // headless mode startup message
		fmt.Println("Log file:", *logFile)
		//nolint:forbidigo // headless mode startup message
		fmt.Println("Press Ctrl+C to exit.")
		select {}
	} else {
		runTUI(engine)
		slog.Info("TUI exited")
	}

	if webServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := webServer.Shutdown(ctx); err != nil {
			slog.Error("Web server shutdown error", "error", err)
		}
	}

	slog.Info("Shutdown complete")
}
