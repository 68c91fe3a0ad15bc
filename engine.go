package main

import (
	"math"
	"sync"
	"time"

	"sincresample/pkg/resampler"
	"sincresample/pkg/window"
)

// EngineConfig holds the construction-time parameters for an Engine.
type EngineConfig struct {
	InRate       float64
	OutRate      float64
	Channels     int
	ToneHz       float64
	ChunkSize    int
	Mode         resampler.ChunkMode
	Params       resampler.Parameters
	MaxRelRatio  float64
	TickInterval time.Duration
}

// Engine drives an AsyncSincResampler continuously against a synthetic
// single sine test tone, so a TUI or web client has something live to
// display without wiring up a real audio backend. It is the monitoring
// counterpart to the offline conversion done by cmd/resample.
type Engine struct {
	cfg EngineConfig
	r   *resampler.AsyncSincResampler[float64]

	mu          sync.RWMutex
	phase       []float64
	inPeak      []float64
	outPeak     []float64
	framesTotal int64

	stop chan struct{}
	done chan struct{}
}

// NewEngine builds an Engine and its underlying resampler.
func NewEngine(cfg EngineConfig) (*Engine, error) {
	ratio := cfg.OutRate / cfg.InRate
	r, err := resampler.New[float64](ratio, cfg.MaxRelRatio, cfg.Params, cfg.ChunkSize, cfg.Channels, cfg.Mode)
	if err != nil {
		return nil, err
	}
	return &Engine{
		cfg:     cfg,
		r:       r,
		phase:   make([]float64, cfg.Channels),
		inPeak:  make([]float64, cfg.Channels),
		outPeak: make([]float64, cfg.Channels),
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}, nil
}

// Run feeds the resampler from a synthetic signal at cfg.TickInterval until
// Stop is called. Intended to run in its own goroutine.
func (e *Engine) Run() {
	defer close(e.done)

	ticker := time.NewTicker(e.cfg.TickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.stop:
			return
		case <-ticker.C:
			e.tick()
		}
	}
}

// Stop signals Run to return and waits for it to do so.
func (e *Engine) Stop() {
	close(e.stop)
	<-e.done
}

func (e *Engine) tick() {
	e.mu.Lock()
	defer e.mu.Unlock()

	in := e.r.InputBufferAllocate(true)
	for ch := 0; ch < e.cfg.Channels; ch++ {
		step := 2 * math.Pi * e.cfg.ToneHz / e.cfg.InRate
		peak := 0.0
		for i := range in[ch] {
			v := math.Sin(e.phase[ch])
			in[ch][i] = v
			e.phase[ch] += step
			if math.Abs(v) > peak {
				peak = math.Abs(v)
			}
		}
		e.phase[ch] = math.Mod(e.phase[ch], 2*math.Pi)
		e.inPeak[ch] = peak
	}

	out, err := e.r.Process(in, nil)
	if err != nil {
		return
	}
	for ch := 0; ch < e.cfg.Channels; ch++ {
		peak := 0.0
		for _, v := range out[ch] {
			if math.Abs(v) > peak {
				peak = math.Abs(v)
			}
		}
		e.outPeak[ch] = peak
	}
	e.framesTotal += int64(len(out[0]))
}

// Ratio returns the resample ratio currently in effect.
func (e *Engine) Ratio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.r.ResampleRatio()
}

// TargetRatio returns the ratio the next chunk ramps toward.
func (e *Engine) TargetRatio() float64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.r.TargetRatio()
}

// SetRatio changes the live resample ratio, ramped over the next chunk.
func (e *Engine) SetRatio(ratio float64) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.r.SetResampleRatio(ratio, true)
}

// NbrChannels returns the engine's channel count.
func (e *Engine) NbrChannels() int { return e.cfg.Channels }

// Mode returns the chunk-size fixing mode as a display string.
func (e *Engine) Mode() string { return e.r.Mode().String() }

// Interpolation returns the configured interpolation scheme as a display string.
func (e *Engine) Interpolation() string { return e.r.Interpolation().String() }

// Stats is a snapshot of the engine's live state for display.
type Stats struct {
	Ratio              float64
	TargetRatio        float64
	InputFramesNext    int
	OutputFramesNext   int
	BufferFillFraction float64
	OutputDelay        int
	FramesTotal        int64
	InPeak             []float64
	OutPeak            []float64
}

// Snapshot returns a copy of the engine's current stats, safe to read
// concurrently with Run.
func (e *Engine) Snapshot() Stats {
	e.mu.RLock()
	defer e.mu.RUnlock()
	inPeak := make([]float64, len(e.inPeak))
	copy(inPeak, e.inPeak)
	outPeak := make([]float64, len(e.outPeak))
	copy(outPeak, e.outPeak)
	return Stats{
		Ratio:              e.r.ResampleRatio(),
		TargetRatio:        e.r.TargetRatio(),
		InputFramesNext:    e.r.InputFramesNext(),
		OutputFramesNext:   e.r.OutputFramesNext(),
		BufferFillFraction: e.r.BufferFillFraction(),
		OutputDelay:        e.r.OutputDelay(),
		FramesTotal:        e.framesTotal,
		InPeak:             inPeak,
		OutPeak:            outPeak,
	}
}

// defaultParameters returns a reasonable set of filter parameters for the
// monitoring engine, matching the construction-time Parameters documented
// in the resampler package.
func defaultParameters(interp resampler.InterpolationType) resampler.Parameters {
	return resampler.Parameters{
		SincLen:            128,
		FCutoff:            0.92,
		OversamplingFactor: 128,
		Interpolation:      interp,
		Window:             window.BlackmanHarris2,
	}
}
