package resampler

import (
	"math"
	"testing"

	"sincresample/pkg/window"
)

func defaultParams(interp InterpolationType) Parameters {
	return Parameters{
		SincLen:            128,
		FCutoff:            0.9,
		OversamplingFactor: 64,
		Interpolation:      interp,
		Window:             window.BlackmanHarris2,
	}
}

func TestNew_InvalidRatio(t *testing.T) {
	t.Parallel()

	_, err := New[float64](0, 2.0, defaultParams(Cubic), 1024, 2, FixedInput)
	if err == nil {
		t.Fatal("expected error for non-positive ratio")
	}
	var target *ErrInvalidRatio
	if !asErr(err, &target) {
		t.Errorf("expected *ErrInvalidRatio, got %T: %v", err, err)
	}
}

func TestNew_InvalidRelativeRatio(t *testing.T) {
	t.Parallel()

	_, err := New[float64](1.5, 0.5, defaultParams(Cubic), 1024, 2, FixedInput)
	if err == nil {
		t.Fatal("expected error for max relative ratio below 1.0")
	}
	var target *ErrInvalidRelativeRatio
	if !asErr(err, &target) {
		t.Errorf("expected *ErrInvalidRelativeRatio, got %T: %v", err, err)
	}
}

func TestProcessIntoBuffer_IdentityRatioProducesOutput(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Cubic), 1024, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := r.InputBufferAllocate(true)
	for i := range in[0] {
		in[0][i] = math.Sin(2 * math.Pi * float64(i) / 64)
	}
	out := r.OutputBufferAllocate(true)

	inN, outN, err := r.ProcessIntoBuffer(in, out, nil)
	if err != nil {
		t.Fatalf("ProcessIntoBuffer: %v", err)
	}
	if inN != r.InputFramesNext() && inN == 0 {
		t.Errorf("unexpected input frame count %d", inN)
	}
	if outN <= 0 {
		t.Errorf("expected positive output frame count, got %d", outN)
	}
}

func TestProcessIntoBuffer_WrongChannelCount(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Linear), 256, 2, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := r.InputBufferAllocate(true) // 2 channels
	out := r.OutputBufferAllocate(true)

	_, _, err = r.ProcessIntoBuffer(in[:1], out, nil)
	var target *ErrWrongNumberOfInputChannels
	if !asErr(err, &target) {
		t.Errorf("expected *ErrWrongNumberOfInputChannels, got %T: %v", err, err)
	}
}

func TestProcessIntoBuffer_InsufficientBufferLeavesStateUntouched(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Linear), 256, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	wantIn := r.InputFramesNext()
	wantOut := r.OutputFramesNext()
	wantIdx := r.lastIndex

	in := [][]float64{make([]float64, wantIn-1)}
	out := r.OutputBufferAllocate(true)

	_, _, err = r.ProcessIntoBuffer(in, out, nil)
	if err == nil {
		t.Fatal("expected error for undersized input buffer")
	}
	if r.InputFramesNext() != wantIn || r.OutputFramesNext() != wantOut || r.lastIndex != wantIdx {
		t.Error("resampler state mutated despite validation failure")
	}
}

func TestProcess_InactiveChannelYieldsEmptySlice(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Cubic), 256, 2, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	in := r.InputBufferAllocate(true)
	mask := []bool{true, false}

	out, err := r.Process(in, mask)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if len(out[1]) != 0 {
		t.Errorf("expected empty output for masked-off channel, got %d frames", len(out[1]))
	}
	if len(out[0]) == 0 {
		t.Error("expected non-empty output for active channel")
	}
}

func TestReset_RestoresOriginalRatioAndClearsHistory(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 4.0, defaultParams(Cubic), 512, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := r.SetResampleRatio(2.0, false); err != nil {
		t.Fatalf("SetResampleRatio: %v", err)
	}
	if err := r.SetChunkSize(256); err != nil {
		t.Fatalf("SetChunkSize: %v", err)
	}
	in := r.InputBufferAllocate(true)
	out := r.OutputBufferAllocate(true)
	if _, _, err := r.ProcessIntoBuffer(in, out, nil); err != nil {
		t.Fatalf("ProcessIntoBuffer: %v", err)
	}

	r.Reset()

	if r.resampleRatio != r.resampleRatioOriginal {
		t.Errorf("ratio not restored: got %v, want %v", r.resampleRatio, r.resampleRatioOriginal)
	}
	if r.chunkSize != r.maxChunkSize {
		t.Errorf("chunk size not restored: got %d, want %d", r.chunkSize, r.maxChunkSize)
	}
	for _, row := range r.buffer {
		for _, v := range row {
			if v != 0 {
				t.Fatal("buffer history not cleared by Reset")
			}
		}
	}
}

func TestSetResampleRatio_OutOfBounds(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Cubic), 512, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = r.SetResampleRatio(10.0, false)
	var target *ErrRatioOutOfBounds
	if !asErr(err, &target) {
		t.Errorf("expected *ErrRatioOutOfBounds, got %T: %v", err, err)
	}
}

func TestOutputFramesNext_ScalesWithRatio(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 4.0, defaultParams(Cubic), 1024, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	base := r.OutputFramesNext()

	if err := r.SetResampleRatio(2.0, false); err != nil {
		t.Fatalf("SetResampleRatio: %v", err)
	}
	doubled := r.OutputFramesNext()

	if doubled <= base {
		t.Errorf("expected output frame estimate to grow with ratio: base=%d doubled=%d", base, doubled)
	}
}

func TestOutputDelay_ScalesWithSincLenAndRatio(t *testing.T) {
	t.Parallel()

	r, err := New[float64](1.0, 2.0, defaultParams(Cubic), 512, 1, FixedInput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	got := r.OutputDelay()
	want := r.kernel.Len() / 2
	if got != want {
		t.Errorf("OutputDelay() = %d, want %d", got, want)
	}
}

func TestFixedOutputMode_ProducesRequestedFrameCount(t *testing.T) {
	t.Parallel()

	r, err := New[float64](0.75, 2.0, defaultParams(Quadratic), 512, 1, FixedOutput)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	for i := 0; i < 4; i++ {
		in := r.InputBufferAllocate(true)
		out := r.OutputBufferAllocate(true)
		_, outN, err := r.ProcessIntoBuffer(in, out, nil)
		if err != nil {
			t.Fatalf("ProcessIntoBuffer iteration %d: %v", i, err)
		}
		if outN != 512 {
			t.Errorf("iteration %d: expected 512 output frames in FixedOutput mode, got %d", i, outN)
		}
	}
}

// asErr is a small errors.As shim so each test can assert on a concrete
// error type without importing errors just for this.
func asErr[E error](err error, target *E) bool {
	e, ok := err.(E)
	if !ok {
		return false
	}
	*target = e
	return true
}
