package aiff

import (
	"bytes"
	"math"
	"testing"
)

func TestWriteParse_RoundTrip(t *testing.T) {
	t.Parallel()

	const sampleRate = 44100.0
	left := []float32{0, 0.5, -0.5, 1.0, -1.0}
	right := []float32{0, -0.25, 0.25, 0.75, -0.75}

	var buf bytes.Buffer
	if err := Write(&buf, [][]float32{left, right}, sampleRate); err != nil {
		t.Fatalf("Write: %v", err)
	}

	f, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if f.NumChannels != 2 {
		t.Errorf("NumChannels = %d, want 2", f.NumChannels)
	}
	if f.NumSamples != len(left) {
		t.Errorf("NumSamples = %d, want %d", f.NumSamples, len(left))
	}
	if math.Abs(f.SampleRate-sampleRate) > 1e-6 {
		t.Errorf("SampleRate = %v, want %v", f.SampleRate, sampleRate)
	}

	const tol = 1.0 / 32768.0 * 2
	for i := range left {
		if d := float64(f.Data[0][i] - left[i]); math.Abs(d) > tol {
			t.Errorf("left[%d] = %v, want ~%v", i, f.Data[0][i], left[i])
		}
		if d := float64(f.Data[1][i] - right[i]); math.Abs(d) > tol {
			t.Errorf("right[%d] = %v, want ~%v", i, f.Data[1][i], right[i])
		}
	}
}

func TestWrite_RejectsMismatchedChannelLengths(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	err := Write(&buf, [][]float32{{0, 1}, {0}}, 44100)
	if err == nil {
		t.Error("expected an error for mismatched channel lengths")
	}
}
