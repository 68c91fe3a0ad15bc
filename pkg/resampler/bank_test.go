package resampler

import (
	"math"
	"testing"

	"sincresample/pkg/window"
)

func TestRoundSincLenUp8(t *testing.T) {
	t.Parallel()

	cases := map[int]int{
		0:   8,
		-5:  8,
		1:   8,
		8:   8,
		9:   16,
		127: 128,
		128: 128,
	}
	for in, want := range cases {
		if got := roundSincLenUp8(in); got != want {
			t.Errorf("roundSincLenUp8(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestSincValue_OriginIsOne(t *testing.T) {
	t.Parallel()

	if got := sincValue(0); got != 1.0 {
		t.Errorf("sincValue(0) = %v, want 1.0", got)
	}
}

func TestSincValue_IntegerZeroCrossings(t *testing.T) {
	t.Parallel()

	for _, x := range []float64{1, 2, 3, -1, -2} {
		got := sincValue(x)
		if math.Abs(got) > 1e-9 {
			t.Errorf("sincValue(%v) = %v, want ~0", x, got)
		}
	}
}

func TestNewFilterBank_Shape(t *testing.T) {
	t.Parallel()

	bank := NewFilterBank[float64](100, 32, 0.9, window.BlackmanHarris2)
	if bank.NbrSincs() != 32 {
		t.Errorf("NbrSincs() = %d, want 32", bank.NbrSincs())
	}
	if bank.Len() != 104 { // rounded up to a multiple of 8
		t.Errorf("Len() = %d, want 104", bank.Len())
	}
	for k := 0; k < bank.NbrSincs(); k++ {
		if len(bank.taps[k]) != bank.Len() {
			t.Fatalf("sub-filter %d has %d taps, want %d", k, len(bank.taps[k]), bank.Len())
		}
	}
}

func TestBuildFilterBank_CenterTapIsPositivePeak(t *testing.T) {
	t.Parallel()

	bank := buildFilterBank[float64](64, 16, 1.0, window.BlackmanHarris2)
	row := bank.taps[0]
	center := len(row) / 2
	if row[center] <= 0 {
		t.Errorf("expected positive center tap, got %v", row[center])
	}
	if row[center] <= row[center-1] || row[center] <= row[center+1] {
		t.Errorf("expected center tap to be the local peak, got row[%d]=%v neighbors=%v,%v",
			center, row[center], row[center-1], row[center+1])
	}
}
