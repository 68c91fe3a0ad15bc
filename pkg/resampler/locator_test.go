package resampler

import "testing"

func TestFloorDiv(t *testing.T) {
	t.Parallel()

	cases := []struct{ a, b, want int }{
		{7, 2, 3},
		{-7, 2, -4},
		{7, -2, -4},
		{-7, -2, 3},
		{0, 5, 0},
		{6, 3, 2},
	}
	for _, c := range cases {
		if got := floorDiv(c.a, c.b); got != c.want {
			t.Errorf("floorDiv(%d, %d) = %d, want %d", c.a, c.b, got, c.want)
		}
	}
}

func TestPmod_AlwaysNonNegative(t *testing.T) {
	t.Parallel()

	for _, a := range []int{-10, -1, 0, 1, 10, 37} {
		got := pmod(a, 8)
		if got < 0 || got >= 8 {
			t.Errorf("pmod(%d, 8) = %d, out of [0,8)", a, got)
		}
	}
}

func TestTapAt_RoundTrips(t *testing.T) {
	t.Parallel()

	oversampling := 16
	for q := -40; q <= 40; q++ {
		tap := tapAt(q, oversampling)
		reconstructed := tap.sampleOffset*oversampling + tap.subFilter
		if reconstructed != q {
			t.Fatalf("tapAt(%d, %d) did not round-trip: got offset=%d sub=%d -> %d",
				q, oversampling, tap.sampleOffset, tap.subFilter, reconstructed)
		}
	}
}

func TestLocate_FracInUnitRange(t *testing.T) {
	t.Parallel()

	for _, idx := range []float64{0, 0.3, 1.9999, -2.5, 10.1} {
		_, frac := locate(idx, 32)
		if frac < 0 || frac >= 1.0 {
			t.Errorf("locate(%v, 32) frac = %v, want [0,1)", idx, frac)
		}
	}
}

func TestNearestTaps1_FloorsToPolyphaseGrid(t *testing.T) {
	t.Parallel()

	oversampling := 4
	tap, _ := nearestTaps1(0.0, oversampling)
	if tap.sampleOffset != 0 || tap.subFilter != 0 {
		t.Errorf("nearestTaps1(0.0) = %+v, want offset=0 sub=0", tap)
	}

	tap, _ = nearestTaps1(0.49, oversampling)
	if tap.sampleOffset != 0 || tap.subFilter != 1 {
		t.Errorf("nearestTaps1(0.49) = %+v, want offset=0 sub=1 (floor, not round)", tap)
	}
}

func TestNearestTaps4_SpansFourConsecutivePolyphaseSteps(t *testing.T) {
	t.Parallel()

	oversampling := 8
	taps, _ := nearestTaps4(1.25, oversampling)
	g := int(1.25 * float64(oversampling))
	want := []int{g - 1, g, g + 1, g + 2}
	for i, tap := range taps {
		got := tap.sampleOffset*oversampling + tap.subFilter
		if got != want[i] {
			t.Errorf("taps[%d] resolves to %d, want %d", i, got, want[i])
		}
	}
}
