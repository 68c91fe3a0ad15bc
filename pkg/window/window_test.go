package window

import (
	"math"
	"testing"
)

func TestValue_EdgesAreZero(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{BlackmanHarris2, BlackmanHarris, Blackman, Hann} {
		// The 4-term Blackman-Harris window ends at a0-a1+a2-a3 = 6e-5, not 0;
		// its square (BlackmanHarris2) ends at 3.6e-9.
		edge := 0.0
		if k == BlackmanHarris {
			edge = 6e-5
		}
		if got := Value(k, -1.0); math.Abs(got-edge) > 1e-6 {
			t.Errorf("%s: Value(-1.0) = %v, want ~%v", k, got, edge)
		}
		if got := Value(k, 1.0); math.Abs(got-edge) > 1e-6 {
			t.Errorf("%s: Value(1.0) = %v, want ~%v", k, got, edge)
		}
	}
}

func TestValue_CenterIsPeak(t *testing.T) {
	t.Parallel()

	for _, k := range []Kind{BlackmanHarris2, BlackmanHarris, Blackman, Hann} {
		center := Value(k, 0.0)
		offCenter := Value(k, 0.5)
		if center <= offCenter {
			t.Errorf("%s: Value(0) = %v, want > Value(0.5) = %v", k, center, offCenter)
		}
	}
}

func TestValue_OutsideRangeIsZero(t *testing.T) {
	t.Parallel()

	if got := Value(Hann, 1.5); got != 0 {
		t.Errorf("Value(Hann, 1.5) = %v, want 0", got)
	}
	if got := Value(Hann, -2.0); got != 0 {
		t.Errorf("Value(Hann, -2.0) = %v, want 0", got)
	}
}

func TestString(t *testing.T) {
	t.Parallel()

	want := map[Kind]string{
		BlackmanHarris2: "blackman_harris2",
		BlackmanHarris:  "blackman_harris",
		Blackman:        "blackman",
		Hann:            "hann",
	}
	for k, s := range want {
		if k.String() != s {
			t.Errorf("Kind(%d).String() = %q, want %q", k, k.String(), s)
		}
	}
}
