package resampler

import "math"

// nearestTap names one tap in the ring buffer: an integer sample offset
// (pre-kernel-base) and the polyphase sub-filter row it falls on.
type nearestTap struct {
	sampleOffset int
	subFilter    int
}

// floorDiv is division rounding toward negative infinity, as opposed to
// Go's native truncating "/".
func floorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// pmod is the mathematical (non-negative) modulo: the result always shares
// the sign of b (here always positive, since b is oversampling_factor).
func pmod(a, b int) int {
	m := a % b
	if m < 0 {
		m += b
	}
	return m
}

// tapAt resolves a continuous polyphase index q (in units of 1/oversampling
// input samples) to a concrete ring-buffer offset and sub-filter row.
func tapAt(q, oversampling int) nearestTap {
	return nearestTap{
		sampleOffset: floorDiv(q, oversampling),
		subFilter:    pmod(q, oversampling),
	}
}

// locate splits a continuous sinc-bank index idx into an integer tap
// position p and the fractional remainder frac in [0,1) between p and p+1,
// both expressed in polyphase (oversampled) units.
func locate(idx float64, oversampling int) (p int, frac float64) {
	g := idx * float64(oversampling)
	pf := math.Floor(g)
	return int(pf), g - pf
}

// nearestTaps1 resolves the single tap used by nearest-neighbor
// interpolation: (floor(p/O), p mod O) with p = floor(idx*O), per spec §4.5.
func nearestTaps1(idx float64, oversampling int) (nearestTap, float64) {
	p, frac := locate(idx, oversampling)
	return tapAt(p, oversampling), frac
}

// nearestTaps2 resolves the two taps used by linear interpolation: p and
// p+1, with x the fractional offset from p.
func nearestTaps2(idx float64, oversampling int) ([2]nearestTap, float64) {
	p, frac := locate(idx, oversampling)
	return [2]nearestTap{tapAt(p, oversampling), tapAt(p+1, oversampling)}, frac
}

// nearestTaps3 resolves the three taps used by quadratic interpolation: p,
// p+1, p+2, with x the fractional offset from p.
func nearestTaps3(idx float64, oversampling int) ([3]nearestTap, float64) {
	p, frac := locate(idx, oversampling)
	return [3]nearestTap{
		tapAt(p, oversampling),
		tapAt(p+1, oversampling),
		tapAt(p+2, oversampling),
	}, frac
}

// nearestTaps4 resolves the four taps used by cubic interpolation: p-1, p,
// p+1, p+2, with x the fractional offset from p (the second tap).
func nearestTaps4(idx float64, oversampling int) ([4]nearestTap, float64) {
	p, frac := locate(idx, oversampling)
	return [4]nearestTap{
		tapAt(p-1, oversampling),
		tapAt(p, oversampling),
		tapAt(p+1, oversampling),
		tapAt(p+2, oversampling),
	}, frac
}
