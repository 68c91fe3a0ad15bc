package resampler

// Inter-tap interpolators, closed-form fits over 1-4 kernel outputs spaced
// one sub-filter apart (spec §4.3). x is the fractional offset in [0,1)
// from the sample point at the fit's centre: y[1] for the cubic, y[0] for
// the quadratic and linear fits.

// interpCubic fits a cubic through y[0..3] (centered between y[1] and y[2])
// and evaluates it at x.
func interpCubic[T Sample](x T, y [4]T) T {
	a0 := y[1]
	a1 := -y[0]/3 - y[1]/2 + y[2] - y[3]/6
	a2 := (y[0]+y[2])/2 - y[1]
	a3 := (y[1]-y[2])/2 + (y[3]-y[0])/6
	return a0 + a1*x + a2*x*x + a3*x*x*x
}

// interpQuad fits a quadratic through y[0..2] (centered at y[1]) and
// evaluates it at x.
func interpQuad[T Sample](x T, y [3]T) T {
	a2 := y[0] - 2*y[1] + y[2]
	a1 := -3*y[0] + 4*y[1] - y[2]
	a0 := 2 * y[0]
	return 0.5 * (a0 + x*(a1+x*a2))
}

// interpLinear linearly interpolates between y[0] and y[1] at x.
func interpLinear[T Sample](x T, y [2]T) T {
	return y[0] + x*(y[1]-y[0])
}

// interpNearest returns the single nearest tap unchanged.
func interpNearest[T Sample](y T) T {
	return y
}
