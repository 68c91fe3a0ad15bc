package resampler

import "math"

// AsyncSincResampler is a streaming, asynchronous sample-rate converter
// driven by a windowed-sinc polyphase filter bank. It holds a ring buffer of
// past input samples per channel (sized to the largest chunk the instance
// will ever see, plus filter history) and advances a fractional cursor
// (lastIndex) across it on every call to ProcessIntoBuffer.
type AsyncSincResampler[T Sample] struct {
	nbrChannels int

	chunkSize    int
	maxChunkSize int

	neededInputSize  int
	neededOutputSize int

	lastIndex float64

	resampleRatio         float64
	resampleRatioOriginal float64
	targetRatio           float64
	maxRelativeRatio      float64

	kernel        Kernel[T]
	interpolation InterpolationType

	buffer      [][]T
	channelMask []bool

	mode ChunkMode
}

// calculateInputSize returns how many fresh input frames a call to
// ProcessIntoBuffer will need, given the current cursor and ratio.
func calculateInputSize(chunkSize int, resampleRatio, targetRatio, lastIndex float64, sincLen int, mode ChunkMode) int {
	if mode == FixedInput {
		return chunkSize
	}
	avgRatio := 0.5*resampleRatio + 0.5*targetRatio
	return int(math.Ceil(lastIndex+float64(chunkSize)/avgRatio)) + sincLen
}

// calculateOutputSize returns how many output frames a call to
// ProcessIntoBuffer will produce, given the current cursor and ratio.
func calculateOutputSize(chunkSize int, resampleRatio, targetRatio, lastIndex float64, sincLen int, mode ChunkMode) int {
	if mode == FixedOutput {
		return chunkSize
	}
	avgRatio := 0.5*resampleRatio + 0.5*targetRatio
	return int(math.Floor((float64(chunkSize-sincLen-1) - lastIndex) * avgRatio))
}

// calculateMaxInputSize returns the largest number of input frames this
// instance could ever request across the full range of ratios it may ramp
// to, used to size the ring buffer once at construction.
func calculateMaxInputSize(chunkSize int, resampleRatioOriginal, maxRelativeRatio float64, sincLen int, mode ChunkMode) int {
	if mode == FixedInput {
		return chunkSize
	}
	return int(math.Ceil(float64(chunkSize)/resampleRatioOriginal*maxRelativeRatio)) + 2 + sincLen/2
}

// calculateMaxOutputSize returns the largest number of output frames this
// instance could ever produce across the full range of ratios it may ramp
// to, used to size caller-allocated output buffers.
func calculateMaxOutputSize(chunkSize int, resampleRatioOriginal, maxRelativeRatio float64, mode ChunkMode) int {
	if mode == FixedOutput {
		return chunkSize
	}
	return int(float64(chunkSize)*resampleRatioOriginal*maxRelativeRatio + 10.0)
}

// New builds an AsyncSincResampler with a freshly tabulated filter bank and
// a CPU-probed kernel back-end.
func New[T Sample](resampleRatio, maxRelativeRatio float64, params Parameters, chunkSize, nbrChannels int, mode ChunkMode) (*AsyncSincResampler[T], error) {
	if err := validateRatios(resampleRatio, maxRelativeRatio); err != nil {
		return nil, err
	}
	sincLen := roundSincLenUp8(params.SincLen)
	fCutoff := params.FCutoff
	if resampleRatio < 1.0 {
		fCutoff *= resampleRatio
	}
	bank := buildFilterBank[T](sincLen, params.OversamplingFactor, fCutoff, params.Window)
	kernel := newKernel[T](bank)
	return NewWithKernel[T](resampleRatio, maxRelativeRatio, params.Interpolation, kernel, chunkSize, nbrChannels, mode)
}

// NewWithKernel builds an AsyncSincResampler around a caller-supplied
// kernel, e.g. one backed by a cached filter bank loaded from disk.
func NewWithKernel[T Sample](resampleRatio, maxRelativeRatio float64, interpolation InterpolationType, kernel Kernel[T], chunkSize, nbrChannels int, mode ChunkMode) (*AsyncSincResampler[T], error) {
	if err := validateRatios(resampleRatio, maxRelativeRatio); err != nil {
		return nil, err
	}
	if chunkSize <= 0 {
		return nil, &ErrInvalidChunkSize{Max: chunkSize, Requested: chunkSize}
	}

	sincLen := kernel.Len()
	lastIndex := -float64(sincLen / 2)

	neededInputSize := calculateInputSize(chunkSize, resampleRatio, resampleRatio, lastIndex, sincLen, mode)
	neededOutputSize := calculateOutputSize(chunkSize, resampleRatio, resampleRatio, lastIndex, sincLen, mode)
	maxInputSize := calculateMaxInputSize(chunkSize, resampleRatio, maxRelativeRatio, sincLen, mode)

	bufferLen := maxInputSize + 2*sincLen
	buffer := make([][]T, nbrChannels)
	for c := range buffer {
		buffer[c] = make([]T, bufferLen)
	}

	mask := make([]bool, nbrChannels)
	for i := range mask {
		mask[i] = true
	}

	return &AsyncSincResampler[T]{
		nbrChannels:           nbrChannels,
		chunkSize:             chunkSize,
		maxChunkSize:          chunkSize,
		neededInputSize:       neededInputSize,
		neededOutputSize:      neededOutputSize,
		lastIndex:             lastIndex,
		resampleRatio:         resampleRatio,
		resampleRatioOriginal: resampleRatio,
		targetRatio:           resampleRatio,
		maxRelativeRatio:      maxRelativeRatio,
		kernel:                kernel,
		interpolation:         interpolation,
		buffer:                buffer,
		channelMask:           mask,
		mode:                  mode,
	}, nil
}

// validateBuffers checks waveIn, waveOut and mask against the resampler's
// current channel count and frame requirements without mutating any field.
// Validation always runs to completion before ProcessIntoBuffer writes
// anything, so a rejected call leaves the resampler state untouched.
func (r *AsyncSincResampler[T]) validateBuffers(waveIn, waveOut [][]T, mask []bool) error {
	if mask != nil && len(mask) != r.nbrChannels {
		return &ErrWrongNumberOfMaskChannels{Expected: r.nbrChannels, Actual: len(mask)}
	}
	if len(waveIn) != r.nbrChannels {
		return &ErrWrongNumberOfInputChannels{Expected: r.nbrChannels, Actual: len(waveIn)}
	}
	if len(waveOut) != r.nbrChannels {
		return &ErrWrongNumberOfOutputChannels{Expected: r.nbrChannels, Actual: len(waveOut)}
	}
	for c := 0; c < r.nbrChannels; c++ {
		active := mask == nil || mask[c]
		if !active {
			continue
		}
		if len(waveIn[c]) < r.neededInputSize {
			return &ErrInsufficientInputBufferSize{Channel: c, Expected: r.neededInputSize, Actual: len(waveIn[c])}
		}
		if len(waveOut[c]) < r.neededOutputSize {
			return &ErrInsufficientOutputBufferSize{Channel: c, Expected: r.neededOutputSize, Actual: len(waveOut[c])}
		}
	}
	return nil
}

// ProcessIntoBuffer consumes InputFramesNext frames from each active channel
// of waveIn and writes OutputFramesNext frames into each active channel of
// waveOut. mask may be nil, meaning every channel is active. It performs no
// heap allocation.
func (r *AsyncSincResampler[T]) ProcessIntoBuffer(waveIn, waveOut [][]T, mask []bool) (inFrames, outFrames int, err error) {
	if err := r.validateBuffers(waveIn, waveOut, mask); err != nil {
		return 0, 0, err
	}

	sincLen := r.kernel.Len()
	oversampling := r.kernel.NbrSincs()
	historyLen := 2 * sincLen

	for c := 0; c < r.nbrChannels; c++ {
		if mask != nil {
			r.channelMask[c] = mask[c]
		} else {
			r.channelMask[c] = true
		}
	}

	for c := 0; c < r.nbrChannels; c++ {
		buf := r.buffer[c]
		copy(buf[0:historyLen], buf[r.neededInputSize:r.neededInputSize+historyLen])
		if r.channelMask[c] {
			copy(buf[historyLen:historyLen+r.neededInputSize], waveIn[c][:r.neededInputSize])
		}
	}

	step := 1.0 / r.resampleRatio
	stepEnd := 1.0 / r.targetRatio
	var delta float64
	if r.neededOutputSize > 0 {
		delta = (stepEnd - step) / float64(r.neededOutputSize)
	}

	idx := r.lastIndex + float64(historyLen)
	curStep := step
	for n := 0; n < r.neededOutputSize; n++ {
		for c := 0; c < r.nbrChannels; c++ {
			if !r.channelMask[c] {
				continue
			}
			waveOut[c][n] = r.interpolateAt(r.buffer[c], idx, oversampling)
		}
		idx += curStep
		curStep += delta
	}

	r.lastIndex = idx - float64(historyLen) - float64(r.neededInputSize)
	r.resampleRatio = r.targetRatio
	r.updateLengths()

	return r.neededInputSize, r.neededOutputSize, nil
}

// interpolateAt reconstructs one sample at continuous position idx (in
// input-sample units, indexing into buffer, already shifted by historyLen
// so it points directly into the ring buffer) by locating the nearest
// polyphase taps and refining with the configured interpolation polynomial.
// Every tap locator is expressed as an offset from idx's integer part
// (spec §4.5); interpolateAt converts that offset into a base index a
// Kernel can dot-product directly.
func (r *AsyncSincResampler[T]) interpolateAt(buffer []T, idx float64, oversampling int) T {
	switch r.interpolation {
	case Nearest:
		tap, _ := nearestTaps1(idx, oversampling)
		return interpNearest(r.kernel.GetSincInterpolated(buffer, tapBase(tap), tap.subFilter))
	case Linear:
		taps, x := nearestTaps2(idx, oversampling)
		var y [2]T
		for i, t := range taps {
			y[i] = r.kernel.GetSincInterpolated(buffer, tapBase(t), t.subFilter)
		}
		return interpLinear(T(x), y)
	case Quadratic:
		taps, x := nearestTaps3(idx, oversampling)
		var y [3]T
		for i, t := range taps {
			y[i] = r.kernel.GetSincInterpolated(buffer, tapBase(t), t.subFilter)
		}
		return interpQuad(T(x), y)
	default:
		taps, x := nearestTaps4(idx, oversampling)
		var y [4]T
		for i, t := range taps {
			y[i] = r.kernel.GetSincInterpolated(buffer, tapBase(t), t.subFilter)
		}
		return interpCubic(T(x), y)
	}
}

// tapBase converts a nearestTap's sample offset into the base index a
// kernel expects. idx already carries the historyLen shift (spec §4.5:
// base = 2L + sample_offset), and sampleOffset is derived from that shifted
// idx, so no further adjustment is needed here.
func tapBase(tap nearestTap) int {
	return tap.sampleOffset
}

// updateLengths recomputes neededInputSize/neededOutputSize from the
// current cursor and ratio, in preparation for the next ProcessIntoBuffer
// call.
func (r *AsyncSincResampler[T]) updateLengths() {
	sincLen := r.kernel.Len()
	r.neededInputSize = calculateInputSize(r.chunkSize, r.resampleRatio, r.targetRatio, r.lastIndex, sincLen, r.mode)
	r.neededOutputSize = calculateOutputSize(r.chunkSize, r.resampleRatio, r.targetRatio, r.lastIndex, sincLen, r.mode)
}

// Process is a convenience wrapper over ProcessIntoBuffer that allocates and
// returns a fresh output buffer. Channels masked inactive receive an empty
// slice rather than a zero-filled one.
func (r *AsyncSincResampler[T]) Process(waveIn [][]T, mask []bool) ([][]T, error) {
	out := make([][]T, r.nbrChannels)
	for c := range out {
		active := mask == nil || mask[c]
		if active {
			out[c] = make([]T, r.neededOutputSize)
		} else {
			out[c] = []T{}
		}
	}
	_, _, err := r.ProcessIntoBuffer(waveIn, out, mask)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ProcessPartialIntoBuffer is like ProcessIntoBuffer but accepts a
// shorter-than-required (or nil) waveIn, zero-padding each active channel up
// to neededInputSize before processing. A nil waveIn flushes the resampler
// with silence, useful for draining trailing filter history at end of
// stream.
func (r *AsyncSincResampler[T]) ProcessPartialIntoBuffer(waveIn, waveOut [][]T, mask []bool) (int, int, error) {
	padded := make([][]T, r.nbrChannels)
	for c := 0; c < r.nbrChannels; c++ {
		active := mask == nil || mask[c]
		if !active {
			continue
		}
		row := make([]T, r.neededInputSize)
		if waveIn != nil && c < len(waveIn) {
			copy(row, waveIn[c])
		}
		padded[c] = row
	}
	return r.ProcessIntoBuffer(padded, waveOut, mask)
}

// SetResampleRatio changes the conversion ratio. If ramp is true the change
// is applied smoothly over the next processed chunk (targetRatio); if false
// it takes effect immediately for the next chunk with no transition.
func (r *AsyncSincResampler[T]) SetResampleRatio(newRatio float64, ramp bool) error {
	lo := r.resampleRatioOriginal / r.maxRelativeRatio
	hi := r.resampleRatioOriginal * r.maxRelativeRatio
	if newRatio < lo || newRatio > hi {
		return &ErrRatioOutOfBounds{Provided: newRatio, Original: r.resampleRatioOriginal, MaxRelativeRatio: r.maxRelativeRatio}
	}
	if !ramp {
		r.resampleRatio = newRatio
	}
	r.targetRatio = newRatio
	r.updateLengths()
	return nil
}

// SetResampleRatioRelative changes the ratio to rel * original-ratio; see
// SetResampleRatio.
func (r *AsyncSincResampler[T]) SetResampleRatioRelative(rel float64, ramp bool) error {
	return r.SetResampleRatio(r.resampleRatioOriginal*rel, ramp)
}

// SetChunkSize changes the fixed side's chunk size (input frames in
// FixedInput mode, output frames in FixedOutput mode). It cannot exceed the
// maximum chunk size fixed at construction.
func (r *AsyncSincResampler[T]) SetChunkSize(n int) error {
	if n <= 0 || n > r.maxChunkSize {
		return &ErrInvalidChunkSize{Max: r.maxChunkSize, Requested: n}
	}
	r.chunkSize = n
	r.updateLengths()
	return nil
}

// Reset clears all buffered history and the ratio ramp, returning the
// instance to its just-constructed state. The original ratio is preserved.
func (r *AsyncSincResampler[T]) Reset() {
	sincLen := r.kernel.Len()
	r.lastIndex = -float64(sincLen / 2)
	r.resampleRatio = r.resampleRatioOriginal
	r.targetRatio = r.resampleRatioOriginal
	r.chunkSize = r.maxChunkSize
	for c := range r.buffer {
		for i := range r.buffer[c] {
			r.buffer[c][i] = 0
		}
	}
	for i := range r.channelMask {
		r.channelMask[i] = true
	}
	r.updateLengths()
}

// ResampleRatio returns the ratio currently in effect (the start of any
// in-progress ramp).
func (r *AsyncSincResampler[T]) ResampleRatio() float64 { return r.resampleRatio }

// TargetRatio returns the ratio the next chunk ramps toward; equal to
// ResampleRatio when no ramp is in progress.
func (r *AsyncSincResampler[T]) TargetRatio() float64 { return r.targetRatio }

// Mode returns the chunk-size fixing mode fixed at construction.
func (r *AsyncSincResampler[T]) Mode() ChunkMode { return r.mode }

// Interpolation returns the configured inter-tap interpolation scheme.
func (r *AsyncSincResampler[T]) Interpolation() InterpolationType { return r.interpolation }

// LastIndex returns the current fractional cursor position, relative to the
// start of the next chunk to be ingested (negative values point back into
// the retained history).
func (r *AsyncSincResampler[T]) LastIndex() float64 { return r.lastIndex }

// BufferFillFraction returns how full the per-channel ring buffer's
// processed region is, in [0, 1], purely as a diagnostic for monitoring
// tools; it has no bearing on correctness.
func (r *AsyncSincResampler[T]) BufferFillFraction() float64 {
	if len(r.buffer) == 0 || len(r.buffer[0]) == 0 {
		return 0
	}
	return float64(r.neededInputSize) / float64(len(r.buffer[0]))
}

// InputFramesNext returns how many input frames the next ProcessIntoBuffer
// call will consume per channel.
func (r *AsyncSincResampler[T]) InputFramesNext() int { return r.neededInputSize }

// OutputFramesNext returns how many output frames the next
// ProcessIntoBuffer call will produce per channel. In FixedInput mode this
// is an estimate that may shift slightly as the ratio ramps, not a binding
// commitment until the call is made.
func (r *AsyncSincResampler[T]) OutputFramesNext() int { return r.neededOutputSize }

// InputFramesMax returns the largest InputFramesNext can ever be, across the
// full range of ratios this instance may ramp to.
func (r *AsyncSincResampler[T]) InputFramesMax() int {
	return calculateMaxInputSize(r.chunkSize, r.resampleRatioOriginal, r.maxRelativeRatio, r.kernel.Len(), r.mode)
}

// OutputFramesMax returns the largest OutputFramesNext can ever be, across
// the full range of ratios this instance may ramp to.
func (r *AsyncSincResampler[T]) OutputFramesMax() int {
	return calculateMaxOutputSize(r.chunkSize, r.resampleRatioOriginal, r.maxRelativeRatio, r.mode)
}

// NbrChannels returns the channel count fixed at construction.
func (r *AsyncSincResampler[T]) NbrChannels() int { return r.nbrChannels }

// OutputDelay returns the filter's group delay in output samples.
func (r *AsyncSincResampler[T]) OutputDelay() int {
	return int(float64(r.kernel.Len()) * r.resampleRatio / 2.0)
}

// InputBufferAllocate returns a per-channel buffer sized to InputFramesMax,
// zero-filled if filled is true or zero-length-with-capacity otherwise.
func (r *AsyncSincResampler[T]) InputBufferAllocate(filled bool) [][]T {
	n := r.InputFramesMax()
	buf := make([][]T, r.nbrChannels)
	for c := range buf {
		if filled {
			buf[c] = make([]T, n)
		} else {
			buf[c] = make([]T, 0, n)
		}
	}
	return buf
}

// OutputBufferAllocate returns a per-channel buffer sized to
// OutputFramesMax, zero-filled if filled is true or zero-length-with-capacity
// otherwise.
func (r *AsyncSincResampler[T]) OutputBufferAllocate(filled bool) [][]T {
	n := r.OutputFramesMax()
	buf := make([][]T, r.nbrChannels)
	for c := range buf {
		if filled {
			buf[c] = make([]T, n)
		} else {
			buf[c] = make([]T, 0, n)
		}
	}
	return buf
}
