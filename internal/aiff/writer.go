package aiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Write encodes data as a 16-bit PCM AIFF file at sampleRate and writes it to
// w. data is organized as [channel][sample]; all channels must be the same
// length.
func Write(w io.Writer, data [][]float32, sampleRate float64) error {
	numChannels := len(data)
	if numChannels == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidFile)
	}
	numSamples := len(data[0])
	for ch, samples := range data {
		if len(samples) != numSamples {
			return fmt.Errorf("%w: channel %d has %d samples, want %d", ErrInvalidFile, ch, len(samples), numSamples)
		}
	}

	const bitsPerSample = 16
	bytesPerSample := bitsPerSample / 8
	ssndDataSize := numSamples * numChannels * bytesPerSample
	commSize := 18
	ssndSize := 8 + ssndDataSize
	formSize := 4 + (8 + commSize) + (8 + ssndSize)

	if err := writeChunkHeader(w, "FORM", uint32(formSize)); err != nil { //nolint:gosec // formSize bounded by caller-provided buffers
		return err
	}
	if _, err := w.Write([]byte("AIFF")); err != nil {
		return err
	}

	if err := writeCOMM(w, numChannels, numSamples, bitsPerSample, sampleRate); err != nil {
		return err
	}

	if err := writeSSND(w, data, bitsPerSample); err != nil {
		return err
	}

	return nil
}

func writeChunkHeader(w io.Writer, id string, size uint32) error {
	var header [8]byte
	copy(header[0:4], id)
	binary.BigEndian.PutUint32(header[4:8], size)
	_, err := w.Write(header[:])
	return err
}

func writeCOMM(w io.Writer, numChannels, numSamples, bitsPerSample int, sampleRate float64) error {
	if err := writeChunkHeader(w, "COMM", 18); err != nil {
		return err
	}
	var body [18]byte
	binary.BigEndian.PutUint16(body[0:2], uint16(numChannels)) //nolint:gosec // validated by Write's caller contract
	binary.BigEndian.PutUint32(body[2:6], uint32(numSamples))  //nolint:gosec // validated by Write's caller contract
	binary.BigEndian.PutUint16(body[6:8], uint16(bitsPerSample))
	copy(body[8:18], float64ToExtended(sampleRate))
	_, err := w.Write(body[:])
	return err
}

func writeSSND(w io.Writer, data [][]float32, bitsPerSample int) error {
	numChannels := len(data)
	numSamples := 0
	if numChannels > 0 {
		numSamples = len(data[0])
	}
	bytesPerSample := bitsPerSample / 8
	dataSize := numSamples * numChannels * bytesPerSample

	if err := writeChunkHeader(w, "SSND", uint32(8+dataSize)); err != nil { //nolint:gosec // dataSize bounded by caller-provided buffers
		return err
	}

	var offsetBlock [8]byte // offset=0, blockSize=0
	if _, err := w.Write(offsetBlock[:]); err != nil {
		return err
	}

	frame := make([]byte, numChannels*bytesPerSample)
	for i := range numSamples {
		for ch := range numChannels {
			s := data[ch][i]
			if s > 1.0 {
				s = 1.0
			}
			if s < -1.0 {
				s = -1.0
			}
			v := int16(s * 32767)
			binary.BigEndian.PutUint16(frame[ch*bytesPerSample:], uint16(v))
		}
		if _, err := w.Write(frame); err != nil {
			return err
		}
	}

	if dataSize%2 != 0 {
		if _, err := w.Write([]byte{0}); err != nil {
			return err
		}
	}

	return nil
}

// float64ToExtended converts a float64 to an 80-bit IEEE 754 extended
// precision value, the format AIFF uses for its sample rate field.
func float64ToExtended(f float64) []byte {
	buf := make([]byte, 10)
	if f == 0 {
		return buf
	}

	sign := uint16(0)
	if f < 0 {
		sign = 1 << 15
		f = -f
	}

	frac, exp := math.Frexp(f)
	// frexp gives frac in [0.5, 1); extended precision wants the leading bit
	// explicit and an exponent biased by 16383 relative to a leading "1.".
	mantissa := uint64(frac * (1 << 64))
	exponent := uint16(exp-1+16383) | sign

	binary.BigEndian.PutUint16(buf[0:2], exponent)
	binary.BigEndian.PutUint64(buf[2:10], mantissa)
	return buf
}
