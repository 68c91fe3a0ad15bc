package bankcache

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"math"

	"sincresample/pkg/f16"
)

// Writer writes bank cache files.
type Writer struct {
	w          io.WriteSeeker
	count      uint32
	offsets    []uint64
	keys       []Key
	currentPos uint64
}

// NewWriter creates a new Writer that writes to w. w must support seeking so
// the trailing index offset can be patched into the header after the last
// bank is written.
func NewWriter(w io.WriteSeeker) *Writer {
	return &Writer{w: w}
}

// WriteHeader writes the file header. Must be called before WriteBank.
func (w *Writer) WriteHeader(bankCount int) error {
	w.count = uint32(bankCount)

	if _, err := w.w.Write([]byte(MagicNumber)); err != nil {
		return fmt.Errorf("bankcache: write magic: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, CurrentVersion); err != nil {
		return fmt.Errorf("bankcache: write version: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, w.count); err != nil {
		return fmt.Errorf("bankcache: write entry count: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(0)); err != nil { // index offset placeholder
		return fmt.Errorf("bankcache: write index offset placeholder: %w", err)
	}

	w.currentPos = FileHeaderSize
	return nil
}

// WriteBank appends one bank entry. Must be called after WriteHeader and
// before Close.
func (w *Writer) WriteBank(bank *Bank) error {
	w.offsets = append(w.offsets, w.currentPos)
	w.keys = append(w.keys, bank.Key)

	payload := w.buildBankPayload(bank)
	chunkSize := uint64(len(payload))

	if _, err := w.w.Write([]byte(ChunkTypeBank)); err != nil {
		return fmt.Errorf("bankcache: write bank chunk header: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, chunkSize); err != nil {
		return fmt.Errorf("bankcache: write bank chunk size: %w", err)
	}
	if _, err := w.w.Write(payload); err != nil {
		return fmt.Errorf("bankcache: write bank payload: %w", err)
	}

	w.currentPos += ChunkHeaderSize + chunkSize
	return nil
}

// Close finalizes the file by writing the index chunk and patching the
// header's index offset.
func (w *Writer) Close() error {
	indexOffset := w.currentPos
	indexData := w.buildIndexChunk()

	if _, err := w.w.Write([]byte(ChunkTypeIndex)); err != nil {
		return fmt.Errorf("bankcache: write index chunk header: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, uint64(len(indexData))); err != nil {
		return fmt.Errorf("bankcache: write index chunk size: %w", err)
	}
	if _, err := w.w.Write(indexData); err != nil {
		return fmt.Errorf("bankcache: write index data: %w", err)
	}

	if _, err := w.w.Seek(10, io.SeekStart); err != nil { // offset of the index_offset field
		return fmt.Errorf("bankcache: seek to index offset field: %w", err)
	}
	if err := binary.Write(w.w, binary.LittleEndian, indexOffset); err != nil {
		return fmt.Errorf("bankcache: write index offset: %w", err)
	}
	return nil
}

func (w *Writer) buildBankPayload(bank *Bank) []byte {
	f16Data := f16.Float32ToF16(bank.Taps)

	if stats := f16.AnalyzeConversionError(bank.Taps); stats.SNR < minAcceptableSNR {
		slog.Warn("bankcache: f16 quantization SNR below threshold",
			"sincLen", bank.Key.SincLen, "oversampling", bank.Key.OversamplingFactor,
			"snr", stats.SNR, "maxAbsError", stats.MaxAbsError)
	}

	buf := make([]byte, keySize+len(f16Data))
	putKey(buf, bank.Key)
	copy(buf[keySize:], f16Data)
	return buf
}

// minAcceptableSNR is the quantization signal-to-noise ratio, in dB, below
// which an f16-encoded bank is considered too lossy to trust for playback
// quality resampling.
const minAcceptableSNR = 60

func (w *Writer) buildIndexChunk() []byte {
	buf := make([]byte, len(w.keys)*(8+keySize))
	offset := 0
	for i, key := range w.keys {
		binary.LittleEndian.PutUint64(buf[offset:], w.offsets[i])
		offset += 8
		putKey(buf[offset:], key)
		offset += keySize
	}
	return buf
}

// keySize is the fixed on-disk size of a Key: SincLen(4) + OversamplingFactor(4) + FCutoff(8) + Window(1).
const keySize = 4 + 4 + 8 + 1

func putKey(buf []byte, k Key) {
	binary.LittleEndian.PutUint32(buf[0:], uint32(k.SincLen))
	binary.LittleEndian.PutUint32(buf[4:], uint32(k.OversamplingFactor))
	binary.LittleEndian.PutUint64(buf[8:], math.Float64bits(k.FCutoff))
	buf[16] = k.Window
}

func getKey(buf []byte) Key {
	return Key{
		SincLen:            int(binary.LittleEndian.Uint32(buf[0:])),
		OversamplingFactor: int(binary.LittleEndian.Uint32(buf[4:])),
		FCutoff:            math.Float64frombits(binary.LittleEndian.Uint64(buf[8:])),
		Window:             buf[16],
	}
}
