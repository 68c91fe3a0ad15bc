package bankcache

import (
	"encoding/binary"
	"fmt"
	"io"

	"sincresample/pkg/f16"
)

// Reader reads bank cache files.
type Reader struct {
	r           io.ReadSeeker
	version     uint16
	count       uint32
	indexOffset uint64
	index       []IndexEntry
}

// NewReader creates a new Reader and parses the file header and index.
func NewReader(r io.ReadSeeker) (*Reader, error) {
	reader := &Reader{r: r}
	if err := reader.readHeader(); err != nil {
		return nil, err
	}
	if err := reader.readIndex(); err != nil {
		return nil, err
	}
	return reader, nil
}

func (r *Reader) readHeader() error {
	magic := make([]byte, 4)
	if _, err := io.ReadFull(r.r, magic); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(magic) != MagicNumber {
		return ErrInvalidMagic
	}
	if err := binary.Read(r.r, binary.LittleEndian, &r.version); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if r.version != CurrentVersion {
		return fmt.Errorf("%w: got version %d, expected %d", ErrUnsupportedVersion, r.version, CurrentVersion)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &r.count); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if err := binary.Read(r.r, binary.LittleEndian, &r.indexOffset); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	return nil
}

func (r *Reader) readIndex() error {
	if _, err := r.r.Seek(int64(r.indexOffset), io.SeekStart); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeIndex {
		return fmt.Errorf("%w: expected index chunk, got %q", ErrInvalidChunk, string(chunkID))
	}
	var chunkSize uint64
	if err := binary.Read(r.r, binary.LittleEndian, &chunkSize); err != nil {
		return fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	entry := make([]byte, 8+keySize)
	r.index = make([]IndexEntry, 0, r.count)
	for range r.count {
		if _, err := io.ReadFull(r.r, entry); err != nil {
			return fmt.Errorf("%w: %w", ErrCorruptedData, err)
		}
		r.index = append(r.index, IndexEntry{
			Offset: binary.LittleEndian.Uint64(entry[0:]),
			Key:    getKey(entry[8:]),
		})
	}
	return nil
}

// Version returns the format version of the cache file.
func (r *Reader) Version() uint16 { return r.version }

// Count returns the number of cached banks.
func (r *Reader) Count() int { return int(r.count) }

// Keys returns the key of every cached bank, without decoding tap data.
func (r *Reader) Keys() []Key {
	keys := make([]Key, len(r.index))
	for i, e := range r.index {
		keys[i] = e.Key
	}
	return keys
}

// Load decodes the bank at the given index.
func (r *Reader) Load(index int) (*Bank, error) {
	if index < 0 || index >= len(r.index) {
		return nil, ErrInvalidIndex
	}
	entry := r.index[index]
	if _, err := r.r.Seek(int64(entry.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	return r.readBankChunk()
}

// LoadByKey decodes the cached bank matching key exactly, or ErrBankNotFound.
func (r *Reader) LoadByKey(key Key) (*Bank, error) {
	for i, e := range r.index {
		if e.Key == key {
			return r.Load(i)
		}
	}
	return nil, ErrBankNotFound
}

func (r *Reader) readBankChunk() (*Bank, error) {
	chunkID := make([]byte, 4)
	if _, err := io.ReadFull(r.r, chunkID); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if string(chunkID) != ChunkTypeBank {
		return nil, fmt.Errorf("%w: expected bank chunk, got %q", ErrInvalidChunk, string(chunkID))
	}
	var chunkSize uint64
	if err := binary.Read(r.r, binary.LittleEndian, &chunkSize); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}

	payload := make([]byte, chunkSize)
	if _, err := io.ReadFull(r.r, payload); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptedData, err)
	}
	if len(payload) < keySize {
		return nil, fmt.Errorf("%w: bank payload shorter than key", ErrCorruptedData)
	}

	key := getKey(payload)
	taps := f16.F16ToFloat32(payload[keySize:])
	return &Bank{Key: key, Taps: taps}, nil
}

// Close closes the reader. Currently a no-op but provided for interface
// consistency with other readers in this module.
func (r *Reader) Close() error { return nil }
