// Package binary provides low-level binary I/O operations for TIFF file parsing.
package binary

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
)

// Reader provides methods for reading TIFF binary data in the byte order
// declared by the file header.
type Reader struct {
	r     io.ReaderAt
	order binary.ByteOrder
	pos   int64
}

// Config holds reader and writer configuration, typically derived from the header.
type Config struct {
	ByteOrder binary.ByteOrder
}

// DefaultConfig returns a configuration suitable for initial header reading.
// Uses little-endian byte order.
func DefaultConfig() Config {
	return Config{
		ByteOrder: binary.LittleEndian,
	}
}

// NewReader creates a binary reader with the given configuration.
func NewReader(r io.ReaderAt, cfg Config) *Reader {
	return &Reader{
		r:     r,
		order: cfg.ByteOrder,
		pos:   0,
	}
}

// At returns a new reader positioned at the given offset.
// The new reader shares the underlying io.ReaderAt but has independent position.
func (r *Reader) At(offset int64) *Reader {
	return &Reader{
		r:     r.r,
		order: r.order,
		pos:   offset,
	}
}

// ReadBytes reads exactly n bytes from the current position.
// A short read is reported as errs.ErrTruncatedFile.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.readFull(buf, r.pos); err != nil {
		return nil, err
	}
	r.pos += int64(n)
	return buf, nil
}

// ReadAt reads exactly n bytes at the absolute offset without touching the
// reader position. Out-of-line IFD payloads and strips are resolved this way.
func (r *Reader) ReadAt(offset int64, n int) ([]byte, error) {
	if n <= 0 {
		return nil, nil
	}
	buf := make([]byte, n)
	if err := r.readFull(buf, offset); err != nil {
		return nil, err
	}
	return buf, nil
}

func (r *Reader) readFull(buf []byte, offset int64) error {
	if offset < 0 {
		return fmt.Errorf("%w: negative offset %d", errs.ErrTruncatedFile, offset)
	}
	n, err := r.r.ReadAt(buf, offset)
	if n == len(buf) {
		return nil
	}
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("%w: want %d bytes at offset %d, got %d", errs.ErrTruncatedFile, len(buf), offset, n)
	}
	return errs.IO("read", err)
}

// ReadUint16 reads an unsigned 16-bit integer.
func (r *Reader) ReadUint16() (uint16, error) {
	buf, err := r.ReadBytes(2)
	if err != nil {
		return 0, err
	}
	return r.order.Uint16(buf), nil
}

// ReadUint32 reads an unsigned 32-bit integer.
func (r *Reader) ReadUint32() (uint32, error) {
	buf, err := r.ReadBytes(4)
	if err != nil {
		return 0, err
	}
	return r.order.Uint32(buf), nil
}

// ByteOrder returns the configured byte order.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.order
}
