package binary

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
)

// bytesReaderAt wraps a byte slice to implement io.ReaderAt.
type bytesReaderAt []byte

func (b bytesReaderAt) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(b)) {
		return 0, nil
	}
	n := copy(p, b[off:])
	return n, nil
}

func TestReaderReadUint16(t *testing.T) {
	// Little-endian: 0x0102 stored as [0x02, 0x01]
	data := bytesReaderAt{0x02, 0x01, 0xFF, 0xFF}
	r := NewReader(data, DefaultConfig())

	v, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0x0102 {
		t.Errorf("expected 0x0102, got 0x%04x", v)
	}

	v, err = r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if v != 0xFFFF {
		t.Errorf("expected 0xFFFF, got 0x%04x", v)
	}
}

func TestReaderReadUint32(t *testing.T) {
	var buf bytes.Buffer
	binary.Write(&buf, binary.LittleEndian, uint32(0x12345678))
	binary.Write(&buf, binary.LittleEndian, uint32(0xDEADBEEF))

	r := NewReader(bytesReaderAt(buf.Bytes()), DefaultConfig())

	v, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0x12345678 {
		t.Errorf("expected 0x12345678, got 0x%08x", v)
	}

	v, err = r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if v != 0xDEADBEEF {
		t.Errorf("expected 0xDEADBEEF, got 0x%08x", v)
	}
}

func TestReaderBigEndian(t *testing.T) {
	data := bytesReaderAt{0x00, 0x2A, 0x00, 0x00, 0x00, 0x08}
	r := NewReader(data, Config{ByteOrder: binary.BigEndian})

	if r.ByteOrder() != binary.BigEndian {
		t.Fatalf("expected big-endian reader, got %v", r.ByteOrder())
	}
	magic, err := r.ReadUint16()
	if err != nil {
		t.Fatalf("ReadUint16 failed: %v", err)
	}
	if magic != 42 {
		t.Errorf("expected 42, got %d", magic)
	}

	off, err := r.ReadUint32()
	if err != nil {
		t.Fatalf("ReadUint32 failed: %v", err)
	}
	if off != 8 {
		t.Errorf("expected 8, got %d", off)
	}
}

func TestReaderShortRead(t *testing.T) {
	tests := []struct {
		name string
		read func(r *Reader) error
	}{
		{"uint16 past end", func(r *Reader) error { _, err := r.At(3).ReadUint16(); return err }},
		{"uint32 past end", func(r *Reader) error { _, err := r.At(1).ReadUint32(); return err }},
		{"bytes past end", func(r *Reader) error { _, err := r.ReadBytes(5); return err }},
		{"read at past end", func(r *Reader) error { _, err := r.ReadAt(100, 1); return err }},
		{"negative offset", func(r *Reader) error { _, err := r.ReadAt(-1, 1); return err }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewReader(bytesReaderAt{1, 2, 3, 4}, DefaultConfig())
			err := tt.read(r)
			if !errors.Is(err, errs.ErrTruncatedFile) {
				t.Errorf("expected ErrTruncatedFile, got %v", err)
			}
		})
	}
}

func TestReaderReadAtKeepsPosition(t *testing.T) {
	r := NewReader(bytesReaderAt{0, 1, 2, 3, 4, 5}, DefaultConfig()).At(1)

	got, err := r.ReadAt(4, 2)
	if err != nil {
		t.Fatalf("ReadAt failed: %v", err)
	}
	if !bytes.Equal(got, []byte{4, 5}) {
		t.Errorf("expected [4 5], got %v", got)
	}

	// The cursor still reads from offset 1.
	next, err := r.ReadBytes(2)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if !bytes.Equal(next, []byte{1, 2}) {
		t.Errorf("ReadAt moved the cursor: read %v", next)
	}
}

func TestReaderAt(t *testing.T) {
	data := bytesReaderAt{0x00, 0x01, 0x02, 0x03, 0x04, 0x05}
	r := NewReader(data, DefaultConfig())

	// Read from offset 3
	got, err := r.At(3).ReadBytes(1)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if got[0] != 0x03 {
		t.Errorf("expected 0x03, got 0x%02x", got[0])
	}

	// Original reader should be unaffected
	got, err = r.ReadBytes(1)
	if err != nil {
		t.Fatalf("ReadBytes failed: %v", err)
	}
	if got[0] != 0x00 {
		t.Errorf("expected 0x00, got 0x%02x", got[0])
	}
}

func TestReaderZeroLength(t *testing.T) {
	r := NewReader(bytesReaderAt{}, DefaultConfig())

	if got, err := r.ReadBytes(0); err != nil || got != nil {
		t.Errorf("ReadBytes(0): got %v, %v", got, err)
	}
	if got, err := r.ReadAt(10, 0); err != nil || got != nil {
		t.Errorf("ReadAt(10, 0): got %v, %v", got, err)
	}
}
