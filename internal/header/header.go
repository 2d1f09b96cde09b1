package header

import (
	"encoding/binary"
	"fmt"
	"io"

	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"golang.org/x/sys/cpu"
)

// Size is the encoded size of a TIFF header in bytes.
const Size = 8

// Magic is the TIFF version number stored after the byte order mark.
const Magic = 42

// Byte order marks
const (
	LittleEndianMark = "II"
	BigEndianMark    = "MM"
)

// FirstIFDField is the file offset of the first-IFD pointer.
const FirstIFDField = 4

// Header contains the fields of a TIFF file header.
type Header struct {
	// ByteOrder is the byte order of every multi-byte field in the file.
	ByteOrder binary.ByteOrder

	// FirstIFD is the absolute offset of the first Image File Directory.
	FirstIFD uint32
}

// HostByteOrder returns the native byte order of the running machine.
func HostByteOrder() binary.ByteOrder {
	if cpu.IsBigEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

// Mark returns the two-byte order mark for order.
func Mark(order binary.ByteOrder) string {
	if order == binary.BigEndian {
		return BigEndianMark
	}
	return LittleEndianMark
}

// Read parses the header at the start of r. size is the total file size and
// bounds the first IFD offset.
func Read(r io.ReaderAt, size int64) (*Header, error) {
	if size < Size {
		return nil, fmt.Errorf("%w: %d bytes is shorter than a header", errs.ErrTruncatedFile, size)
	}

	buf, err := binpkg.NewReader(r, binpkg.DefaultConfig()).ReadBytes(Size)
	if err != nil {
		return nil, err
	}

	h := &Header{}
	switch string(buf[0:2]) {
	case LittleEndianMark:
		h.ByteOrder = binary.LittleEndian
	case BigEndianMark:
		h.ByteOrder = binary.BigEndian
	default:
		return nil, fmt.Errorf("%w: %q", errs.ErrBadByteOrderMark, buf[0:2])
	}

	if magic := h.ByteOrder.Uint16(buf[2:4]); magic != Magic {
		return nil, fmt.Errorf("%w: %d", errs.ErrBadMagic, magic)
	}

	h.FirstIFD = h.ByteOrder.Uint32(buf[4:8])
	if h.FirstIFD == 0 || int64(h.FirstIFD) >= size {
		return nil, fmt.Errorf("%w: first IFD offset %d outside file of %d bytes", errs.ErrTruncatedFile, h.FirstIFD, size)
	}

	return h, nil
}

// ReaderConfig returns a binary.Config for creating readers based on this header.
func (h *Header) ReaderConfig() binpkg.Config {
	return binpkg.Config{
		ByteOrder: h.ByteOrder,
	}
}

// Write writes the header at the current writer position.
// The writer must use the same byte order as the header.
// Returns the total bytes written.
func (h *Header) Write(w *binpkg.Writer) (int64, error) {
	startPos := w.Pos()

	if err := w.WriteBytes([]byte(Mark(h.ByteOrder))); err != nil {
		return 0, err
	}
	if err := w.WriteUint16(Magic); err != nil {
		return 0, err
	}
	if err := w.WriteUint32(h.FirstIFD); err != nil {
		return 0, err
	}

	return w.Pos() - startPos, nil
}

// New creates a header in the given byte order whose first IFD immediately
// follows the header.
func New(order binary.ByteOrder) *Header {
	if order == nil {
		order = HostByteOrder()
	}
	return &Header{
		ByteOrder: order,
		FirstIFD:  Size,
	}
}
