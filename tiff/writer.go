package tiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/robert-malhotra/go-tinytiff/internal/alloc"
	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/header"
	"github.com/robert-malhotra/go-tinytiff/internal/ifd"
	"github.com/robert-malhotra/go-tinytiff/internal/strip"
)

// Writer is a write session producing a single-sample, uncompressed TIFF
// with one strip per frame. Every frame has the same size and bit depth.
//
// The header and a placeholder first IFD are written when the session is
// created. The first IFD reserves a fixed ImageDescription field, which
// Close fills in.
//
// A Writer must not be used from multiple goroutines at once.
type Writer struct {
	path   string
	dst    io.WriterAt
	closer io.Closer
	writer *binpkg.Writer
	alloc  *alloc.Allocator
	logger *slog.Logger

	order        binary.ByteOrder
	width        int
	height       int
	bits         int
	descCapacity int
	truncateDesc bool

	firstIFDSize int64
	descField    int64 // offset of the reserved description bytes
	lastNext     int64 // offset of the last frame's next-IFD pointer
	frames       int
	closed       bool
}

// Create creates the file at path and writes the header and a placeholder
// first IFD for frames of width×height samples of bitsPerSample bits.
// bitsPerSample must be 8, 16, 32 or 64.
func Create(path string, bitsPerSample, width, height int, opts ...Option) (*Writer, error) {
	if err := checkGeometry(bitsPerSample, width, height); err != nil {
		return nil, err
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, errs.IO("creating file", err)
	}

	w, err := newWriter(f, bitsPerSample, width, height, applyOptions(opts))
	if err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	w.path = path
	w.closer = f
	return w, nil
}

// NewWriter writes a TIFF to ws. ws is addressed by offset; if it does not
// implement io.WriterAt each write seeks first. Closing the returned Writer
// does not close ws.
func NewWriter(ws io.WriteSeeker, bitsPerSample, width, height int, opts ...Option) (*Writer, error) {
	if err := checkGeometry(bitsPerSample, width, height); err != nil {
		return nil, err
	}

	dst, ok := ws.(io.WriterAt)
	if !ok {
		dst = binpkg.NewSeekableWriterAt(ws)
	}
	return newWriter(dst, bitsPerSample, width, height, applyOptions(opts))
}

func checkGeometry(bits, width, height int) error {
	switch bits {
	case 8, 16, 32, 64:
	default:
		return fmt.Errorf("%w: %d bits per sample", ErrUnsupportedBitDepth, bits)
	}
	if width <= 0 || height <= 0 {
		return fmt.Errorf("tiff: invalid image size %dx%d", width, height)
	}
	if int64(width) > alloc.MaxOffset || int64(height) > alloc.MaxOffset ||
		uint64(width)*uint64(height) > alloc.MaxOffset/uint64(bits/8) {
		return fmt.Errorf("%w: %dx%d image of %d-bit samples", ErrFileTooLarge, width, height, bits)
	}
	return nil
}

func newWriter(dst io.WriterAt, bits, width, height int, o *options) (*Writer, error) {
	order := o.order
	if order == nil {
		order = header.HostByteOrder()
	}

	w := &Writer{
		dst:          dst,
		writer:       binpkg.NewWriter(dst, binpkg.Config{ByteOrder: order}),
		logger:       o.logger,
		order:        order,
		width:        width,
		height:       height,
		bits:         bits,
		descCapacity: o.descCapacity,
		truncateDesc: o.truncateDesc,
	}

	h := header.New(order)
	if _, err := h.Write(w.writer.At(0)); err != nil {
		return nil, errs.IO("writing header", err)
	}

	// Placeholder first IFD with an empty strip. It is rewritten in place
	// by the first frame, so its size must not depend on the frame.
	stub := w.directory(int64(h.FirstIFD), 0, 0, strip.Uint, true)
	n, err := stub.Write(w.writer)
	if err != nil {
		return nil, errs.IO("writing first IFD", err)
	}
	w.firstIFDSize = n
	w.descField, _ = stub.PayloadOffset(ifd.ImageDescription)
	w.lastNext = stub.NextField()
	w.alloc = alloc.New(stub.Offset + n)

	w.logger.Debug("created tiff",
		"byteOrder", header.Mark(order),
		"width", width,
		"height", height,
		"bitsPerSample", bits,
		"descriptionField", w.descField)
	return w, nil
}

// directory builds the IFD of one frame. Only the first frame carries the
// reserved ImageDescription.
func (w *Writer) directory(offset, stripOffset, stripBytes int64, format strip.Format, description bool) *ifd.Directory {
	d := ifd.New(w.order)
	d.Offset = offset
	d.SetLongs(ifd.ImageWidth, uint32(w.width))
	d.SetLongs(ifd.ImageLength, uint32(w.height))
	d.SetShorts(ifd.BitsPerSample, uint16(w.bits))
	d.SetShorts(ifd.Compression, ifd.CompressionNone)
	d.SetShorts(ifd.PhotometricInterpretation, ifd.PhotometricBlackIsZero)
	if description {
		// Capacity is at least 5, so the field is always out-of-line.
		_ = d.SetASCII(ifd.ImageDescription, "", w.descCapacity)
	}
	d.SetLongs(ifd.StripOffsets, uint32(stripOffset))
	d.SetShorts(ifd.SamplesPerPixel, 1)
	d.SetLongs(ifd.RowsPerStrip, uint32(w.height))
	d.SetLongs(ifd.StripByteCounts, uint32(stripBytes))
	d.SetShorts(ifd.PlanarConfiguration, ifd.PlanarChunky)
	d.SetShorts(ifd.SampleFormat, uint16(format))
	return d
}

// Path returns the path given to Create, or "" for a NewWriter session.
func (w *Writer) Path() string {
	return w.path
}

// ByteOrder returns the byte order of the file being written.
func (w *Writer) ByteOrder() binary.ByteOrder {
	return w.order
}

// Frames returns the number of frames written so far.
func (w *Writer) Frames() int {
	return w.frames
}

// MaxDescriptionTextSize returns the longest description Close accepts
// without truncation.
func (w *Writer) MaxDescriptionTextSize() int {
	return w.descCapacity - 1
}

// WriteImageVoid appends a frame of unsigned or signed integer samples.
// buf must be a slice of width×height elements of bitsPerSample/8 bytes;
// unsigned types are stored with SampleFormat 1 and signed types with 2.
func (w *Writer) WriteImageVoid(buf any) error {
	format, _, _, err := strip.Describe(buf)
	if err != nil {
		return err
	}
	if format == strip.Float {
		return fmt.Errorf("%w: %T holds floating point samples", ErrUnsupportedType, buf)
	}
	return w.writeImage(buf, format)
}

// WriteImageFloat appends a frame of 32-bit floating point samples.
func (w *Writer) WriteImageFloat(buf []float32) error {
	return w.writeImage(buf, strip.Float)
}

// WriteImageDouble appends a frame of 64-bit floating point samples.
func (w *Writer) WriteImageDouble(buf []float64) error {
	return w.writeImage(buf, strip.Float)
}

// writeImage appends one frame: the strip at the end of the file, then its
// IFD, then the link from the previous frame. A failure may leave the
// bytes written so far in place.
func (w *Writer) writeImage(buf any, format strip.Format) error {
	if w.closed {
		return ErrClosed
	}

	_, size, n, err := strip.Describe(buf)
	if err != nil {
		return err
	}
	if size*8 != w.bits {
		return fmt.Errorf("%w: %d-byte elements for %d bits per sample", ErrSampleSizeMismatch, size, w.bits)
	}
	if n != w.width*w.height {
		return fmt.Errorf("%w: %d elements for a %dx%d frame", ErrBufferSizeMismatch, n, w.width, w.height)
	}

	data, err := strip.Encode(buf, w.order)
	if err != nil {
		return err
	}

	index := w.frames
	stripOffset, err := w.alloc.AllocAligned(int64(len(data)), 2, fmt.Sprintf("strip %d", index))
	if err != nil {
		return err
	}
	if err := w.writer.At(stripOffset).WriteBytes(data); err != nil {
		return errs.IO("writing strip", err)
	}

	var d *ifd.Directory
	if index == 0 {
		d = w.directory(header.Size, stripOffset, int64(len(data)), format, true)
		if d.Size() != w.firstIFDSize {
			return fmt.Errorf("first IFD changed size from %d to %d bytes", w.firstIFDSize, d.Size())
		}
		if _, err := d.Write(w.writer); err != nil {
			return errs.IO("writing IFD", err)
		}
	} else {
		d = w.directory(0, stripOffset, int64(len(data)), format, false)
		d.Offset, err = w.alloc.AllocAligned(d.Size(), 2, fmt.Sprintf("ifd %d", index))
		if err != nil {
			return err
		}
		if _, err := d.Write(w.writer); err != nil {
			return errs.IO("writing IFD", err)
		}
		if err := ifd.WriteLink(w.writer, w.lastNext, uint32(d.Offset)); err != nil {
			return errs.IO("linking IFD", err)
		}
	}
	w.lastNext = d.NextField()
	w.frames++

	w.logger.Debug("wrote frame",
		"index", index,
		"ifd", d.Offset,
		"stripOffset", stripOffset,
		"stripBytes", len(data))
	return nil
}

// Close writes description into the first frame's reserved field,
// terminates the IFD chain and releases the file.
//
// A description longer than MaxDescriptionTextSize fails with
// ErrDescriptionTooLong and leaves the session open, unless the Writer was
// created WithDescriptionTruncation. Descriptions must be ASCII without NUL
// bytes. Closing a Writer with no frames leaves a file whose only frame has
// an empty strip.
func (w *Writer) Close(description string) error {
	if w.closed {
		return ErrClosed
	}

	desc, err := w.checkDescription(description)
	if err != nil {
		return err
	}

	err = w.finish(desc)
	w.closed = true
	if w.closer != nil {
		if cerr := w.closer.Close(); cerr != nil && err == nil {
			err = errs.IO("closing file", cerr)
		}
	}
	return err
}

func (w *Writer) checkDescription(s string) (string, error) {
	for i := 0; i < len(s); i++ {
		if s[i] == 0 || s[i] >= 0x80 {
			return "", fmt.Errorf("%w: byte %#x at %d", ErrDescriptionNotASCII, s[i], i)
		}
	}
	if limit := w.MaxDescriptionTextSize(); len(s) > limit {
		if !w.truncateDesc {
			return "", fmt.Errorf("%w: %d bytes, at most %d", ErrDescriptionTooLong, len(s), limit)
		}
		w.logger.Debug("truncating description", "length", len(s), "max", limit)
		s = s[:limit]
	}
	return s, nil
}

func (w *Writer) finish(desc string) error {
	field := make([]byte, len(desc)+1)
	copy(field, desc)
	if err := w.writer.At(w.descField).WriteBytes(field); err != nil {
		return errs.IO("writing description", err)
	}
	w.logger.Debug("patched description", "offset", w.descField, "bytes", len(field))
	if err := ifd.WriteLink(w.writer, w.lastNext, 0); err != nil {
		return errs.IO("terminating IFD chain", err)
	}
	if err := w.alloc.Validate(); err != nil {
		return err
	}

	if s, ok := w.dst.(interface{ Sync() error }); ok {
		if err := s.Sync(); err != nil {
			return errs.IO("syncing file", err)
		}
	}

	stats := w.alloc.Stats()
	w.logger.Debug("closed tiff",
		"frames", w.frames,
		"descriptionBytes", len(desc),
		"size", w.alloc.EOF(),
		"allocations", stats.TotalAllocations,
		"allocatedBytes", stats.TotalBytesAlloc,
		"paddingBytes", stats.PaddingBytes,
		"largestAllocation", stats.LargestAlloc)
	return nil
}
