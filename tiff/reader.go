package tiff

import (
	"encoding/binary"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"os"

	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/header"
	"github.com/robert-malhotra/go-tinytiff/internal/ifd"
	"golang.org/x/exp/mmap"
)

// Reader is a read session over one TIFF file. It holds the descriptor of
// a current frame, starting with the first, and moves forward through the
// IFD chain with ReadNext.
//
// HasNext, ReadNext and SampleData also record their outcome in a sticky
// error slot read by WasError, LastError, Success and Err. Each of them
// clears the slot on entry.
//
// After Close, every method that returns an error or reports success fails
// with ErrClosed. The plain accessors such as Width and Frame keep
// describing the last current frame.
//
// A Reader must not be used from multiple goroutines at once.
type Reader struct {
	path   string
	src    io.ReaderAt
	closer io.Closer
	size   int64
	header *header.Header
	reader *binpkg.Reader
	logger *slog.Logger

	frame  *Frame
	seen   map[int64]bool // IFD offsets visited by ReadNext
	err    error          // sticky
	closed bool
}

// Open opens the TIFF file at path and parses its first frame.
func Open(path string, opts ...Option) (*Reader, error) {
	o := applyOptions(opts)

	var (
		src    io.ReaderAt
		closer io.Closer
		size   int64
	)
	if o.mmap {
		m, err := mmap.Open(path)
		if err != nil {
			return nil, errs.IO("mapping file", err)
		}
		src, closer, size = m, m, int64(m.Len())
	} else {
		f, err := os.Open(path)
		if err != nil {
			return nil, errs.IO("opening file", err)
		}
		st, err := f.Stat()
		if err != nil {
			f.Close()
			return nil, errs.IO("stat file", err)
		}
		src, closer, size = f, f, st.Size()
	}

	r, err := newReader(src, size, o)
	if err != nil {
		closer.Close()
		return nil, err
	}
	r.path = path
	r.closer = closer
	return r, nil
}

// NewReader reads a TIFF image of size bytes from r. Closing the returned
// Reader does not close r.
func NewReader(r io.ReaderAt, size int64, opts ...Option) (*Reader, error) {
	return newReader(r, size, applyOptions(opts))
}

func newReader(src io.ReaderAt, size int64, o *options) (*Reader, error) {
	h, err := header.Read(src, size)
	if err != nil {
		return nil, fmt.Errorf("reading header: %w", err)
	}

	r := &Reader{
		src:    src,
		size:   size,
		header: h,
		reader: binpkg.NewReader(src, h.ReaderConfig()),
		logger: o.logger,
		seen:   make(map[int64]bool),
	}

	frame, err := r.readFrame(int64(h.FirstIFD), 0)
	if err != nil {
		return nil, fmt.Errorf("reading first IFD: %w", err)
	}
	r.frame = frame
	r.seen[frame.Offset] = true

	r.logger.Debug("opened tiff",
		"byteOrder", header.Mark(h.ByteOrder),
		"size", size,
		"firstIFD", h.FirstIFD)
	return r, nil
}

// readFrame parses the IFD at offset into a Frame.
func (r *Reader) readFrame(offset int64, index int) (*Frame, error) {
	d, err := ifd.Read(r.reader, offset, r.size)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("parsed IFD",
		"index", index,
		"offset", offset,
		"entries", len(d.Entries),
		"next", d.Next)
	return parseFrame(d, index)
}

// Close releases the file. It is safe to call Close more than once.
func (r *Reader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer == nil {
		return nil
	}
	if err := r.closer.Close(); err != nil {
		return errs.IO("closing file", err)
	}
	return nil
}

// Path returns the path given to Open, or "" for a NewReader session.
func (r *Reader) Path() string {
	return r.path
}

// ByteOrder returns the byte order of the file.
func (r *Reader) ByteOrder() binary.ByteOrder {
	return r.header.ByteOrder
}

// FileSize returns the size of the file in bytes.
func (r *Reader) FileSize() int64 {
	return r.size
}

// Frame returns a copy of the current frame descriptor.
func (r *Reader) Frame() *Frame {
	return r.frame.Clone()
}

// FrameIndex returns the position of the current frame in the chain.
func (r *Reader) FrameIndex() int {
	return r.frame.Index
}

// Width returns the width of the current frame in pixels.
func (r *Reader) Width() int {
	return r.frame.Width
}

// Height returns the height of the current frame in pixels.
func (r *Reader) Height() int {
	return r.frame.Height
}

// SamplesPerPixel returns the number of samples per pixel of the current frame.
func (r *Reader) SamplesPerPixel() int {
	return r.frame.SamplesPerPixel
}

// SampleFormat returns the format of the first sample of the current frame.
func (r *Reader) SampleFormat() SampleFormat {
	return r.frame.SampleFormat()
}

// ImageDescription returns the ImageDescription of the current frame, or
// "" when it has none.
func (r *Reader) ImageDescription() string {
	return r.frame.ImageDescription
}

// BitsPerSample returns the bit depth of the given sample of the current frame.
func (r *Reader) BitsPerSample(sample int) (int, error) {
	if r.closed {
		return 0, ErrClosed
	}
	if sample < 0 || sample >= len(r.frame.BitsPerSample) {
		return 0, fmt.Errorf("%w: sample %d of %d", ErrSampleOutOfRange, sample, len(r.frame.BitsPerSample))
	}
	return r.frame.BitsPerSample[sample], nil
}

// CountFrames walks the whole IFD chain and returns the number of frames.
// The current frame is not changed.
func (r *Reader) CountFrames() (int, error) {
	if r.closed {
		return 0, ErrClosed
	}

	visited := make(map[int64]bool)
	n := 0
	for offset := int64(r.header.FirstIFD); offset != 0; n++ {
		if visited[offset] {
			return 0, errs.Malformed("IFD chain loops back to offset %d", offset)
		}
		visited[offset] = true

		next, _, err := ifd.ReadLink(r.reader, offset, r.size)
		if err != nil {
			return 0, fmt.Errorf("reading IFD %d link: %w", n, err)
		}
		offset = int64(next)
	}
	return n, nil
}

// Frames returns the IFD chain as a sequence of frames, starting from the
// first one. Iteration stops after the first error, which is yielded with
// a nil frame. The current frame of r is not changed.
func (r *Reader) Frames() iter.Seq2[*Frame, error] {
	return func(yield func(*Frame, error) bool) {
		if r.closed {
			yield(nil, ErrClosed)
			return
		}

		visited := make(map[int64]bool)
		offset := int64(r.header.FirstIFD)
		for index := 0; offset != 0; index++ {
			if visited[offset] {
				yield(nil, errs.Malformed("IFD chain loops back to offset %d", offset))
				return
			}
			visited[offset] = true

			f, err := r.readFrame(offset, index)
			if err != nil {
				yield(nil, fmt.Errorf("reading IFD %d: %w", index, err))
				return
			}
			if !yield(f, nil) {
				return
			}
			offset = int64(f.NextIFD)
		}
	}
}

// HasNext reports whether the current frame links to another one.
func (r *Reader) HasNext() bool {
	r.err = nil
	if r.closed {
		r.err = ErrClosed
		return false
	}
	return r.frame.NextIFD != 0
}

// ReadNext moves to the next frame. It returns false, leaving the current
// frame unchanged, at the end of the chain or when the next IFD cannot be
// parsed; WasError tells the two apart.
func (r *Reader) ReadNext() bool {
	r.err = nil
	if r.closed {
		r.err = ErrClosed
		return false
	}
	next := int64(r.frame.NextIFD)
	if next == 0 {
		return false
	}
	if r.seen[next] {
		r.err = errs.Malformed("IFD chain loops back to offset %d", next)
		return false
	}

	f, err := r.readFrame(next, r.frame.Index+1)
	if err != nil {
		r.err = fmt.Errorf("reading IFD %d: %w", r.frame.Index+1, err)
		return false
	}
	r.seen[next] = true
	r.frame = f
	return true
}

// WasError reports whether the last HasNext, ReadNext or SampleData call failed.
func (r *Reader) WasError() bool {
	return r.err != nil
}

// Success reports whether the last HasNext, ReadNext or SampleData call succeeded.
func (r *Reader) Success() bool {
	return r.err == nil
}

// Err returns the error of the last failed HasNext, ReadNext or SampleData
// call, or nil.
func (r *Reader) Err() error {
	return r.err
}

// LastError returns the message of Err, or "" when there is none.
func (r *Reader) LastError() string {
	if r.err == nil {
		return ""
	}
	return r.err.Error()
}
