package tiff

import (
	"fmt"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/strip"
)

// Sample is the set of element types SampleData can decode into.
type Sample interface {
	uint8 | int8 | uint16 | int16 | uint32 | int32 | uint64 | int64 | float32 | float64
}

// SampleData decodes one sample plane of the current frame into buf, which
// must be a slice of a fixed-size numeric type whose element size equals
// the sample's bit depth divided by 8 and which holds at least
// Width()×Height() elements. Values are reinterpreted bitwise, so a float
// plane can be read into []uint32 and vice versa.
//
// buf is not modified when SampleData fails. The error is also recorded in
// the sticky error slot.
func (r *Reader) SampleData(buf any, sample int) error {
	r.err = nil
	if err := r.sampleData(buf, sample); err != nil {
		r.err = err
		return err
	}
	return nil
}

func (r *Reader) sampleData(buf any, sample int) error {
	if err := r.checkSample(sample); err != nil {
		return err
	}
	f := r.frame
	layout := f.Layout()
	unit, err := layout.UnitSize(sample)
	if err != nil {
		return err
	}
	_, size, n, err := strip.Describe(buf)
	if err != nil {
		return err
	}
	if size != unit {
		return fmt.Errorf("%w: %d-byte elements for %d bits per sample", ErrSampleSizeMismatch, size, f.BitsPerSample[sample])
	}

	pixels, start, end, err := r.plane(f, sample)
	if err != nil {
		return err
	}
	if n < pixels {
		return fmt.Errorf("%w: buffer holds %d elements, frame has %d pixels", ErrBufferSizeMismatch, n, pixels)
	}

	span, err := r.readSpan(f, start, end)
	if err != nil {
		return err
	}
	units, err := layout.Extract(span, sample)
	if err != nil {
		return err
	}
	return strip.Decode(buf, units, r.header.ByteOrder)
}

func (r *Reader) checkSample(sample int) error {
	if r.closed {
		return ErrClosed
	}
	if sample < 0 || sample >= r.frame.SamplesPerPixel {
		return fmt.Errorf("%w: sample %d of %d", ErrSampleOutOfRange, sample, r.frame.SamplesPerPixel)
	}
	return nil
}

// plane returns the pixel count of f and the range [start, end) of its
// strip stream that holds sample. It fails unless every strip lies inside
// the file and the strips hold the whole range.
func (r *Reader) plane(f *Frame, sample int) (pixels int, start, end int64, err error) {
	layout := f.Layout()
	if start, end, err = layout.Span(sample); err != nil {
		return 0, 0, 0, err
	}
	if total := f.StreamSize(); end > total {
		return 0, 0, 0, fmt.Errorf("%w: strips hold %d bytes, frame needs %d", errs.ErrTruncatedFile, total, end)
	}
	for i, off := range f.StripOffsets {
		if off+f.StripByteCounts[i] > r.size {
			return 0, 0, 0, fmt.Errorf("%w: strip %d at %d with %d bytes, file is %d bytes",
				errs.ErrTruncatedFile, i, off, f.StripByteCounts[i], r.size)
		}
	}
	if pixels, err = layout.Pixels(); err != nil {
		return 0, 0, 0, err
	}
	return pixels, start, end, nil
}

// readSpan reads bytes [start, end) of the frame's concatenated strip
// stream, touching only the strips that overlap the range. The range must
// have been checked by plane.
func (r *Reader) readSpan(f *Frame, start, end int64) ([]byte, error) {
	out := make([]byte, 0, end-start)
	var pos int64
	for i, off := range f.StripOffsets {
		count := f.StripByteCounts[i]
		lo, hi := max(start, pos), min(end, pos+count)
		if lo < hi {
			data, err := r.reader.ReadAt(off+lo-pos, int(hi-lo))
			if err != nil {
				return nil, fmt.Errorf("reading strip %d: %w", i, err)
			}
			out = append(out, data...)
		}
		pos += count
		if pos >= end {
			break
		}
	}
	return out, nil
}

// ReadSamples decodes one sample plane of the current frame of r into a
// new slice of Width()×Height() elements. Like SampleData it records its
// outcome in the sticky error slot.
func ReadSamples[T Sample](r *Reader, sample int) ([]T, error) {
	r.err = nil
	if err := r.checkSample(sample); err != nil {
		r.err = err
		return nil, err
	}
	pixels, _, _, err := r.plane(r.frame, sample)
	if err != nil {
		r.err = err
		return nil, err
	}

	buf := make([]T, pixels)
	if err := r.SampleData(buf, sample); err != nil {
		return nil, err
	}
	return buf, nil
}
