package strip

import (
	"fmt"
	"math"
	"math/bits"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
)

// Layout describes the decoded strip stream of one frame.
type Layout struct {
	Width  int
	Height int

	// Bits holds the bits per sample for every sample of a pixel.
	Bits []int

	// Planar is true for PlanarConfiguration 2.
	Planar bool
}

// Pixels returns Width×Height. A product that does not fit in an int
// fails with errs.ErrMalformedIFDEntry.
func (l Layout) Pixels() (int, error) {
	n, ok := mul(l.Width, l.Height)
	if !ok {
		return 0, errs.Malformed("%dx%d image overflows the pixel count", l.Width, l.Height)
	}
	return n, nil
}

// mul returns a×b and whether it fits in an int. Negative operands never fit.
func mul(a, b int) (int, bool) {
	if a < 0 || b < 0 {
		return 0, false
	}
	hi, lo := bits.Mul64(uint64(a), uint64(b))
	if hi != 0 || lo > math.MaxInt {
		return 0, false
	}
	return int(lo), true
}

// UnitSize returns the byte width of one value of sample.
func (l Layout) UnitSize(sample int) (int, error) {
	if sample < 0 || sample >= len(l.Bits) {
		return 0, fmt.Errorf("sample %d of %d", sample, len(l.Bits))
	}
	depth := l.Bits[sample]
	if depth <= 0 || depth%8 != 0 {
		return 0, fmt.Errorf("%w: %d bits per sample", errs.ErrUnsupportedBitDepth, depth)
	}
	return depth / 8, nil
}

// offset returns the byte offset of sample within a pixel (chunky) or the
// number of plane bytes before it (planar), together with the pixel stride.
func (l Layout) offset(sample int) (before, stride int, err error) {
	for i := range l.Bits {
		n, err := l.UnitSize(i)
		if err != nil {
			return 0, 0, err
		}
		if i < sample {
			before += n
		}
		stride += n
	}
	return before, stride, nil
}

// Span returns the byte range [start, end) of the strip stream that holds
// sample.
func (l Layout) Span(sample int) (start, end int64, err error) {
	unit, err := l.UnitSize(sample)
	if err != nil {
		return 0, 0, err
	}
	before, stride, err := l.offset(sample)
	if err != nil {
		return 0, 0, err
	}

	pixels, err := l.Pixels()
	if err != nil {
		return 0, 0, err
	}
	if l.Planar {
		first, ok1 := mul(pixels, before)
		n, ok2 := mul(pixels, unit)
		if !ok1 || !ok2 || first > math.MaxInt-n {
			return 0, 0, errs.Malformed("plane %d of a %dx%d image overflows the strip stream", sample, l.Width, l.Height)
		}
		return int64(first), int64(first + n), nil
	}
	n, ok := mul(pixels, stride)
	if !ok {
		return 0, 0, errs.Malformed("%dx%d image of %d-byte pixels overflows the strip stream", l.Width, l.Height, stride)
	}
	return 0, int64(n), nil
}

// Extract gathers the units of sample from span, the stream bytes between
// the offsets returned by Span. The result holds Pixels() units in file
// byte order.
func (l Layout) Extract(span []byte, sample int) ([]byte, error) {
	start, end, err := l.Span(sample)
	if err != nil {
		return nil, err
	}
	if int64(len(span)) < end-start {
		return nil, fmt.Errorf("%w: sample %d needs %d stream bytes, have %d",
			errs.ErrTruncatedFile, sample, end-start, len(span))
	}

	if l.Planar || len(l.Bits) == 1 {
		return span[:end-start], nil
	}

	unit, _ := l.UnitSize(sample)
	before, stride, _ := l.offset(sample)
	pixels, _ := l.Pixels()
	out := make([]byte, pixels*unit)
	for p, src := 0, before; p < pixels; p, src = p+1, src+stride {
		copy(out[p*unit:(p+1)*unit], span[src:src+unit])
	}
	return out, nil
}

// Swap reverses the bytes of every size-byte unit of data in place.
func Swap(data []byte, size int) {
	if size <= 1 {
		return
	}
	for i := 0; i+size <= len(data); i += size {
		u := data[i : i+size]
		for a, b := 0, size-1; a < b; a, b = a+1, b-1 {
			u[a], u[b] = u[b], u[a]
		}
	}
}
