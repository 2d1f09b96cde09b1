package tiff

import (
	"fmt"
	"slices"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/ifd"
	"github.com/robert-malhotra/go-tinytiff/internal/strip"
)

// SampleFormat is the numeric interpretation of sample values.
type SampleFormat int

// Sample formats
const (
	SampleFormatUint  SampleFormat = ifd.SampleFormatUint
	SampleFormatInt   SampleFormat = ifd.SampleFormatInt
	SampleFormatFloat SampleFormat = ifd.SampleFormatFloat
)

func (f SampleFormat) String() string {
	return strip.Format(f).String()
}

// Planar configurations
const (
	PlanarChunky = ifd.PlanarChunky
	PlanarPlanar = ifd.PlanarPlanar
)

// Frame describes one image of a TIFF file, as read from its IFD.
type Frame struct {
	// Index is the position of the frame in the IFD chain, starting at 0.
	Index int

	// Offset is the file offset of the frame's IFD.
	Offset int64

	Width           int
	Height          int
	Compression     int
	RowsPerStrip    int
	StripOffsets    []int64
	StripByteCounts []int64
	SamplesPerPixel int

	// BitsPerSample holds one entry per sample.
	BitsPerSample []int

	// PlanarConfiguration is PlanarChunky or PlanarPlanar.
	PlanarConfiguration int

	// SampleFormats holds one entry per sample.
	SampleFormats []SampleFormat

	ImageDescription string

	// NextIFD is the offset of the next frame's IFD, 0 for the last frame.
	NextIFD uint32
}

// SampleFormat returns the format of the first sample.
func (f *Frame) SampleFormat() SampleFormat {
	return f.SampleFormats[0]
}

// Layout returns the strip stream layout of the frame.
func (f *Frame) Layout() strip.Layout {
	return strip.Layout{
		Width:  f.Width,
		Height: f.Height,
		Bits:   f.BitsPerSample,
		Planar: f.PlanarConfiguration == PlanarPlanar,
	}
}

// StreamSize returns the total number of strip bytes of the frame.
func (f *Frame) StreamSize() int64 {
	var n int64
	for _, c := range f.StripByteCounts {
		n += c
	}
	return n
}

// Clone returns a deep copy of f.
func (f *Frame) Clone() *Frame {
	c := *f
	c.StripOffsets = slices.Clone(f.StripOffsets)
	c.StripByteCounts = slices.Clone(f.StripByteCounts)
	c.BitsPerSample = slices.Clone(f.BitsPerSample)
	c.SampleFormats = slices.Clone(f.SampleFormats)
	return &c
}

// parseFrame builds a Frame from a parsed directory, checking that the
// tags this package relies on are present and consistent.
func parseFrame(d *ifd.Directory, index int) (*Frame, error) {
	f := &Frame{
		Index:   index,
		Offset:  d.Offset,
		NextIFD: d.Next,
	}

	width, err := positive(d, ifd.ImageWidth)
	if err != nil {
		return nil, err
	}
	height, err := positive(d, ifd.ImageLength)
	if err != nil {
		return nil, err
	}
	f.Width, f.Height = width, height

	compression, err := d.Uint(ifd.Compression)
	if err != nil {
		return nil, err
	}
	if compression != ifd.CompressionNone {
		return nil, fmt.Errorf("%w: compression %d", errs.ErrCompressionUnsupported, compression)
	}
	f.Compression = int(compression)

	f.SamplesPerPixel, err = positive(d, ifd.SamplesPerPixel)
	if err != nil {
		return nil, err
	}

	bits, err := d.Uints(ifd.BitsPerSample)
	if err != nil {
		return nil, err
	}
	if len(bits) != f.SamplesPerPixel {
		return nil, errs.Malformed("%d BitsPerSample values for %d samples per pixel", len(bits), f.SamplesPerPixel)
	}
	f.BitsPerSample = make([]int, len(bits))
	for i, b := range bits {
		f.BitsPerSample[i] = int(b)
	}

	rows, err := d.Uint(ifd.RowsPerStrip)
	if err != nil {
		return nil, err
	}
	f.RowsPerStrip = int(rows)

	offsets, err := d.Uints(ifd.StripOffsets)
	if err != nil {
		return nil, err
	}
	counts, err := d.Uints(ifd.StripByteCounts)
	if err != nil {
		return nil, err
	}
	if len(offsets) != len(counts) {
		return nil, errs.Malformed("%d StripOffsets for %d StripByteCounts", len(offsets), len(counts))
	}
	f.StripOffsets = make([]int64, len(offsets))
	f.StripByteCounts = make([]int64, len(counts))
	for i := range offsets {
		f.StripOffsets[i] = int64(offsets[i])
		f.StripByteCounts[i] = int64(counts[i])
	}

	planar, err := d.UintOr(ifd.PlanarConfiguration, ifd.PlanarChunky)
	if err != nil {
		return nil, err
	}
	if planar != ifd.PlanarChunky && planar != ifd.PlanarPlanar {
		return nil, errs.Malformed("PlanarConfiguration %d", planar)
	}
	f.PlanarConfiguration = int(planar)

	if f.SampleFormats, err = sampleFormats(d, f.SamplesPerPixel); err != nil {
		return nil, err
	}

	if d.Has(ifd.ImageDescription) {
		if f.ImageDescription, err = d.ASCII(ifd.ImageDescription); err != nil {
			return nil, err
		}
	}

	return f, nil
}

func positive(d *ifd.Directory, tag ifd.Tag) (int, error) {
	v, err := d.Uint(tag)
	if err != nil {
		return 0, err
	}
	if v == 0 {
		return 0, errs.Malformed("%v is zero", tag)
	}
	return int(v), nil
}

// sampleFormats expands the SampleFormat tag to one value per sample.
// A single value applies to every sample.
func sampleFormats(d *ifd.Directory, spp int) ([]SampleFormat, error) {
	formats := make([]SampleFormat, spp)
	if !d.Has(ifd.SampleFormat) {
		for i := range formats {
			formats[i] = SampleFormatUint
		}
		return formats, nil
	}

	vals, err := d.Uints(ifd.SampleFormat)
	if err != nil {
		return nil, err
	}
	if len(vals) != 1 && len(vals) != spp {
		return nil, errs.Malformed("%d SampleFormat values for %d samples per pixel", len(vals), spp)
	}
	for i := range formats {
		v := vals[0]
		if len(vals) == spp {
			v = vals[i]
		}
		switch SampleFormat(v) {
		case SampleFormatUint, SampleFormatInt, SampleFormatFloat:
			formats[i] = SampleFormat(v)
		default:
			return nil, errs.Malformed("SampleFormat %d", v)
		}
	}
	return formats, nil
}
