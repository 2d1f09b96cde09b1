package tiff_test

import (
	"encoding/binary"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
	"github.com/robert-malhotra/go-tinytiff/internal/header"
	"github.com/robert-malhotra/go-tinytiff/internal/ifd"
	"github.com/stretchr/testify/require"
)

// memFile is an in-memory io.WriterAt.
type memFile struct {
	buf []byte
}

func (m *memFile) WriteAt(p []byte, off int64) (int, error) {
	if end := int(off) + len(p); end > len(m.buf) {
		m.buf = append(m.buf, make([]byte, end-len(m.buf))...)
	}
	copy(m.buf[off:], p)
	return len(p), nil
}

// rawFrame describes a hand-built single-IFD file.
type rawFrame struct {
	order  binary.ByteOrder
	width  uint32
	height uint32
	bits   []uint16
	planar uint16
	// strips are stored back to back after the IFD.
	strips [][]byte
	// edit runs on the directory before it is serialized.
	edit func(d *ifd.Directory)
}

// build serializes f as a TIFF file: header, IFD at 8, then the strips.
func (f rawFrame) build(t *testing.T) []byte {
	t.Helper()
	if f.order == nil {
		f.order = binary.LittleEndian
	}
	if f.planar == 0 {
		f.planar = ifd.PlanarChunky
	}

	counts := make([]uint32, len(f.strips))
	for i, s := range f.strips {
		counts[i] = uint32(len(s))
	}

	d := ifd.New(f.order)
	d.Offset = header.Size
	setTags := func(offsets []uint32) {
		d.SetLongs(ifd.ImageWidth, f.width)
		d.SetLongs(ifd.ImageLength, f.height)
		d.SetShorts(ifd.BitsPerSample, f.bits...)
		d.SetShorts(ifd.Compression, ifd.CompressionNone)
		d.SetShorts(ifd.PhotometricInterpretation, ifd.PhotometricBlackIsZero)
		d.SetLongs(ifd.StripOffsets, offsets...)
		d.SetShorts(ifd.SamplesPerPixel, uint16(len(f.bits)))
		d.SetLongs(ifd.RowsPerStrip, f.height)
		d.SetLongs(ifd.StripByteCounts, counts...)
		d.SetShorts(ifd.PlanarConfiguration, f.planar)
		if f.edit != nil {
			f.edit(d)
		}
	}

	setTags(make([]uint32, len(f.strips)))
	pos := uint32(header.Size + d.Size())
	offsets := make([]uint32, len(f.strips))
	for i, s := range f.strips {
		offsets[i] = pos
		pos += uint32(len(s))
	}
	setTags(offsets)

	m := &memFile{}
	w := binpkg.NewWriter(m, binpkg.Config{ByteOrder: f.order})
	_, err := header.New(f.order).Write(w)
	require.NoError(t, err)
	_, err = d.Write(w)
	require.NoError(t, err)
	for i, s := range f.strips {
		require.NoError(t, w.At(int64(offsets[i])).WriteBytes(s))
	}
	return m.buf
}

func writeTemp(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.tif")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func newTestLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug}))
}
