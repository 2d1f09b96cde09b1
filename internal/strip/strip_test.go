package strip

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/header"
)

func foreignOrder() binary.ByteOrder {
	if header.HostByteOrder() == binary.LittleEndian {
		return binary.BigEndian
	}
	return binary.LittleEndian
}

func TestSpan(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		sample int
		start  int64
		end    int64
	}{
		{"gray8", Layout{Width: 3, Height: 2, Bits: []int{8}}, 0, 0, 6},
		{"chunky rgb16", Layout{Width: 2, Height: 2, Bits: []int{16, 16, 16}}, 1, 0, 24},
		{"planar rgb16 first", Layout{Width: 2, Height: 2, Bits: []int{16, 16, 16}, Planar: true}, 0, 0, 8},
		{"planar rgb16 last", Layout{Width: 2, Height: 2, Bits: []int{16, 16, 16}, Planar: true}, 2, 16, 24},
		{"planar mixed", Layout{Width: 2, Height: 1, Bits: []int{8, 32}, Planar: true}, 1, 2, 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end, err := tt.layout.Span(tt.sample)
			if err != nil {
				t.Fatalf("Span failed: %v", err)
			}
			if start != tt.start || end != tt.end {
				t.Errorf("expected [%d, %d), got [%d, %d)", tt.start, tt.end, start, end)
			}
		})
	}
}

func TestSpanOverflow(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		sample int
	}{
		{"pixel count", Layout{Width: math.MaxInt, Height: 2, Bits: []int{8}}, 0},
		{"chunky stride", Layout{Width: math.MaxInt / 4, Height: 1, Bits: []int{32, 32}}, 0},
		{"planar offset", Layout{Width: math.MaxInt / 4, Height: 1, Bits: []int{64, 64}, Planar: true}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := tt.layout.Span(tt.sample)
			if !errors.Is(err, errs.ErrMalformedIFDEntry) {
				t.Errorf("expected ErrMalformedIFDEntry, got %v", err)
			}
		})
	}

	if _, err := (Layout{Width: math.MaxInt, Height: 2}).Pixels(); !errors.Is(err, errs.ErrMalformedIFDEntry) {
		t.Errorf("expected ErrMalformedIFDEntry from Pixels, got %v", err)
	}
}

func TestUnitSizeRejectsPartialBytes(t *testing.T) {
	l := Layout{Width: 1, Height: 1, Bits: []int{8, 12}}
	if _, err := l.UnitSize(1); !errors.Is(err, errs.ErrUnsupportedBitDepth) {
		t.Errorf("expected ErrUnsupportedBitDepth, got %v", err)
	}
	// A sample with whole bytes still fails when another sample breaks the stride.
	if _, _, err := l.Span(0); !errors.Is(err, errs.ErrUnsupportedBitDepth) {
		t.Errorf("expected ErrUnsupportedBitDepth for chunky stride, got %v", err)
	}
	if _, err := l.UnitSize(5); err == nil {
		t.Error("expected error for sample out of range")
	}
}

func TestExtractChunky(t *testing.T) {
	// Two pixels of (u8, u16, u8): stride 4, sample 1 at offset 1.
	l := Layout{Width: 2, Height: 1, Bits: []int{8, 16, 8}}
	stream := []byte{
		0xA0, 0x01, 0x02, 0xB0,
		0xA1, 0x03, 0x04, 0xB1,
	}

	got, err := l.Extract(stream, 1)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if want := []byte{0x01, 0x02, 0x03, 0x04}; !bytes.Equal(got, want) {
		t.Errorf("sample 1: expected %x, got %x", want, got)
	}

	got, err = l.Extract(stream, 2)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if want := []byte{0xB0, 0xB1}; !bytes.Equal(got, want) {
		t.Errorf("sample 2: expected %x, got %x", want, got)
	}
}

func TestExtractPlanar(t *testing.T) {
	l := Layout{Width: 2, Height: 1, Bits: []int{8, 8, 8}, Planar: true}
	stream := []byte{1, 2, 3, 4, 5, 6}

	start, end, err := l.Span(1)
	if err != nil {
		t.Fatal(err)
	}
	got, err := l.Extract(stream[start:end], 1)
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}
	if want := []byte{3, 4}; !bytes.Equal(got, want) {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestExtractShortStream(t *testing.T) {
	l := Layout{Width: 4, Height: 4, Bits: []int{16}}
	_, err := l.Extract(make([]byte, 10), 0)
	if !errors.Is(err, errs.ErrTruncatedFile) {
		t.Errorf("expected ErrTruncatedFile, got %v", err)
	}
}

func TestSwap(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5, 6, 7, 8}
	Swap(data, 4)
	if want := []byte{4, 3, 2, 1, 8, 7, 6, 5}; !bytes.Equal(data, want) {
		t.Errorf("expected %v, got %v", want, data)
	}
	Swap(data, 1)
	if data[0] != 4 {
		t.Error("1-byte units should not change")
	}
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		name   string
		buf    any
		format Format
		size   int
	}{
		{"uint8", []uint8{1}, Uint, 1},
		{"int8", []int8{1}, Int, 1},
		{"uint16", []uint16{1}, Uint, 2},
		{"int32", []int32{1}, Int, 4},
		{"float32", []float32{1}, Float, 4},
		{"uint64", []uint64{1}, Uint, 8},
		{"float64", []float64{1}, Float, 8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			format, size, n, err := Describe(tt.buf)
			if err != nil {
				t.Fatalf("Describe failed: %v", err)
			}
			if format != tt.format || size != tt.size || n != 1 {
				t.Errorf("expected %v/%d/1, got %v/%d/%d", tt.format, tt.size, format, size, n)
			}
		})
	}

	for _, bad := range []any{[]int{1}, []string{"a"}, uint16(3), nil} {
		if _, _, _, err := Describe(bad); !errors.Is(err, errs.ErrUnsupportedType) {
			t.Errorf("%T: expected ErrUnsupportedType, got %v", bad, err)
		}
	}
}

func TestDecodeBothOrders(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			src := make([]byte, 6)
			order.PutUint16(src[0:], 1)
			order.PutUint16(src[2:], 0xBEEF)
			order.PutUint16(src[4:], 0x8000)

			u := make([]uint16, 3)
			if err := Decode(u, src, order); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if u[0] != 1 || u[1] != 0xBEEF || u[2] != 0x8000 {
				t.Errorf("unexpected uint16 values %v", u)
			}

			s := make([]int16, 3)
			if err := Decode(s, src, order); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			if s[2] != math.MinInt16 {
				t.Errorf("expected bitwise reinterpretation to %d, got %d", math.MinInt16, s[2])
			}
		})
	}
}

func TestDecodeFloatBitsPreserved(t *testing.T) {
	nan := uint32(0x7FA00001) // signalling NaN with payload
	src := make([]byte, 8)
	order := foreignOrder()
	order.PutUint32(src[0:], nan)
	order.PutUint32(src[4:], math.Float32bits(-2.5))

	dst := make([]float32, 2)
	if err := Decode(dst, src, order); err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if got := math.Float32bits(dst[0]); got != nan {
		t.Errorf("expected NaN bits %#x, got %#x", nan, got)
	}
	if dst[1] != -2.5 {
		t.Errorf("expected -2.5, got %v", dst[1])
	}
	if order.Uint32(src[0:]) != nan {
		t.Error("Decode modified its source")
	}
}

func TestDecodeErrorsLeaveDestination(t *testing.T) {
	dst := []uint32{7, 7}

	if err := Decode(dst, make([]byte, 12), binary.LittleEndian); !errors.Is(err, errs.ErrBufferSizeMismatch) {
		t.Errorf("expected ErrBufferSizeMismatch, got %v", err)
	}
	if err := Decode(dst, make([]byte, 6), binary.LittleEndian); !errors.Is(err, errs.ErrSampleSizeMismatch) {
		t.Errorf("expected ErrSampleSizeMismatch, got %v", err)
	}
	if dst[0] != 7 || dst[1] != 7 {
		t.Errorf("destination modified on error: %v", dst)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	for _, order := range []binary.ByteOrder{binary.LittleEndian, binary.BigEndian} {
		t.Run(order.String(), func(t *testing.T) {
			src := []float64{0, -1.5, math.Inf(1), math.SmallestNonzeroFloat64}
			data, err := Encode(src, order)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if len(data) != 32 {
				t.Fatalf("expected 32 bytes, got %d", len(data))
			}
			if got := math.Float64frombits(order.Uint64(data[8:])); got != -1.5 {
				t.Errorf("expected -1.5 in %v order, got %v", order, got)
			}

			back := make([]float64, len(src))
			if err := Decode(back, data, order); err != nil {
				t.Fatalf("Decode failed: %v", err)
			}
			for i := range src {
				if back[i] != src[i] {
					t.Errorf("element %d: expected %v, got %v", i, src[i], back[i])
				}
			}
		})
	}
}

func TestEncodeDoesNotModifySource(t *testing.T) {
	src := []int32{0x01020304}
	data, err := Encode(src, foreignOrder())
	if err != nil {
		t.Fatal(err)
	}
	if src[0] != 0x01020304 {
		t.Errorf("source modified: %#x", src[0])
	}
	if foreignOrder().Uint32(data) != 0x01020304 {
		t.Errorf("unexpected encoding %x", data)
	}
}
