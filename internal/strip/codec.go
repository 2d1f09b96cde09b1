package strip

import (
	"encoding/binary"
	"fmt"
	"reflect"
	"unsafe"

	"github.com/robert-malhotra/go-tinytiff/internal/errs"
	"github.com/robert-malhotra/go-tinytiff/internal/header"
)

// Format is the numeric interpretation of a slice element. The values
// match the TIFF SampleFormat codes.
type Format int

// Element formats
const (
	Uint  Format = 1
	Int   Format = 2
	Float Format = 3
)

func (f Format) String() string {
	switch f {
	case Uint:
		return "uint"
	case Int:
		return "int"
	case Float:
		return "float"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Describe reports the element format and size of a sample slice and its
// length. Only fixed-size numeric kinds are accepted.
func Describe(buf any) (format Format, size int, n int, err error) {
	v := reflect.ValueOf(buf)
	if v.Kind() != reflect.Slice {
		return 0, 0, 0, fmt.Errorf("%w: %T is not a slice", errs.ErrUnsupportedType, buf)
	}

	elem := v.Type().Elem()
	switch elem.Kind() {
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		format = Uint
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		format = Int
	case reflect.Float32, reflect.Float64:
		format = Float
	default:
		return 0, 0, 0, fmt.Errorf("%w: %v", errs.ErrUnsupportedType, elem)
	}
	return format, int(elem.Size()), v.Len(), nil
}

// Decode copies the units of src into the slice dst, reinterpreting the
// bits of each unit as dst's element type. src is in file order. The
// element size must equal the unit size and dst must hold every unit; dst
// is left untouched on error.
func Decode(dst any, src []byte, order binary.ByteOrder) error {
	_, size, n, err := Describe(dst)
	if err != nil {
		return err
	}
	if len(src)%size != 0 {
		return fmt.Errorf("%w: %d bytes is not a multiple of %d-byte elements", errs.ErrSampleSizeMismatch, len(src), size)
	}
	units := len(src) / size
	if n < units {
		return fmt.Errorf("%w: buffer holds %d elements, need %d", errs.ErrBufferSizeMismatch, n, units)
	}

	// Units are swapped into host order first so that every element,
	// NaN payloads included, keeps its exact bit pattern.
	if size > 1 && order != header.HostByteOrder() {
		src = append([]byte(nil), src...)
		Swap(src, size)
	}
	directCopy(reflect.ValueOf(dst), src)
	return nil
}

// directCopy copies src into the backing array of the slice v.
func directCopy(v reflect.Value, src []byte) {
	if len(src) == 0 {
		return
	}
	dst := unsafe.Slice((*byte)(v.UnsafePointer()), len(src))
	copy(dst, src)
}

// Encode serializes the slice src into bytes in the given order.
func Encode(src any, order binary.ByteOrder) ([]byte, error) {
	_, size, n, err := Describe(src)
	if err != nil {
		return nil, err
	}
	data := make([]byte, n*size)
	if n == 0 {
		return data, nil
	}

	copy(data, unsafe.Slice((*byte)(reflect.ValueOf(src).UnsafePointer()), len(data)))
	if size > 1 && order != header.HostByteOrder() {
		Swap(data, size)
	}
	return data, nil
}
