package ifd

import (
	"bytes"
	"encoding/binary"
	"fmt"

	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
	"github.com/robert-malhotra/go-tinytiff/internal/errs"
)

// EntrySize is the encoded size of one directory entry.
const EntrySize = 12

// Entry is a single tag of an Image File Directory.
type Entry struct {
	Tag   Tag
	Type  FieldType
	Count uint32

	// Value is the raw value/offset field as stored in the file.
	Value [4]byte

	// Data holds the resolved payload in file byte order, whether it was
	// stored inline or out-of-line. It is nil for unknown field types.
	Data []byte
}

// DataSize returns the payload size in bytes, or -1 for unknown field types.
func (e *Entry) DataSize() int64 {
	size := e.Type.Size()
	if size == 0 {
		return -1
	}
	return int64(size) * int64(e.Count)
}

// Inline reports whether the payload fits in the value field.
func (e *Entry) Inline() bool {
	n := e.DataSize()
	return n >= 0 && n <= 4
}

// Directory is one parsed or under-construction Image File Directory.
type Directory struct {
	// Offset is the absolute file offset of the entry count.
	Offset int64

	// Entries are kept in file order when read and in ascending tag order
	// when built with the Set* methods.
	Entries []Entry

	// Next is the offset of the next directory, 0 for the last one.
	Next uint32

	order binary.ByteOrder
}

// Read parses the directory at offset. size is the file size; payloads or
// tables reaching past it fail with errs.ErrTruncatedFile.
func Read(r *binpkg.Reader, offset int64, size int64) (*Directory, error) {
	if offset <= 0 || offset+2 > size {
		return nil, fmt.Errorf("%w: IFD offset %d outside file of %d bytes", errs.ErrTruncatedFile, offset, size)
	}

	cur := r.At(offset)
	count, err := cur.ReadUint16()
	if err != nil {
		return nil, fmt.Errorf("reading IFD entry count: %w", err)
	}

	tableEnd := offset + 2 + int64(count)*EntrySize + 4
	if tableEnd > size {
		return nil, fmt.Errorf("%w: IFD at %d with %d entries ends at %d, file is %d bytes",
			errs.ErrTruncatedFile, offset, count, tableEnd, size)
	}

	table, err := cur.ReadBytes(int(count) * EntrySize)
	if err != nil {
		return nil, fmt.Errorf("reading IFD entries: %w", err)
	}
	next, err := cur.ReadUint32()
	if err != nil {
		return nil, fmt.Errorf("reading next IFD offset: %w", err)
	}

	order := r.ByteOrder()
	d := &Directory{
		Offset:  offset,
		Entries: make([]Entry, 0, count),
		Next:    next,
		order:   order,
	}

	for i := 0; i < int(count); i++ {
		raw := table[i*EntrySize : (i+1)*EntrySize]
		e := Entry{
			Tag:   Tag(order.Uint16(raw[0:2])),
			Type:  FieldType(order.Uint16(raw[2:4])),
			Count: order.Uint32(raw[4:8]),
		}
		copy(e.Value[:], raw[8:12])

		if err := d.resolve(r, &e, size); err != nil {
			return nil, fmt.Errorf("resolving %v: %w", e.Tag, err)
		}
		d.Entries = append(d.Entries, e)
	}

	return d, nil
}

// resolve loads the payload of e, following the out-of-line offset when
// the value does not fit in the entry.
func (d *Directory) resolve(r *binpkg.Reader, e *Entry, size int64) error {
	n := e.DataSize()
	switch {
	case n < 0:
		// Unknown type: keep the raw value field only.
		return nil
	case n <= 4:
		e.Data = append([]byte(nil), e.Value[:n]...)
		return nil
	}

	at := int64(d.order.Uint32(e.Value[:]))
	if at+n > size {
		return fmt.Errorf("%w: %d bytes at offset %d, file is %d bytes", errs.ErrTruncatedFile, n, at, size)
	}
	data, err := r.ReadAt(at, int(n))
	if err != nil {
		return err
	}
	e.Data = data
	return nil
}

// ReadLink reads only the entry count and next pointer of the directory at
// offset. It is used to walk the chain without decoding entries.
func ReadLink(r *binpkg.Reader, offset int64, size int64) (next uint32, entries int, err error) {
	if offset <= 0 || offset+2 > size {
		return 0, 0, fmt.Errorf("%w: IFD offset %d outside file of %d bytes", errs.ErrTruncatedFile, offset, size)
	}
	count, err := r.At(offset).ReadUint16()
	if err != nil {
		return 0, 0, err
	}
	next, err = r.At(offset + 2 + int64(count)*EntrySize).ReadUint32()
	if err != nil {
		return 0, 0, err
	}
	return next, int(count), nil
}

// ByteOrder returns the byte order of the directory's payloads.
func (d *Directory) ByteOrder() binary.ByteOrder {
	return d.order
}

// Lookup returns the entry for tag, or nil.
func (d *Directory) Lookup(tag Tag) *Entry {
	for i := range d.Entries {
		if d.Entries[i].Tag == tag {
			return &d.Entries[i]
		}
	}
	return nil
}

// Has reports whether the directory contains tag.
func (d *Directory) Has(tag Tag) bool {
	return d.Lookup(tag) != nil
}

// Uints returns all values of an integer-valued tag.
// A missing tag fails with errs.ErrMissingTag.
func (d *Directory) Uints(tag Tag) ([]uint32, error) {
	e := d.Lookup(tag)
	if e == nil {
		return nil, MissingTag(tag)
	}
	if !e.Type.IsInteger() {
		return nil, errs.Malformed("%v has non-integer type %v", tag, e.Type)
	}
	if e.Count == 0 {
		return nil, errs.Malformed("%v has no values", tag)
	}

	vals := make([]uint32, e.Count)
	step := e.Type.Size()
	for i := range vals {
		p := e.Data[i*step:]
		switch e.Type {
		case Byte:
			vals[i] = uint32(p[0])
		case Short:
			vals[i] = uint32(d.order.Uint16(p))
		case Long:
			vals[i] = d.order.Uint32(p)
		}
	}
	return vals, nil
}

// Uint returns the single value of an integer-valued tag.
func (d *Directory) Uint(tag Tag) (uint32, error) {
	vals, err := d.Uints(tag)
	if err != nil {
		return 0, err
	}
	if len(vals) != 1 {
		return 0, errs.Malformed("%v has %d values, want 1", tag, len(vals))
	}
	return vals[0], nil
}

// UintOr returns the single value of tag, or def when the tag is absent.
func (d *Directory) UintOr(tag Tag, def uint32) (uint32, error) {
	if !d.Has(tag) {
		return def, nil
	}
	return d.Uint(tag)
}

// ASCII returns the text of an ASCII tag up to its first NUL byte.
func (d *Directory) ASCII(tag Tag) (string, error) {
	e := d.Lookup(tag)
	if e == nil {
		return "", MissingTag(tag)
	}
	if e.Type != ASCII && e.Type != Byte && e.Type != Undefined {
		return "", errs.Malformed("%v has non-text type %v", tag, e.Type)
	}
	data := e.Data
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return string(data), nil
}

// MissingTag returns an error reporting that tag is absent.
func MissingTag(tag Tag) error {
	return fmt.Errorf("%w: %v (%d)", errs.ErrMissingTag, tag, uint16(tag))
}
