package ifd

import (
	"encoding/binary"
	"fmt"
	"sort"

	binpkg "github.com/robert-malhotra/go-tinytiff/internal/binary"
)

// New creates an empty directory whose payloads use order.
func New(order binary.ByteOrder) *Directory {
	return &Directory{order: order}
}

// Set adds e, replacing any entry with the same tag, and keeps the entries
// in ascending tag order.
func (d *Directory) Set(e Entry) {
	i := sort.Search(len(d.Entries), func(i int) bool { return d.Entries[i].Tag >= e.Tag })
	if i < len(d.Entries) && d.Entries[i].Tag == e.Tag {
		d.Entries[i] = e
		return
	}
	d.Entries = append(d.Entries, Entry{})
	copy(d.Entries[i+1:], d.Entries[i:])
	d.Entries[i] = e
}

// SetShorts sets tag to SHORT values.
func (d *Directory) SetShorts(tag Tag, vals ...uint16) {
	data := make([]byte, 2*len(vals))
	for i, v := range vals {
		d.order.PutUint16(data[2*i:], v)
	}
	d.Set(Entry{Tag: tag, Type: Short, Count: uint32(len(vals)), Data: data})
}

// SetLongs sets tag to LONG values.
func (d *Directory) SetLongs(tag Tag, vals ...uint32) {
	data := make([]byte, 4*len(vals))
	for i, v := range vals {
		d.order.PutUint32(data[4*i:], v)
	}
	d.Set(Entry{Tag: tag, Type: Long, Count: uint32(len(vals)), Data: data})
}

// SetASCII sets tag to a NUL-terminated string stored in a field of
// capacity bytes. The field is zero-filled past the text, so a reserved
// field can be filled in later without changing the directory layout.
func (d *Directory) SetASCII(tag Tag, s string, capacity int) error {
	if capacity < len(s)+1 {
		return fmt.Errorf("%q needs %d bytes, capacity is %d", s, len(s)+1, capacity)
	}
	data := make([]byte, capacity)
	copy(data, s)
	d.Set(Entry{Tag: tag, Type: ASCII, Count: uint32(capacity), Data: data})
	return nil
}

// NextField returns the absolute offset of the next-IFD pointer.
func (d *Directory) NextField() int64 {
	return d.Offset + 2 + int64(len(d.Entries))*EntrySize
}

// Size returns the serialized size of the directory including its
// out-of-line payloads.
func (d *Directory) Size() int64 {
	end := d.NextField() + 4
	for i := range d.Entries {
		if !d.Entries[i].Inline() {
			end += end & 1
			end += int64(len(d.Entries[i].Data))
		}
	}
	return end - d.Offset
}

// PayloadOffset returns the absolute offset of tag's out-of-line payload
// in the serialized directory. ok is false for missing or inline tags.
func (d *Directory) PayloadOffset(tag Tag) (offset int64, ok bool) {
	pos := d.NextField() + 4
	for i := range d.Entries {
		e := &d.Entries[i]
		if e.Inline() {
			continue
		}
		pos += pos & 1
		if e.Tag == tag {
			return pos, true
		}
		pos += int64(len(e.Data))
	}
	return 0, false
}

// Write serializes the directory at d.Offset: entry count, entries,
// next pointer, then the out-of-line payloads, each on a word boundary.
// It returns the number of bytes written.
func (d *Directory) Write(w *binpkg.Writer) (int64, error) {
	if d.Offset <= 0 || d.Offset&1 != 0 {
		return 0, fmt.Errorf("IFD offset %d is not a positive word boundary", d.Offset)
	}

	buf := make([]byte, d.Size())
	d.order.PutUint16(buf[0:2], uint16(len(d.Entries)))

	pos := d.NextField() + 4
	for i := range d.Entries {
		e := &d.Entries[i]
		if int64(len(e.Data)) != e.DataSize() {
			return 0, fmt.Errorf("%v: %d payload bytes for %d %v values", e.Tag, len(e.Data), e.Count, e.Type)
		}

		raw := buf[2+i*EntrySize:]
		d.order.PutUint16(raw[0:2], uint16(e.Tag))
		d.order.PutUint16(raw[2:4], uint16(e.Type))
		d.order.PutUint32(raw[4:8], e.Count)

		if e.Inline() {
			copy(raw[8:12], e.Data)
			continue
		}
		pos += pos & 1
		d.order.PutUint32(raw[8:12], uint32(pos))
		copy(buf[pos-d.Offset:], e.Data)
		pos += int64(len(e.Data))
	}

	d.order.PutUint32(buf[d.NextField()-d.Offset:], d.Next)

	if err := w.At(d.Offset).WriteBytes(buf); err != nil {
		return 0, err
	}
	return int64(len(buf)), nil
}

// WriteLink patches the 4-byte next-IFD pointer stored at field.
func WriteLink(w *binpkg.Writer, field int64, next uint32) error {
	return w.At(field).WriteUint32(next)
}
