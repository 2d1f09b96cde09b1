// Package ifd handles parsing and serialization of TIFF Image File Directories.
//
// An IFD describes one frame of a TIFF file. It is a counted table of
// 12-byte entries followed by the offset of the next IFD, which turns the
// directories of a multi-page file into a singly linked list.
//
// # Entry Layout
//
//	bytes 0-1:  tag
//	bytes 2-3:  field type (see [FieldType])
//	bytes 4-7:  value count
//	bytes 8-11: the value itself when it fits in 4 bytes, otherwise the
//	            absolute file offset of the value
//
// The 4-byte rule: a value of (type size × count) bytes is stored inline
// when it is at most 4 bytes long, left-justified in the value field.
// Longer values live out-of-line and are resolved by [Read] with an explicit
// read at the stored offset.
//
// # Reading
//
//	dir, err := ifd.Read(reader, offset, fileSize)
//	width, err := dir.Uint(ifd.ImageWidth)
//
// Entries with field types this package does not know are kept with their
// raw value field; asking for their values fails with
// [errs.ErrMalformedIFDEntry].
//
// # Writing
//
// [New] creates an empty directory; Set* methods add entries in ascending
// tag order and [Directory.Write] lays them out, appending out-of-line
// payloads after the entry table. The serialized size depends only on the
// entries, so a directory can be rewritten in place once its values are
// final.
package ifd
