// Package header handles the 8-byte TIFF file header.
//
// Every TIFF file starts with a fixed header that selects the byte order
// for the rest of the file and points at the first Image File Directory.
//
// # Layout
//
//	offset 0: byte order mark, "II" (little-endian) or "MM" (big-endian)
//	offset 2: magic number 42, in the byte order just selected
//	offset 4: absolute offset of the first IFD
//
// # Usage
//
// Read the header from a file of known size:
//
//	h, err := header.Read(file, size)
//	if errors.Is(err, errs.ErrBadByteOrderMark) {
//	    // Not a TIFF file
//	}
//
// Create a binary reader in the file's byte order:
//
//	reader := binary.NewReader(file, h.ReaderConfig())
//
// # Writing
//
// [Header.Write] emits the same 8 bytes in the header's byte order. Writers
// default to [HostByteOrder] so that strips can be copied without swapping.
//
// # Errors
//
//   - [errs.ErrBadByteOrderMark]: neither "II" nor "MM"
//   - [errs.ErrBadMagic]: the magic number is not 42
//   - [errs.ErrTruncatedFile]: the file is shorter than 8 bytes or the first
//     IFD offset lies outside the file
package header
