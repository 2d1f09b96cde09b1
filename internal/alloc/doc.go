// Package alloc provides space allocation management for TIFF file writing.
//
// The writer places every strip and every IFD after the first at the
// current end of file. This package hands out those offsets, keeps IFDs on
// word boundaries, and refuses to grow a file past the 4 GiB a classic TIFF
// can address.
//
// # Usage
//
// Create an allocator with the first free offset (after the header and the
// stub IFD):
//
//	a := alloc.New(stubEnd)
//	strip, err := a.AllocAligned(int64(len(data)), 2, "strip 1")
//	ifdAt, err := a.AllocAligned(dir.Size(), 2, "ifd 1")
//
// [Allocator.Validate] checks that no two blocks overlap; the writer runs
// it before closing the file. An Allocator is not safe for concurrent use.
package alloc
