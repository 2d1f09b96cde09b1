// Package alloc provides space management for TIFF file writing.
package alloc

import (
	"errors"
	"fmt"
	"math"
)

// MaxOffset is the largest file offset a classic TIFF can address.
const MaxOffset = math.MaxUint32

// ErrFileTooLarge is returned when an allocation would end past MaxOffset.
var ErrFileTooLarge = errors.New("tiff: file exceeds 4 GiB offset limit")

// Allocator hands out file space for strips and directories.
// Allocation is append-only: every block is placed at the current end of
// file, which is then advanced.
type Allocator struct {
	// eof is the next allocation point
	eof int64

	// base is the first allocatable offset (after the header and stub IFD)
	base int64

	// allocations tracks all allocations made (for validation)
	allocations []Allocation

	stats Stats
}

// Allocation represents a single allocation made.
type Allocation struct {
	Offset int64
	Size   int64
	Tag    string // e.g. "strip 3" or "ifd 3"
}

// Stats contains allocation statistics.
type Stats struct {
	TotalAllocations int64 // Number of allocations made
	TotalBytesAlloc  int64 // Total bytes allocated
	PaddingBytes     int64 // Bytes skipped to honour alignment
	LargestAlloc     int64 // Largest single allocation
}

// New creates an Allocator whose first block starts at base.
func New(base int64) *Allocator {
	return &Allocator{
		eof:  base,
		base: base,
	}
}

// AllocAligned allocates size bytes at the end of file, first padding the
// end of file to a multiple of alignment. Strips and IFDs use alignment 2
// to sit on a word boundary. A failed allocation leaves the end of file
// unchanged.
func (a *Allocator) AllocAligned(size, alignment int64, tag string) (int64, error) {
	if size < 0 {
		return 0, fmt.Errorf("negative allocation size %d for %s", size, tag)
	}

	offset, padding := a.eof, int64(0)
	if alignment > 1 {
		if remainder := offset % alignment; remainder != 0 {
			padding = alignment - remainder
			offset += padding
		}
	}
	if offset+size > MaxOffset {
		return 0, fmt.Errorf("%w: %s of %d bytes at offset %d", ErrFileTooLarge, tag, size, offset)
	}
	if size == 0 {
		return offset, nil
	}

	a.eof = offset + size
	a.allocations = append(a.allocations, Allocation{
		Offset: offset,
		Size:   size,
		Tag:    tag,
	})

	a.stats.TotalAllocations++
	a.stats.TotalBytesAlloc += size
	a.stats.PaddingBytes += padding
	if size > a.stats.LargestAlloc {
		a.stats.LargestAlloc = size
	}

	return offset, nil
}

// EOF returns the current end-of-file offset.
func (a *Allocator) EOF() int64 {
	return a.eof
}

// Stats returns a copy of the allocation statistics.
func (a *Allocator) Stats() Stats {
	return a.stats
}

// Validate checks that allocations don't overlap and are within bounds.
func (a *Allocator) Validate() error {
	for _, alloc := range a.allocations {
		if alloc.Offset < a.base {
			return fmt.Errorf("%s at %d is before base offset %d", alloc.Tag, alloc.Offset, a.base)
		}
		if alloc.Offset+alloc.Size > a.eof {
			return fmt.Errorf("%s at %d size %d extends past EOF %d", alloc.Tag, alloc.Offset, alloc.Size, a.eof)
		}
	}

	// Allocations are append-only, so each must start at or after the end
	// of the previous one.
	for i := 1; i < len(a.allocations); i++ {
		prev, cur := a.allocations[i-1], a.allocations[i]
		if cur.Offset < prev.Offset+prev.Size {
			return fmt.Errorf("overlapping allocations: %s [%d, size %d] and %s [%d, size %d]",
				prev.Tag, prev.Offset, prev.Size, cur.Tag, cur.Offset, cur.Size)
		}
	}

	return nil
}
