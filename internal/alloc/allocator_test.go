package alloc

import (
	"errors"
	"testing"
)

func mustAlloc(t *testing.T, a *Allocator, size int64, tag string) int64 {
	t.Helper()
	off, err := a.AllocAligned(size, 2, tag)
	if err != nil {
		t.Fatalf("AllocAligned(%d, 2, %q) failed: %v", size, tag, err)
	}
	return off
}

func TestAllocatorBasic(t *testing.T) {
	a := New(1024)

	// First allocation
	off1 := mustAlloc(t, a, 100, "strip 0")
	if off1 != 1024 {
		t.Errorf("first allocation: got %d, want %d", off1, 1024)
	}

	// Second allocation
	off2 := mustAlloc(t, a, 200, "ifd 1")
	if off2 != 1124 {
		t.Errorf("second allocation: got %d, want %d", off2, 1124)
	}

	if a.EOF() != 1324 {
		t.Errorf("EOF: got %d, want %d", a.EOF(), 1324)
	}
}

func TestAllocatorZeroSize(t *testing.T) {
	a := New(101)

	off := mustAlloc(t, a, 0, "empty")
	if off != 102 {
		t.Errorf("zero allocation: got %d, want %d", off, 102)
	}

	// EOF should not change
	if a.EOF() != 101 {
		t.Errorf("EOF after zero alloc: got %d, want %d", a.EOF(), 101)
	}
	if a.Stats().TotalAllocations != 0 {
		t.Errorf("zero allocation should not be recorded")
	}
}

func TestAllocatorAligned(t *testing.T) {
	a := New(100)

	mustAlloc(t, a, 13, "strip 0") // Now at 113

	off := mustAlloc(t, a, 50, "ifd 1")
	if off != 114 {
		t.Errorf("aligned allocation: got %d, want %d", off, 114)
	}
	if a.Stats().PaddingBytes != 1 {
		t.Errorf("PaddingBytes: got %d, want 1", a.Stats().PaddingBytes)
	}

	// Already aligned: no padding
	off = mustAlloc(t, a, 10, "strip 1")
	if off != 164 {
		t.Errorf("aligned allocation: got %d, want 164", off)
	}

	// Alignment 1 packs blocks back to back.
	off, err := a.AllocAligned(3, 1, "strip 2")
	if err != nil {
		t.Fatal(err)
	}
	if off != 174 || a.EOF() != 177 {
		t.Errorf("unaligned allocation at %d, EOF %d; want 174, 177", off, a.EOF())
	}
}

func TestAllocatorStats(t *testing.T) {
	a := New(8)

	mustAlloc(t, a, 100, "a")
	mustAlloc(t, a, 201, "b")
	mustAlloc(t, a, 50, "c")

	stats := a.Stats()
	if stats.TotalAllocations != 3 {
		t.Errorf("TotalAllocations: got %d, want 3", stats.TotalAllocations)
	}
	if stats.TotalBytesAlloc != 351 {
		t.Errorf("TotalBytesAlloc: got %d, want 351", stats.TotalBytesAlloc)
	}
	if stats.PaddingBytes != 1 {
		t.Errorf("PaddingBytes: got %d, want 1", stats.PaddingBytes)
	}
	if stats.LargestAlloc != 201 {
		t.Errorf("LargestAlloc: got %d, want 201", stats.LargestAlloc)
	}
}

func TestAllocatorValidate(t *testing.T) {
	a := New(100)

	mustAlloc(t, a, 51, "strip 0")
	mustAlloc(t, a, 101, "ifd 1")
	mustAlloc(t, a, 75, "strip 1")

	if err := a.Validate(); err != nil {
		t.Errorf("valid allocations should not error: %v", err)
	}
}

func TestAllocatorValidateOverlap(t *testing.T) {
	a := New(100)
	mustAlloc(t, a, 10, "strip 0")
	mustAlloc(t, a, 10, "ifd 1")

	// Corrupt the bookkeeping directly.
	a.allocations[1].Offset = 105
	if err := a.Validate(); err == nil {
		t.Error("expected overlap error")
	}

	a.allocations[1].Offset = 50
	if err := a.Validate(); err == nil {
		t.Error("expected error for a block before base")
	}
}

func TestAllocatorOffsetLimit(t *testing.T) {
	a := New(MaxOffset - 11)

	if _, err := a.AllocAligned(11, 2, "strip 0"); err != nil {
		t.Fatalf("allocation ending at the limit should succeed: %v", err)
	}
	_, err := a.AllocAligned(1, 1, "strip 1")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if a.EOF() != MaxOffset {
		t.Errorf("failed allocation moved EOF to %d", a.EOF())
	}
}

func TestAllocatorPaddingPastLimit(t *testing.T) {
	a := New(MaxOffset - 2)

	// Fits unpadded, but the padding byte pushes it past the limit.
	_, err := a.AllocAligned(2, 2, "ifd 1")
	if !errors.Is(err, ErrFileTooLarge) {
		t.Errorf("expected ErrFileTooLarge, got %v", err)
	}
	if a.EOF() != MaxOffset-2 {
		t.Errorf("failed allocation moved EOF to %d", a.EOF())
	}
}

func TestAllocatorNegativeSize(t *testing.T) {
	a := New(8)
	if _, err := a.AllocAligned(-1, 2, "bad"); err == nil {
		t.Error("expected error for negative size")
	}
}
