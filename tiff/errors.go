// Package tiff provides a pure Go reader and writer for uncompressed,
// strip-based TIFF files.
package tiff

import (
	"errors"

	"github.com/robert-malhotra/go-tinytiff/internal/alloc"
	"github.com/robert-malhotra/go-tinytiff/internal/errs"
)

// FormatError reports that the input is not a TIFF file this package can
// read. Use errors.As to test for the whole family and errors.Is for a
// specific kind.
type FormatError = errs.FormatError

// Format errors
const (
	ErrBadByteOrderMark       = errs.ErrBadByteOrderMark
	ErrBadMagic               = errs.ErrBadMagic
	ErrTruncatedFile          = errs.ErrTruncatedFile
	ErrMissingTag             = errs.ErrMissingTag
	ErrCompressionUnsupported = errs.ErrCompressionUnsupported
	ErrMalformedIFDEntry      = errs.ErrMalformedIFDEntry
)

// Common errors
var (
	ErrIO                  = errs.ErrIO
	ErrClosed              = errors.New("tiff: session is closed")
	ErrDescriptionTooLong  = errors.New("tiff: image description exceeds reserved capacity")
	ErrDescriptionNotASCII = errors.New("tiff: image description is not ASCII")
	ErrSampleOutOfRange    = errors.New("tiff: sample index out of range")
	ErrSampleSizeMismatch  = errs.ErrSampleSizeMismatch
	ErrBufferSizeMismatch  = errs.ErrBufferSizeMismatch
	ErrUnsupportedBitDepth = errs.ErrUnsupportedBitDepth
	ErrUnsupportedType     = errs.ErrUnsupportedType
	ErrFileTooLarge        = alloc.ErrFileTooLarge
)

// DefaultDescriptionCapacity is the number of bytes reserved for the
// ImageDescription of a written file, including its NUL terminator.
const DefaultDescriptionCapacity = 1024
