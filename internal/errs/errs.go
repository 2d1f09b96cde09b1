// Package errs defines the error taxonomy shared by the TIFF codec layers.
//
// Format errors are values of the string type [FormatError], so callers can
// match a specific kind with errors.Is and the whole family with errors.As.
package errs

import (
	"errors"
	"fmt"
)

// FormatError reports that the input is not a valid TIFF file in the
// subset this codec understands.
type FormatError string

func (e FormatError) Error() string {
	return "tiff: invalid format: " + string(e)
}

// Format errors
const (
	ErrBadByteOrderMark       = FormatError("bad byte order mark")
	ErrBadMagic               = FormatError("bad magic number")
	ErrTruncatedFile          = FormatError("truncated file")
	ErrMissingTag             = FormatError("missing required tag")
	ErrCompressionUnsupported = FormatError("compression not supported")
	ErrMalformedIFDEntry      = FormatError("malformed IFD entry")
)

// ErrIO wraps failures at the operating system boundary.
var ErrIO = errors.New("tiff: I/O error")

// IO wraps err so that it matches both ErrIO and the original cause.
func IO(op string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w: %w", op, ErrIO, err)
}

// Malformed returns an ErrMalformedIFDEntry carrying a description.
func Malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrMalformedIFDEntry, fmt.Sprintf(format, args...))
}

// Usage errors
var (
	ErrUnsupportedBitDepth = errors.New("tiff: unsupported bit depth")
	ErrSampleSizeMismatch  = errors.New("tiff: element size does not match bits per sample")
	ErrBufferSizeMismatch  = errors.New("tiff: buffer length does not match image size")
	ErrUnsupportedType     = errors.New("tiff: unsupported element type")
)
