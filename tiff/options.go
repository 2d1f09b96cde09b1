package tiff

import (
	"encoding/binary"
	"log/slog"
)

// Option configures a Reader or a Writer. Options that only apply to one
// kind of session are ignored by the other.
type Option func(*options)

type options struct {
	logger *slog.Logger

	// reader
	mmap bool

	// writer
	order        binary.ByteOrder
	descCapacity int
	truncateDesc bool
}

func defaultOptions() *options {
	return &options{
		logger:       slog.New(slog.DiscardHandler),
		descCapacity: DefaultDescriptionCapacity,
	}
}

func applyOptions(opts []Option) *options {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithLogger routes the debug records of a session to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMemoryMap makes Open map the file into memory instead of issuing a
// read call per strip. It has no effect on NewReader.
func WithMemoryMap() Option {
	return func(o *options) {
		o.mmap = true
	}
}

// WithByteOrder sets the byte order of a written file. The default is the
// host byte order. Only binary.LittleEndian and binary.BigEndian are
// accepted.
func WithByteOrder(order binary.ByteOrder) Option {
	return func(o *options) {
		if order == binary.LittleEndian || order == binary.BigEndian {
			o.order = order
		}
	}
}

// WithDescriptionCapacity sets the number of bytes reserved for the
// ImageDescription of a written file, including the NUL terminator.
// Values below 5 are ignored so the field always stays out-of-line.
func WithDescriptionCapacity(n int) Option {
	return func(o *options) {
		if n > 4 {
			o.descCapacity = n
		}
	}
}

// WithDescriptionTruncation makes Writer.Close cut an over-long
// description to the reserved capacity instead of failing with
// ErrDescriptionTooLong.
func WithDescriptionTruncation() Option {
	return func(o *options) {
		o.truncateDesc = true
	}
}
