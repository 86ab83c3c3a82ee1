package protocol

import (
	"errors"

	werrors "github.com/vango-dev/weave/internal/errors"
)

// Default decoding limits.
const (
	// DefaultMaxAllocation bounds a single string or byte slice (4MB).
	DefaultMaxAllocation = 4 * 1024 * 1024

	// DefaultMaxCollection bounds the item count of any list.
	DefaultMaxCollection = 100_000

	// DefaultMaxDepth bounds the nesting of encoded trees.
	DefaultMaxDepth = 256

	// DefaultMaxPayload bounds a frame's payload (16MB).
	DefaultMaxPayload = 16 * 1024 * 1024
)

// Decoding errors. They surface wrapped in coded errors: malformed input
// as E005, input over a limit as E040.
var (
	ErrVarintOverflow     = errors.New("protocol: varint overflow")
	ErrAllocationTooLarge = errors.New("protocol: allocation size exceeds limit")
	ErrCollectionTooLarge = errors.New("protocol: collection count exceeds limit")
	ErrMaxDepthExceeded   = errors.New("protocol: maximum depth exceeded")
	ErrFrameTooLarge      = errors.New("protocol: frame payload too large")
	ErrUnknownOp          = errors.New("protocol: unknown opcode")
	ErrTrailingBytes      = errors.New("protocol: trailing bytes")
)

// Limits bounds what a decoder accepts.
type Limits struct {
	MaxAllocation int
	MaxCollection int
	MaxDepth      int
	MaxPayload    int
}

// DefaultLimits returns the default decoding limits.
func DefaultLimits() Limits {
	return Limits{
		MaxAllocation: DefaultMaxAllocation,
		MaxCollection: DefaultMaxCollection,
		MaxDepth:      DefaultMaxDepth,
		MaxPayload:    DefaultMaxPayload,
	}
}

// orDefault fills zero fields from DefaultLimits.
func (l Limits) orDefault() Limits {
	d := DefaultLimits()
	if l.MaxAllocation <= 0 {
		l.MaxAllocation = d.MaxAllocation
	}
	if l.MaxCollection <= 0 {
		l.MaxCollection = d.MaxCollection
	}
	if l.MaxDepth <= 0 {
		l.MaxDepth = d.MaxDepth
	}
	if l.MaxPayload <= 0 {
		l.MaxPayload = d.MaxPayload
	}
	return l
}

// decodeError wraps err in the coded error for its kind, naming what was
// being decoded.
func decodeError(what string, err error) error {
	if err == nil {
		return nil
	}
	var coded *werrors.Error
	if errors.As(err, &coded) {
		return err
	}
	code := "E005"
	if errors.Is(err, ErrAllocationTooLarge) || errors.Is(err, ErrCollectionTooLarge) ||
		errors.Is(err, ErrMaxDepthExceeded) || errors.Is(err, ErrFrameTooLarge) {
		code = "E040"
	}
	return werrors.New(code).WithDetail(what).Wrap(err)
}
