package framedecode

import (
	"errors"

	"github.com/e7canasta/orion-care-sensor/modules/framedecode/internal/framefile"
)

// Sentinel errors for the decode, pipeline and container layers.
//
// Call sites wrap these with fmt.Errorf("framedecode: ...: %w", err),
// attaching the offending value (format tag, byte counts, bit depth).
// Match with errors.Is, never by string.
var (
	// ErrUnsupportedFormat is returned for a pixel format tag this module
	// cannot decode. Terminal for the stream: decoding is deterministic,
	// so a retry reproduces the identical failure.
	ErrUnsupportedFormat = errors.New("framedecode: unsupported pixel format")

	// ErrUnsupportedBitDepth is returned for a Bayer tag whose bit depth
	// is outside {8, 10, 12}.
	ErrUnsupportedBitDepth = errors.New("framedecode: unsupported bayer bit depth")

	// ErrMalformedPattern is returned for a Bayer tag whose mosaic pattern
	// is not a 2x2 arrangement of exactly one R, one B and two G cells.
	// Indicates a configuration bug upstream, not a runtime condition.
	ErrMalformedPattern = errors.New("framedecode: malformed bayer mosaic pattern")

	// ErrGeometryMismatch is returned when a frame's buffer is too short
	// for its declared format and dimensions, or the dimensions themselves
	// violate the format's constraints (odd width for YUYV, odd Bayer
	// geometry, non-positive sizes).
	ErrGeometryMismatch = errors.New("framedecode: frame geometry mismatch")

	// ErrCompressedFormat is returned by Decode for compressed formats.
	// The raw decode path never hides a codec; route compressed frames
	// through DecodeImage or an external decoder.
	ErrCompressedFormat = errors.New("framedecode: compressed format requires codec decode")

	// ErrPipelineClosed is returned by pipeline operations after Stop.
	ErrPipelineClosed = errors.New("framedecode: pipeline closed")
)

// ErrBadMagic is returned when a frame container does not start with the
// ORNFRAME magic. Re-exported from the container codec, which performs
// the check.
var ErrBadMagic = framefile.ErrBadMagic
