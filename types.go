package framedecode

import (
	"fmt"
	"image"
	"time"
)

// Frame is a raw sensor frame as handed over by a capture plane.
//
// The same shape flows between Orion modules: Seq, Timestamp,
// SourceStream and TraceID survive decoding and reappear on the Raster,
// so downstream telemetry correlates raw and decoded frames.
//
// Data is treated as immutable: decoding never writes to it, and callers
// must not modify it after submitting the frame.
type Frame struct {
	// Seq is the monotonic sequence number assigned by the producer
	Seq uint64
	// Timestamp is when the frame was captured
	Timestamp time.Time
	// Format is the native pixel format of Data
	Format PixelFormat
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Data contains the raw buffer in Format's memory layout
	Data []byte
	// SourceStream identifies the logical source (e.g. "main",
	// "detection", or a file path for replays)
	SourceStream string
	// TraceID is a unique identifier for distributed tracing; the
	// pipeline assigns one when empty
	TraceID string
}

// Bounds returns the frame geometry as an image rectangle.
func (f Frame) Bounds() image.Rectangle {
	return image.Rect(0, 0, f.Width, f.Height)
}

// Validate checks that the declared geometry and the buffer agree before
// any pixel work happens. Decoder.Decode and FrameWriter.Write both call
// it, so a torn frame fails identically on either path.
//
// Rules:
//   - dimensions must be positive and total at most MaxFramePixels
//   - len(Data) must cover PixelFormat.FrameBytes (longer buffers are
//     tolerated: capture planes pad; the excess is ignored)
//   - YUYV requires even width (macropixels pair two pixels)
//   - Bayer requires even width and height (2x2 tiles)
//   - compressed frames skip the size check but must be non-empty
//   - unknown formats fail with ErrUnsupportedFormat
func (f Frame) Validate() error {
	switch class := f.Format.Class(); class {
	case ClassCompressed:
		if f.Width <= 0 || f.Height <= 0 {
			return fmt.Errorf("framedecode: validate %q frame: dimensions %dx%d: %w",
				f.Format, f.Width, f.Height, ErrGeometryMismatch)
		}
		if f.Width > MaxFramePixels || f.Height > MaxFramePixels ||
			uint64(f.Width)*uint64(f.Height) > MaxFramePixels {
			return fmt.Errorf("framedecode: validate %q frame: dimensions %dx%d exceed %d pixels: %w",
				f.Format, f.Width, f.Height, MaxFramePixels, ErrGeometryMismatch)
		}
		if len(f.Data) == 0 {
			return fmt.Errorf("framedecode: validate %q frame: empty compressed buffer: %w",
				f.Format, ErrGeometryMismatch)
		}
		return nil

	case ClassPackedYUV:
		if f.Width%2 != 0 {
			return fmt.Errorf("framedecode: validate %q frame: odd width %d pairs no macropixel: %w",
				f.Format, f.Width, ErrGeometryMismatch)
		}

	case ClassBayer:
		if f.Width%2 != 0 || f.Height%2 != 0 {
			return fmt.Errorf("framedecode: validate %q frame: dimensions %dx%d break 2x2 tiling: %w",
				f.Format, f.Width, f.Height, ErrGeometryMismatch)
		}

	case ClassUnknown:
		// S-prefixed tags enter the Bayer path even when broken, so the
		// caller sees which part of the tag is wrong (pattern vs depth)
		// instead of a generic unsupported-format error.
		if len(f.Format) > 0 && f.Format[0] == 'S' {
			if _, err := f.Format.BayerLayout(); err != nil {
				return err
			}
		}
		return fmt.Errorf("framedecode: validate frame: format %q: %w", f.Format, ErrUnsupportedFormat)
	}

	want, err := f.Format.FrameBytes(f.Width, f.Height)
	if err != nil {
		return err
	}
	if len(f.Data) < want {
		return fmt.Errorf("framedecode: validate %q frame: buffer %d bytes, need %d for %dx%d: %w",
			f.Format, len(f.Data), want, f.Width, f.Height, ErrGeometryMismatch)
	}
	return nil
}
