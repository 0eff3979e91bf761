package framedecode

import (
	"bytes"
	"fmt"
	"image"
	"sync"

	// JPEG codec registration for the MJPEG delegation path.
	_ "image/jpeg"

	"github.com/e7canasta/orion-care-sensor/modules/framedecode/internal/convert"
)

// Decoder converts raw frames to RGB rasters. It is stateless apart
// from a cache of parsed Bayer layouts (one parse per distinct format
// tag, not per frame) and is safe for concurrent use: a single Decoder
// serves any number of streams and goroutines.
type Decoder struct {
	mu      sync.RWMutex
	layouts map[PixelFormat]BayerLayout
}

// New creates a Decoder.
func New() *Decoder {
	return &Decoder{layouts: make(map[PixelFormat]BayerLayout)}
}

// Decode converts a raw frame to an 8-bit RGB raster.
//
// The frame is validated first (see Frame.Validate), then dispatched on
// its format class. Frame.Data is never modified, and the same frame
// always produces the same raster bytes. The returned raster carries
// the frame's Seq, Timestamp, SourceStream and TraceID.
//
// Compressed formats return ErrCompressedFormat: the raw path never
// hides a codec. Route those frames through DecodeImage or an external
// decoder instead.
func (d *Decoder) Decode(frame Frame) (*Raster, error) {
	if err := frame.Validate(); err != nil {
		return nil, err
	}

	out := NewRaster(frame.Width, frame.Height)
	out.Seq = frame.Seq
	out.Timestamp = frame.Timestamp
	out.SourceStream = frame.SourceStream
	out.TraceID = frame.TraceID

	pixels := frame.Width * frame.Height
	switch class := frame.Format.Class(); class {
	case ClassPackedYUV:
		convert.YUYVToRGB(out.Pix, frame.Data, frame.Width, frame.Height)

	case ClassPackedRGB24:
		convert.SwapRGB24(out.Pix, frame.Data, pixels)

	case ClassPackedBGR24:
		// Memory order is already R,G,B.
		copy(out.Pix, frame.Data[:3*pixels])

	case ClassPackedXRGB32:
		convert.XRGB32ToRGB(out.Pix, frame.Data, pixels)

	case ClassBayer:
		layout, err := d.bayerLayout(frame.Format)
		if err != nil {
			return nil, err
		}
		plane := convert.BayerPlane(frame.Data, pixels, layout.Bits)
		wide := Demosaic(plane, frame.Width, frame.Height, layout.Offsets())
		convert.NarrowRGB16(out.Pix, wide)

	case ClassCompressed:
		return nil, fmt.Errorf("framedecode: decode %q frame: %w", frame.Format, ErrCompressedFormat)

	default:
		// Validate rejects unknown formats, so this arm is unreachable;
		// kept so the dispatch stays total if validation ever changes.
		return nil, fmt.Errorf("framedecode: decode %q frame: %w", frame.Format, ErrUnsupportedFormat)
	}

	return out, nil
}

// DecodeImage converts a frame to a standard image.
//
// Raw classes decode through Decode and bridge via Raster.ToImage.
// Compressed frames feed the registered image codecs (JPEG for MJPEG);
// codec failures are wrapped. This is the collaborator boundary the raw
// decode path refuses to cross.
func (d *Decoder) DecodeImage(frame Frame) (image.Image, error) {
	if frame.Format.Class() != ClassCompressed {
		raster, err := d.Decode(frame)
		if err != nil {
			return nil, err
		}
		return raster.ToImage(), nil
	}

	if err := frame.Validate(); err != nil {
		return nil, err
	}
	img, _, err := image.Decode(bytes.NewReader(frame.Data))
	if err != nil {
		return nil, fmt.Errorf("framedecode: decode %q frame via image codec: %w", frame.Format, err)
	}
	return img, nil
}

// bayerLayout returns the parsed layout for a Bayer format, consulting
// the cache first. Reads take the shared lock; a miss upgrades to the
// exclusive lock only for the insert.
func (d *Decoder) bayerLayout(f PixelFormat) (BayerLayout, error) {
	d.mu.RLock()
	layout, ok := d.layouts[f]
	d.mu.RUnlock()
	if ok {
		return layout, nil
	}

	layout, err := f.BayerLayout()
	if err != nil {
		return BayerLayout{}, err
	}

	d.mu.Lock()
	d.layouts[f] = layout
	d.mu.Unlock()
	return layout, nil
}
