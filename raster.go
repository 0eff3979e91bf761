package framedecode

import (
	"image"
	"time"

	"golang.org/x/image/draw"
)

// Raster is a decoded frame: interleaved 8-bit RGB rows plus the
// metadata carried over from the source Frame. It is the handoff type
// between decoding and consumers (renderers, AI workers, recorders).
type Raster struct {
	// Width in pixels
	Width int
	// Height in pixels
	Height int
	// Pix holds R,G,B bytes row by row, len = 3*Width*Height
	Pix []uint8

	// Seq is carried from the source frame
	Seq uint64
	// Timestamp is carried from the source frame
	Timestamp time.Time
	// SourceStream is carried from the source frame
	SourceStream string
	// TraceID is carried from the source frame
	TraceID string
}

// NewRaster allocates a zeroed raster of the given geometry.
func NewRaster(width, height int) *Raster {
	return &Raster{
		Width:  width,
		Height: height,
		Pix:    make([]uint8, 3*width*height),
	}
}

// clone allocates a raster of the given geometry carrying the
// receiver's metadata.
func (r *Raster) clone(width, height int) *Raster {
	out := NewRaster(width, height)
	out.Seq = r.Seq
	out.Timestamp = r.Timestamp
	out.SourceStream = r.SourceStream
	out.TraceID = r.TraceID
	return out
}

// At returns the RGB sample at (x, y). Out-of-bounds coordinates return
// black, matching the standard image package convention.
func (r *Raster) At(x, y int) (uint8, uint8, uint8) {
	if x < 0 || y < 0 || x >= r.Width || y >= r.Height {
		return 0, 0, 0
	}
	i := (y*r.Width + x) * 3
	return r.Pix[i], r.Pix[i+1], r.Pix[i+2]
}

// ToImage converts the raster to a standard RGBA image with opaque
// alpha, ready for the image/png and image/jpeg encoders.
func (r *Raster) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, r.Width, r.Height))
	n := r.Width * r.Height
	s, d := 0, 0
	for p := 0; p < n; p++ {
		img.Pix[d] = r.Pix[s]
		img.Pix[d+1] = r.Pix[s+1]
		img.Pix[d+2] = r.Pix[s+2]
		img.Pix[d+3] = 0xFF
		s += 3
		d += 4
	}
	return img
}

// RasterFromImage converts any image to a raster, collapsing alpha.
// The inverse bridge to ToImage; used by the compressed decode path and
// file replays. Metadata fields start empty.
func RasterFromImage(img image.Image) *Raster {
	b := img.Bounds()
	out := NewRaster(b.Dx(), b.Dy())

	if rgba, ok := img.(*image.RGBA); ok {
		i := 0
		for y := b.Min.Y; y < b.Max.Y; y++ {
			s := rgba.PixOffset(b.Min.X, y)
			for x := b.Min.X; x < b.Max.X; x++ {
				out.Pix[i] = rgba.Pix[s]
				out.Pix[i+1] = rgba.Pix[s+1]
				out.Pix[i+2] = rgba.Pix[s+2]
				i += 3
				s += 4
			}
		}
		return out
	}

	i := 0
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			cr, cg, cb, _ := img.At(x, y).RGBA()
			out.Pix[i] = uint8(cr >> 8)
			out.Pix[i+1] = uint8(cg >> 8)
			out.Pix[i+2] = uint8(cb >> 8)
			i += 3
		}
	}
	return out
}

// FlipH returns a new raster mirrored around the vertical axis.
// Applying it twice restores the original. Metadata is carried.
func (r *Raster) FlipH() *Raster {
	out := r.clone(r.Width, r.Height)
	for y := 0; y < r.Height; y++ {
		row := y * r.Width * 3
		for x := 0; x < r.Width; x++ {
			s := row + x*3
			d := row + (r.Width-1-x)*3
			out.Pix[d] = r.Pix[s]
			out.Pix[d+1] = r.Pix[s+1]
			out.Pix[d+2] = r.Pix[s+2]
		}
	}
	return out
}

// FlipV returns a new raster mirrored around the horizontal axis.
// Applying it twice restores the original. Metadata is carried.
func (r *Raster) FlipV() *Raster {
	out := r.clone(r.Width, r.Height)
	stride := r.Width * 3
	for y := 0; y < r.Height; y++ {
		copy(out.Pix[(r.Height-1-y)*stride:], r.Pix[y*stride:(y+1)*stride])
	}
	return out
}

// Rotate180 returns a new raster rotated half a turn: equivalent to
// FlipH followed by FlipV, in a single pass.
func (r *Raster) Rotate180() *Raster {
	out := r.clone(r.Width, r.Height)
	n := r.Width * r.Height
	for p := 0; p < n; p++ {
		s := p * 3
		d := (n - 1 - p) * 3
		out.Pix[d] = r.Pix[s]
		out.Pix[d+1] = r.Pix[s+1]
		out.Pix[d+2] = r.Pix[s+2]
	}
	return out
}

// Resize returns the raster scaled to the given geometry with bilinear
// interpolation. Returns the receiver unchanged when the geometry
// already matches; never mutates the receiver otherwise. Metadata is
// carried.
func (r *Raster) Resize(width, height int) *Raster {
	if width == r.Width && height == r.Height {
		return r
	}
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	src := r.ToImage()
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := RasterFromImage(dst)
	out.Seq = r.Seq
	out.Timestamp = r.Timestamp
	out.SourceStream = r.SourceStream
	out.TraceID = r.TraceID
	return out
}
