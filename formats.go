package framedecode

import (
	"fmt"
	"strconv"
	"strings"
)

// PixelFormat identifies the native memory layout of a raw frame buffer.
//
// Tags follow libcamera naming: packed formats name the little-endian
// packed value ("RGB888" is the 24-bit value 0xRRGGBB, stored B,G,R in
// memory), Bayer formats encode the mosaic pattern and bit depth in the
// tag itself ("SRGGB10" = R,G/G,B tiles, 10 significant bits).
//
// Unknown tags are legal values; they classify as ClassUnknown and fail
// at decode time rather than at construction.
type PixelFormat string

// Packed and compressed formats.
const (
	// FormatYUYV is packed YUV 4:2:2: macropixels of Y0,U,Y1,V covering
	// two horizontal pixels, 2 bytes per pixel.
	FormatYUYV PixelFormat = "YUYV"

	// FormatRGB888 is 24-bit RGB stored B,G,R in memory.
	FormatRGB888 PixelFormat = "RGB888"

	// FormatBGR888 is 24-bit BGR stored R,G,B in memory.
	FormatBGR888 PixelFormat = "BGR888"

	// FormatARGB8888 is 32-bit ARGB stored B,G,R,A in memory.
	FormatARGB8888 PixelFormat = "ARGB8888"

	// FormatXRGB8888 is FormatARGB8888 with the alpha byte undefined.
	FormatXRGB8888 PixelFormat = "XRGB8888"

	// FormatMJPEG is a JPEG-compressed frame. Decoding is delegated to
	// an image codec; see Decoder.DecodeImage.
	FormatMJPEG PixelFormat = "MJPEG"
)

// Raw Bayer formats, 8 bits per sample. One byte per photosite.
const (
	FormatSRGGB8 PixelFormat = "SRGGB8"
	FormatSGRBG8 PixelFormat = "SGRBG8"
	FormatSGBRG8 PixelFormat = "SGBRG8"
	FormatSBGGR8 PixelFormat = "SBGGR8"
)

// Raw Bayer formats, 10 and 12 bits per sample. Samples occupy
// little-endian 16-bit container words, two bytes per photosite.
const (
	FormatSRGGB10 PixelFormat = "SRGGB10"
	FormatSGRBG10 PixelFormat = "SGRBG10"
	FormatSGBRG10 PixelFormat = "SGBRG10"
	FormatSBGGR10 PixelFormat = "SBGGR10"
	FormatSRGGB12 PixelFormat = "SRGGB12"
	FormatSGRBG12 PixelFormat = "SGRBG12"
	FormatSGBRG12 PixelFormat = "SGBRG12"
	FormatSBGGR12 PixelFormat = "SBGGR12"
)

// FormatClass partitions pixel formats by decode strategy. Dispatch is
// closed-set: every format lands in exactly one class, unknown tags land
// in ClassUnknown and are never silently passed through.
type FormatClass int

const (
	// ClassUnknown marks tags this module cannot decode.
	ClassUnknown FormatClass = iota
	// ClassPackedYUV is YUYV 4:2:2.
	ClassPackedYUV
	// ClassPackedRGB24 is 24-bit with B,G,R memory order.
	ClassPackedRGB24
	// ClassPackedBGR24 is 24-bit with R,G,B memory order.
	ClassPackedBGR24
	// ClassPackedXRGB32 is 32-bit with B,G,R,A/X memory order.
	ClassPackedXRGB32
	// ClassCompressed marks codec-compressed frames (MJPEG).
	ClassCompressed
	// ClassBayer marks raw mosaic frames with a parseable S-tag.
	ClassBayer
)

// String returns a short lowercase name suitable for log attributes.
func (c FormatClass) String() string {
	switch c {
	case ClassPackedYUV:
		return "packed-yuv"
	case ClassPackedRGB24:
		return "packed-rgb24"
	case ClassPackedBGR24:
		return "packed-bgr24"
	case ClassPackedXRGB32:
		return "packed-xrgb32"
	case ClassCompressed:
		return "compressed"
	case ClassBayer:
		return "bayer"
	default:
		return "unknown"
	}
}

// BayerLayout is the geometry parsed from a Bayer format tag: the 2x2
// mosaic pattern, the significant bit depth, and the cell position of
// each color channel. Derived from the tag alone; there are no per-sensor
// tables.
type BayerLayout struct {
	// Pattern is the 4-character tile spelling, e.g. "RGGB".
	Pattern string
	// Bits is the significant sample depth: 8, 10 or 12.
	Bits int

	// Channel positions inside the 2x2 tile. G0 is the first green in
	// pattern string order, G1 the second.
	R  CellOffset
	G0 CellOffset
	G1 CellOffset
	B  CellOffset
}

// Offsets returns the channel positions in demosaic form.
func (l BayerLayout) Offsets() Offsets {
	return Offsets{R: l.R, G0: l.G0, G1: l.G1, B: l.B}
}

func (f PixelFormat) String() string { return string(f) }

// Class classifies the format for decode dispatch. A tag is ClassBayer
// only when its pattern and bit depth both parse; S-tags with a bad
// pattern or depth are ClassUnknown (Decode still surfaces the precise
// parse error for them).
func (f PixelFormat) Class() FormatClass {
	switch f {
	case FormatYUYV:
		return ClassPackedYUV
	case FormatRGB888:
		return ClassPackedRGB24
	case FormatBGR888:
		return ClassPackedBGR24
	case FormatARGB8888, FormatXRGB8888:
		return ClassPackedXRGB32
	case FormatMJPEG:
		return ClassCompressed
	}
	if _, err := f.BayerLayout(); err == nil {
		return ClassBayer
	}
	return ClassUnknown
}

// MaxFramePixels bounds the pixel count a single frame may claim
// (8192x8192). Sensor geometry sits far below it, and the bound keeps
// every derived byte size well inside the int range, so sizing
// arithmetic cannot wrap on absurd dimensions. At the widest layout of
// 4 bytes per pixel it matches the frame container's 256 MiB record
// cap.
const MaxFramePixels = 8192 * 8192

// FrameBytes returns the exact buffer size in bytes a frame of this
// format and geometry requires.
//
// Compressed formats have no fixed size and return ErrCompressedFormat;
// unknown formats return ErrUnsupportedFormat. Non-positive dimensions
// and geometries over MaxFramePixels are a geometry error regardless of
// format.
func (f PixelFormat) FrameBytes(width, height int) (int, error) {
	if width <= 0 || height <= 0 {
		return 0, fmt.Errorf("framedecode: frame bytes for %q: dimensions %dx%d: %w",
			f, width, height, ErrGeometryMismatch)
	}
	// Bound each factor before multiplying so the product cannot wrap.
	if width > MaxFramePixels || height > MaxFramePixels ||
		uint64(width)*uint64(height) > MaxFramePixels {
		return 0, fmt.Errorf("framedecode: frame bytes for %q: dimensions %dx%d exceed %d pixels: %w",
			f, width, height, MaxFramePixels, ErrGeometryMismatch)
	}
	switch f.Class() {
	case ClassPackedYUV:
		return width * height * 2, nil
	case ClassPackedRGB24, ClassPackedBGR24:
		return width * height * 3, nil
	case ClassPackedXRGB32:
		return width * height * 4, nil
	case ClassBayer:
		layout, err := f.BayerLayout()
		if err != nil {
			return 0, err
		}
		if layout.Bits == 8 {
			return width * height, nil
		}
		// 10/12-bit samples ride in 16-bit container words.
		return width * height * 2, nil
	case ClassCompressed:
		return 0, fmt.Errorf("framedecode: frame bytes for %q: no fixed size: %w",
			f, ErrCompressedFormat)
	default:
		return 0, fmt.Errorf("framedecode: frame bytes for %q: %w", f, ErrUnsupportedFormat)
	}
}

// BayerLayout parses the format tag as a Bayer tag: 'S', four pattern
// characters, then the decimal bit depth.
//
// The pattern must contain exactly one R, one B and two G cells, or the
// parse fails with ErrMalformedPattern. Depths outside {8, 10, 12} fail
// with ErrUnsupportedBitDepth. Pattern index i maps to tile position
// (Col, Row) = (i mod 2, i div 2).
func (f PixelFormat) BayerLayout() (BayerLayout, error) {
	s := string(f)
	if len(s) < 6 || s[0] != 'S' {
		return BayerLayout{}, fmt.Errorf("framedecode: bayer tag %q: %w", s, ErrMalformedPattern)
	}

	pattern := s[1:5]
	var nr, ng, nb int
	for i := 0; i < len(pattern); i++ {
		switch pattern[i] {
		case 'R':
			nr++
		case 'G':
			ng++
		case 'B':
			nb++
		default:
			return BayerLayout{}, fmt.Errorf("framedecode: bayer tag %q: pattern %q: %w",
				s, pattern, ErrMalformedPattern)
		}
	}
	if nr != 1 || ng != 2 || nb != 1 {
		return BayerLayout{}, fmt.Errorf("framedecode: bayer tag %q: pattern %q: %w",
			s, pattern, ErrMalformedPattern)
	}

	bits, err := strconv.Atoi(s[5:])
	if err != nil {
		return BayerLayout{}, fmt.Errorf("framedecode: bayer tag %q: bit depth %q: %w",
			s, s[5:], ErrMalformedPattern)
	}
	switch bits {
	case 8, 10, 12:
	default:
		return BayerLayout{}, fmt.Errorf("framedecode: bayer tag %q: bit depth %d: %w",
			s, bits, ErrUnsupportedBitDepth)
	}

	cell := func(i int) CellOffset { return CellOffset{Col: i % 2, Row: i / 2} }
	ri := strings.IndexByte(pattern, 'R')
	g0 := strings.IndexByte(pattern, 'G')
	g1 := strings.IndexByte(pattern[g0+1:], 'G') + g0 + 1
	bi := strings.IndexByte(pattern, 'B')

	return BayerLayout{
		Pattern: pattern,
		Bits:    bits,
		R:       cell(ri),
		G0:      cell(g0),
		G1:      cell(g1),
		B:       cell(bi),
	}, nil
}

// V4L2 FourCC bridge. libcamera names the packed little-endian value
// while V4L2 names the memory byte order, so the 24-bit formats cross
// over: FormatRGB888 (B,G,R memory) is V4L2 BGR3 and FormatBGR888 is
// RGB3.
var fourCCByFormat = map[PixelFormat]uint32{
	FormatYUYV:     fourCC("YUYV"),
	FormatRGB888:   fourCC("BGR3"),
	FormatBGR888:   fourCC("RGB3"),
	FormatARGB8888: fourCC("AR24"),
	FormatXRGB8888: fourCC("XR24"),
	FormatMJPEG:    fourCC("MJPG"),

	FormatSRGGB8: fourCC("RGGB"),
	FormatSGRBG8: fourCC("GRBG"),
	FormatSGBRG8: fourCC("GBRG"),
	FormatSBGGR8: fourCC("BA81"),

	FormatSRGGB10: fourCC("RG10"),
	FormatSGRBG10: fourCC("BA10"),
	FormatSGBRG10: fourCC("GB10"),
	FormatSBGGR10: fourCC("BG10"),

	FormatSRGGB12: fourCC("RG12"),
	FormatSGRBG12: fourCC("BA12"),
	FormatSGBRG12: fourCC("GB12"),
	FormatSBGGR12: fourCC("BG12"),
}

var formatByFourCC = make(map[uint32]PixelFormat, len(fourCCByFormat))

func init() {
	for f, cc := range fourCCByFormat {
		formatByFourCC[cc] = f
	}
}

func fourCC(s string) uint32 {
	return uint32(s[0]) | uint32(s[1])<<8 | uint32(s[2])<<16 | uint32(s[3])<<24
}

// FourCC returns the V4L2 FourCC code for the format, for capture-plane
// interop. The second return is false for formats without a V4L2
// equivalent (including unknown tags).
func (f PixelFormat) FourCC() (uint32, bool) {
	cc, ok := fourCCByFormat[f]
	return cc, ok
}

// FormatFromFourCC returns the PixelFormat for a V4L2 FourCC code.
func FormatFromFourCC(cc uint32) (PixelFormat, bool) {
	f, ok := formatByFourCC[cc]
	return f, ok
}
