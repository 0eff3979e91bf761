package framedecode

import (
	"github.com/e7canasta/orion-care-sensor/modules/framedecode/internal/demosaic"
)

// CellOffset is re-exported from the internal demosaic package so that
// BayerLayout and the demosaic entry point share one type.
// See internal/demosaic for full documentation.
type CellOffset = demosaic.CellOffset

// Offsets is re-exported from the internal demosaic package.
// See internal/demosaic for full documentation.
type Offsets = demosaic.Offsets

// Demosaic reconstructs interleaved 16-bit RGB from a single-channel
// Bayer mosaic using the 3x3 neighborhood average. plane holds
// width*height samples normalized to the full 16-bit range; off locates
// the R, G0, G1 and B cells inside the 2x2 tile (see
// PixelFormat.BayerLayout).
//
// Most callers want Decoder.Decode, which handles bit-depth
// normalization and the final narrowing to 8 bits. The raw entry point
// is exported for callers that keep the 16-bit intermediate (analysis,
// custom tone mapping).
func Demosaic(plane []uint16, width, height int, off Offsets) []uint16 {
	return demosaic.Demosaic(plane, width, height, off)
}
