// Package demosaic reconstructs full-color RGB from raw Bayer mosaics
// using a neighborhood-average method.
//
// A Bayer sensor samples one color per photosite, tiled in 2x2 cells
// (one red, one blue, two green). Reconstruction scatters the mosaic into
// three sparse channel planes, then fills every missing sample with the
// average of the populated samples inside a 3x3 window.
//
// The method is deliberately naive: no edge-aware interpolation, no
// channel correlation. It is deterministic, allocation-bounded, and fast
// enough for preview and inference paths. Higher-quality demosaic belongs
// in an ISP, not here.
package demosaic

// CellOffset is the position of one color channel inside the 2x2 Bayer
// tile. Col and Row are each 0 or 1.
type CellOffset struct {
	Col int
	Row int
}

// Offsets locates the four channel cells of a Bayer pattern inside its
// 2x2 tile. The two green cells occupy distinct positions and deposit
// into a single shared green plane.
type Offsets struct {
	R  CellOffset
	G0 CellOffset
	G1 CellOffset
	B  CellOffset
}

// Demosaic converts a single-channel Bayer mosaic into interleaved RGB.
//
// plane holds width*height samples in row-major order, already normalized
// to the full 16-bit range (callers shift narrower bit depths up front).
// The result holds 3*width*height values, R,G,B per pixel, still 16-bit.
//
// Algorithm:
//  1. Scatter the mosaic into three sparse channel planes, each padded
//     with a 1-pixel zero border. A presence mask per channel marks the
//     populated cells.
//  2. Every output sample is the 3x3 window sum of the channel plane
//     divided by the 3x3 window sum of its mask (integer division).
//     The zero border contributes nothing to either sum, so edge pixels
//     average over the visible part of the window only.
//
// A window whose mask sum is zero (possible only for degenerate
// geometries) yields 0 rather than dividing by zero.
//
// Contract: width and height are positive and even, and len(plane) is at
// least width*height. Callers validate geometry before calling.
func Demosaic(plane []uint16, width, height int, off Offsets) []uint16 {
	pw := width + 2
	ph := height + 2

	rp := make([]uint16, pw*ph)
	gp := make([]uint16, pw*ph)
	bp := make([]uint16, pw*ph)
	rm := make([]uint8, pw*ph)
	gm := make([]uint8, pw*ph)
	bm := make([]uint8, pw*ph)

	scatter(rp, rm, plane, width, height, off.R)
	scatter(gp, gm, plane, width, height, off.G0)
	scatter(gp, gm, plane, width, height, off.G1)
	scatter(bp, bm, plane, width, height, off.B)

	out := make([]uint16, 3*width*height)
	fillChannel(out[0:], rp, rm, width, height)
	fillChannel(out[1:], gp, gm, width, height)
	fillChannel(out[2:], bp, bm, width, height)
	return out
}

// scatter copies every sample of one channel phase from the mosaic into
// the padded sparse plane and marks it in the mask. The +1 offsets place
// mosaic coordinates inside the zero border.
func scatter(dst []uint16, mask []uint8, plane []uint16, width, height int, c CellOffset) {
	pw := width + 2
	for y := c.Row; y < height; y += 2 {
		src := plane[y*width : (y+1)*width]
		row := (y+1)*pw + 1
		for x := c.Col; x < width; x += 2 {
			dst[row+x] = src[x]
			mask[row+x] = 1
		}
	}
}

// fillChannel computes the windowed average for one channel across the
// whole raster. dst is the interleaved output offset to the channel's
// first sample; writes step by 3.
//
// Accumulation is uint32: a full 3x3 window of 16-bit samples peaks at
// 9*65535, far below overflow. The quotient never exceeds 65535 because
// the sum only collects samples where the mask divisor counts.
func fillChannel(dst []uint16, plane []uint16, mask []uint8, width, height int) {
	pw := width + 2
	o := 0
	for y := 0; y < height; y++ {
		top := y * pw
		mid := top + pw
		bot := mid + pw
		for x := 0; x < width; x++ {
			sum := uint32(plane[top+x]) + uint32(plane[top+x+1]) + uint32(plane[top+x+2]) +
				uint32(plane[mid+x]) + uint32(plane[mid+x+1]) + uint32(plane[mid+x+2]) +
				uint32(plane[bot+x]) + uint32(plane[bot+x+1]) + uint32(plane[bot+x+2])
			n := uint32(mask[top+x]) + uint32(mask[top+x+1]) + uint32(mask[top+x+2]) +
				uint32(mask[mid+x]) + uint32(mask[mid+x+1]) + uint32(mask[mid+x+2]) +
				uint32(mask[bot+x]) + uint32(mask[bot+x+1]) + uint32(mask[bot+x+2])
			if n != 0 {
				dst[o] = uint16(sum / n)
			}
			o += 3
		}
	}
}
