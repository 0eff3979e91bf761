package convert

// Continuous YUV to RGB coefficients, carried to full float64 precision
// as the sensor stack defines them. The vestigial U term on red and V
// term on blue are part of the numeric contract and are kept exactly.
const (
	yuvRU = -0.000007154783816076815
	yuvRV = 1.4019975662231445
	yuvGU = -0.3441331386566162
	yuvGV = -0.7141380310058594
	yuvBU = 1.7720025777816772
	yuvBV = 0.00001542569043522235

	// Offsets fold the -128 chroma bias through the matrix. Each equals
	// -128 times its row's chroma coefficient sum, so neutral gray
	// (Y=U=V=128) maps to gray exactly.
	yuvROffset = -179.45477266423404
	yuvGOffset = 135.45870971679688
	yuvBOffset = -226.8183044444304
)

// YUYVToRGB expands packed 4:2:2 macropixels into interleaved RGB.
//
// src is a sequence of 4-byte groups Y0,U,Y1,V, each covering two
// horizontally adjacent pixels that share the chroma pair. dst receives
// 6 bytes per group. width*height must be even (the decoder enforces
// even width).
//
// Out-of-range results WRAP via truncating integer conversion rather
// than clamping; this is the exact legacy behavior downstream consumers
// were tuned against.
func YUYVToRGB(dst, src []byte, width, height int) {
	groups := width * height / 2
	s, o := 0, 0
	for g := 0; g < groups; g++ {
		y0 := float64(src[s])
		u := float64(src[s+1])
		y1 := float64(src[s+2])
		v := float64(src[s+3])
		s += 4

		yuvPixel(dst[o:o+3], y0, u, v)
		yuvPixel(dst[o+3:o+6], y1, u, v)
		o += 6
	}
}

func yuvPixel(dst []byte, y, u, v float64) {
	r := y + yuvRU*u + yuvRV*v + yuvROffset
	g := y + yuvGU*u + yuvGV*v + yuvGOffset
	b := y + yuvBU*u + yuvBV*v + yuvBOffset
	// Results stay within int32 range (roughly -250..500), so the
	// float-to-int conversion is well defined; the uint8 conversion
	// then wraps modulo 256.
	dst[0] = uint8(int32(r))
	dst[1] = uint8(int32(g))
	dst[2] = uint8(int32(b))
}
