// Package convert holds the byte-level pixel conversions behind
// Decoder.Decode: packed-RGB channel reordering, YUYV expansion, and
// Bayer bit-depth normalization.
//
// Every function is pure and branch-free per pixel: no allocation on the
// packed paths, no logging, no validation. Callers (the root decoder)
// validate geometry and buffer sizes first.
package convert

// SwapRGB24 converts B,G,R byte triplets to R,G,B. src and dst hold
// pixels*3 bytes and must not alias.
func SwapRGB24(dst, src []byte, pixels int) {
	for p := 0; p < pixels; p++ {
		i := p * 3
		dst[i] = src[i+2]
		dst[i+1] = src[i+1]
		dst[i+2] = src[i]
	}
}

// XRGB32ToRGB converts B,G,R,A(or X) quads to R,G,B triplets, dropping
// the fourth byte. src holds pixels*4 bytes, dst pixels*3.
func XRGB32ToRGB(dst, src []byte, pixels int) {
	for p := 0; p < pixels; p++ {
		s := p * 4
		d := p * 3
		dst[d] = src[s+2]
		dst[d+1] = src[s+1]
		dst[d+2] = src[s]
	}
}

// NarrowRGB16 keeps the top 8 bits of each 16-bit sample. dst and src
// have equal element counts.
func NarrowRGB16(dst []byte, src []uint16) {
	for i, v := range src {
		dst[i] = uint8(v >> 8)
	}
}
