package convert

import "encoding/binary"

// BayerPlane widens a raw mosaic buffer to the full 16-bit sample range
// ahead of demosaicing.
//
// 8-bit mosaics hold one byte per photosite, shifted up 8 bits. 10- and
// 12-bit mosaics hold one little-endian 16-bit container word per
// photosite, shifted up so the most significant sample bit lands in bit
// 15. Shifting leaves the lowest bits zero; the post-demosaic narrowing
// discards them again.
//
// bits must be 8, 10 or 12 and src must cover pixels samples; the
// decoder validates both.
func BayerPlane(src []byte, pixels, bits int) []uint16 {
	plane := make([]uint16, pixels)
	if bits == 8 {
		for i := 0; i < pixels; i++ {
			plane[i] = uint16(src[i]) << 8
		}
		return plane
	}
	shift := uint(16 - bits)
	for i := 0; i < pixels; i++ {
		plane[i] = binary.LittleEndian.Uint16(src[2*i:]) << shift
	}
	return plane
}
