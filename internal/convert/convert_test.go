package convert

import "testing"

// --- Packed RGB reordering ---

func TestSwapRGB24(t *testing.T) {
	// Two pixels in B,G,R memory order.
	src := []byte{1, 2, 3, 4, 5, 6}
	dst := make([]byte, 6)
	SwapRGB24(dst, src, 2)

	want := []byte{3, 2, 1, 6, 5, 4}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

func TestXRGB32DropsAlpha(t *testing.T) {
	// Two pixels in B,G,R,A memory order; alpha/X values must not leak
	// into the output.
	src := []byte{
		10, 20, 30, 255, // pixel 0, opaque alpha
		40, 50, 60, 0, // pixel 1, X garbage
	}
	dst := make([]byte, 6)
	XRGB32ToRGB(dst, src, 2)

	want := []byte{30, 20, 10, 60, 50, 40}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %v, want %v", dst, want)
		}
	}
}

// --- YUYV expansion ---

// TestYUYVNeutralGray validates the calibration anchor of the conversion:
// Y=U=V=128 is colorimetrically neutral and must come out gray. The
// offsets are constructed to make this exact up to float truncation, so
// the tolerance is tight.
func TestYUYVNeutralGray(t *testing.T) {
	src := []byte{128, 128, 128, 128}
	dst := make([]byte, 6)
	YUYVToRGB(dst, src, 2, 1)

	for i, got := range dst {
		diff := int(got) - 128
		if diff < -2 || diff > 2 {
			t.Errorf("channel %d = %d, want 128±2", i, got)
		}
	}

	t.Logf("✅ neutral gray maps to (%d,%d,%d)", dst[0], dst[1], dst[2])
}

// TestYUYVKnownValues pins hand-computed conversions, including the
// wrap-not-clamp contract at both range extremes.
func TestYUYVKnownValues(t *testing.T) {
	cases := []struct {
		name    string
		y, u, v byte
		r, g, b byte
	}{
		// Y=U=V=0: R=-179.45->77, G=+135.46->135, B=-226.82->30 (wraps).
		{"all zero wraps", 0, 0, 0, 77, 135, 30},
		// Y=U=V=255: R=433.05->177, G=120.60->120, B=480.05->224.
		{"all max wraps", 255, 255, 255, 177, 120, 224},
		// Mixed chroma, in-range green only.
		{"mixed chroma", 50, 30, 220, 178, 18, 133},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			src := []byte{tc.y, tc.u, tc.y, tc.v}
			dst := make([]byte, 6)
			YUYVToRGB(dst, src, 2, 1)
			if dst[0] != tc.r || dst[1] != tc.g || dst[2] != tc.b {
				t.Errorf("Y=%d U=%d V=%d -> (%d,%d,%d), want (%d,%d,%d)",
					tc.y, tc.u, tc.v, dst[0], dst[1], dst[2], tc.r, tc.g, tc.b)
			}
		})
	}
}

// TestYUYVChromaSharing validates 4:2:2 semantics: both pixels of a
// macropixel share one U,V pair, differing only through their Y samples.
func TestYUYVChromaSharing(t *testing.T) {
	// Y0=50, U=30, Y1=200, V=220.
	src := []byte{50, 30, 200, 220}
	dst := make([]byte, 6)
	YUYVToRGB(dst, src, 2, 1)

	p0 := [3]byte{dst[0], dst[1], dst[2]}
	p1 := [3]byte{dst[3], dst[4], dst[5]}

	want0 := [3]byte{178, 18, 133}
	want1 := [3]byte{72, 168, 26}
	if p0 != want0 {
		t.Errorf("pixel 0 = %v, want %v", p0, want0)
	}
	if p1 != want1 {
		t.Errorf("pixel 1 = %v, want %v", p1, want1)
	}

	t.Logf("✅ macropixel shares chroma: %v / %v from one U,V pair", p0, p1)
}

// --- Bayer normalization ---

func TestBayerPlaneWiden8(t *testing.T) {
	plane := BayerPlane([]byte{0x00, 0x12, 0xFF}, 3, 8)
	want := []uint16{0x0000, 0x1200, 0xFF00}
	for i := range want {
		if plane[i] != want[i] {
			t.Fatalf("plane = %04x, want %04x", plane, want)
		}
	}
}

func TestBayerPlaneWiden10And12(t *testing.T) {
	// 10-bit full-scale 0x03FF in a little-endian word -> top 10 bits set.
	plane := BayerPlane([]byte{0xFF, 0x03}, 1, 10)
	if plane[0] != 0xFFC0 {
		t.Errorf("10-bit 0x03FF widened to %#04x, want 0xFFC0", plane[0])
	}

	// 12-bit full-scale 0x0FFF -> top 12 bits set.
	plane = BayerPlane([]byte{0xFF, 0x0F}, 1, 12)
	if plane[0] != 0xFFF0 {
		t.Errorf("12-bit 0x0FFF widened to %#04x, want 0xFFF0", plane[0])
	}

	// Mid-scale 10-bit: 0x0200 (512) -> 0x8000.
	plane = BayerPlane([]byte{0x00, 0x02}, 1, 10)
	if plane[0] != 0x8000 {
		t.Errorf("10-bit 0x0200 widened to %#04x, want 0x8000", plane[0])
	}
}

func TestNarrowRGB16(t *testing.T) {
	dst := make([]byte, 4)
	NarrowRGB16(dst, []uint16{0xFFC0, 0x1234, 0x00FF, 0x8000})
	want := []byte{0xFF, 0x12, 0x00, 0x80}
	for i := range want {
		if dst[i] != want[i] {
			t.Fatalf("dst = %02x, want %02x", dst, want)
		}
	}
}
