package framedecode_test

import (
	"errors"
	"image"
	"testing"
	"time"

	framedecode "github.com/e7canasta/orion-care-sensor/modules/framedecode"
)

func rawFrame(format framedecode.PixelFormat, w, h, bytes int) framedecode.Frame {
	return framedecode.Frame{
		Seq:          1,
		Timestamp:    time.Now(),
		Format:       format,
		Width:        w,
		Height:       h,
		Data:         make([]byte, bytes),
		SourceStream: "test",
	}
}

// TestFrameValidate validates the shared geometry gate used by Decode
// and FrameWriter: short buffers fail, padded buffers pass, and each
// format's dimension constraints hold.
func TestFrameValidate(t *testing.T) {
	cases := []struct {
		name  string
		frame framedecode.Frame
		want  error // nil means valid
	}{
		{"yuyv exact", rawFrame(framedecode.FormatYUYV, 64, 48, 64*48*2), nil},
		{"yuyv padded", rawFrame(framedecode.FormatYUYV, 64, 48, 64*48*2+512), nil},
		{"yuyv short", rawFrame(framedecode.FormatYUYV, 64, 48, 64*48*2-1), framedecode.ErrGeometryMismatch},
		{"yuyv odd width", rawFrame(framedecode.FormatYUYV, 63, 48, 63*48*2), framedecode.ErrGeometryMismatch},
		{"rgb exact", rawFrame(framedecode.FormatRGB888, 64, 48, 64*48*3), nil},
		{"xrgb short", rawFrame(framedecode.FormatXRGB8888, 64, 48, 64*48*3), framedecode.ErrGeometryMismatch},
		{"bayer exact", rawFrame(framedecode.FormatSRGGB8, 64, 48, 64*48), nil},
		{"bayer 10-bit exact", rawFrame(framedecode.FormatSRGGB10, 64, 48, 64*48*2), nil},
		{"bayer odd width", rawFrame(framedecode.FormatSRGGB8, 63, 48, 63*48), framedecode.ErrGeometryMismatch},
		{"bayer odd height", rawFrame(framedecode.FormatSRGGB8, 64, 47, 64*47), framedecode.ErrGeometryMismatch},
		{"zero width", rawFrame(framedecode.FormatRGB888, 0, 48, 0), framedecode.ErrGeometryMismatch},
		{"rgb oversized dims", rawFrame(framedecode.FormatRGB888, 1 << 20, 1 << 20, 16), framedecode.ErrGeometryMismatch},
		{"mjpeg non-empty", rawFrame(framedecode.FormatMJPEG, 64, 48, 2000), nil},
		{"mjpeg empty", rawFrame(framedecode.FormatMJPEG, 64, 48, 0), framedecode.ErrGeometryMismatch},
		{"mjpeg oversized dims", rawFrame(framedecode.FormatMJPEG, 1 << 20, 1 << 20, 2000), framedecode.ErrGeometryMismatch},
		{"unknown tag", rawFrame("NV12", 64, 48, 64*48*2), framedecode.ErrUnsupportedFormat},
		{"bayer bad depth", rawFrame("SRGGB14", 64, 48, 64*48*2), framedecode.ErrUnsupportedBitDepth},
		{"bayer bad pattern", rawFrame("SRGGX8", 64, 48, 64*48), framedecode.ErrMalformedPattern},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.frame.Validate()
			if tc.want == nil {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tc.want) {
				t.Fatalf("Validate() = %v, want %v", err, tc.want)
			}
		})
	}

	t.Logf("✅ frame validation gate covers %d cases", len(cases))
}

func TestFrameBounds(t *testing.T) {
	f := rawFrame(framedecode.FormatRGB888, 640, 480, 640*480*3)
	if got, want := f.Bounds(), image.Rect(0, 0, 640, 480); got != want {
		t.Errorf("Bounds() = %v, want %v", got, want)
	}
}
