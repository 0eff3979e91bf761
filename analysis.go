package framedecode

import (
	"fmt"
	"log/slog"

	"github.com/e7canasta/orion-care-sensor/modules/framedecode/internal/analysis"
)

// Channel selects one raster plane for statistics. The constant value
// is the plane's byte offset inside an interleaved RGB pixel.
type Channel int

const (
	ChannelR Channel = 0
	ChannelG Channel = 1
	ChannelB Channel = 2
)

// String returns the channel letter, for stats output and log attrs.
func (c Channel) String() string {
	switch c {
	case ChannelR:
		return "R"
	case ChannelG:
		return "G"
	case ChannelB:
		return "B"
	}
	return fmt.Sprintf("Channel(%d)", int(c))
}

// Histogram is re-exported from the internal analysis package.
// See internal/analysis for full documentation.
type Histogram = analysis.Histogram

// WhiteBalance is re-exported from the internal analysis package.
// See internal/analysis for full documentation.
type WhiteBalance = analysis.WhiteBalance

// NewHistogram builds a histogram from per-bin counts, stored in
// cumulative form for quantile queries.
func NewHistogram(counts []uint64) *Histogram {
	return analysis.NewHistogram(counts)
}

// ChannelHistogram bins one channel of the raster. ch must be one of
// the Channel constants; bins outside [1, 256] are clamped. With 256
// bins each sample value maps to its own bin; divisors of 256 give
// equal-width buckets.
func ChannelHistogram(r *Raster, ch Channel, bins int) *Histogram {
	if bins < 1 {
		bins = 1
	}
	if bins > 256 {
		bins = 256
	}

	counts := make([]uint64, bins)
	for i := int(ch); i < len(r.Pix); i += 3 {
		counts[int(r.Pix[i])*bins/256]++
	}
	return analysis.NewHistogram(counts)
}

// White-balance statistics grid. Zones with too few pixels or too
// little green signal carry no usable color information and are
// dropped before estimation.
const (
	awbZonesX        = 16
	awbZonesY        = 12
	awbMinZonePixels = 16
	awbMinZoneGreen  = 16.0
)

// EstimateWhiteBalance runs grey-world white balance over the raster:
// partition into a 16x12 zone grid, average each zone, discard the
// outlier quarters per channel ratio, and derive gains that scale red
// and blue toward green. TemperatureK estimates the illuminant's
// correlated color temperature from the same sums.
//
// A raster with no usable zones (too small, or too dark throughout)
// returns an error rather than degenerate gains.
func EstimateWhiteBalance(r *Raster) (WhiteBalance, error) {
	if r == nil || r.Width <= 0 || r.Height <= 0 {
		return WhiteBalance{}, fmt.Errorf("framedecode: white balance needs a non-empty raster")
	}

	zones := awbZones(r)
	slog.Debug("framedecode: white balance zones",
		"zones", len(zones),
		"seq", r.Seq,
	)

	wb, err := analysis.GreyWorld(zones)
	if err != nil {
		return WhiteBalance{}, fmt.Errorf("framedecode: white balance %dx%d raster: %w",
			r.Width, r.Height, err)
	}
	return wb, nil
}

// awbZones partitions the raster into the statistics grid and returns
// the mean color of every zone that passes the signal filters.
func awbZones(r *Raster) []analysis.Zone {
	zones := make([]analysis.Zone, 0, awbZonesX*awbZonesY)
	for zy := 0; zy < awbZonesY; zy++ {
		for zx := 0; zx < awbZonesX; zx++ {
			x0 := zx * r.Width / awbZonesX
			x1 := (zx + 1) * r.Width / awbZonesX
			y0 := zy * r.Height / awbZonesY
			y1 := (zy + 1) * r.Height / awbZonesY

			var rSum, gSum, bSum float64
			counted := 0
			for y := y0; y < y1; y++ {
				i := (y*r.Width + x0) * 3
				for x := x0; x < x1; x++ {
					rSum += float64(r.Pix[i])
					gSum += float64(r.Pix[i+1])
					bSum += float64(r.Pix[i+2])
					i += 3
					counted++
				}
			}
			if counted < awbMinZonePixels {
				continue
			}
			g := gSum / float64(counted)
			if g < awbMinZoneGreen {
				continue
			}
			zones = append(zones, analysis.Zone{
				R: rSum / float64(counted),
				G: g,
				B: bSum / float64(counted),
			})
		}
	}
	return zones
}
