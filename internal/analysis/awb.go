package analysis

import (
	"errors"
	"sort"
)

// ErrNoZones is returned when no statistics zone passed the brightness
// filters, so no white balance can be estimated.
var ErrNoZones = errors.New("framedecode: no usable zones for white balance")

// Zone is the mean color of one statistics region of a frame.
type Zone struct {
	R, G, B float64
}

// WhiteBalance holds grey-world gain estimates for a frame and the
// correlated color temperature of the scene illuminant. Gains multiply
// their channel to bring it to the green level; GreenGain is always 1.
type WhiteBalance struct {
	RedGain      float64
	GreenGain    float64
	BlueGain     float64
	TemperatureK float64
}

// GreyWorld estimates white balance from zone averages under the
// grey-world assumption: scene reflectance averages out neutral, so
// red and blue are scaled toward green.
//
// Zones are sorted by their green-to-red (resp. green-to-blue) ratio
// and the top and bottom quarters are discarded, which keeps saturated
// color patches from dragging the estimate.
func GreyWorld(zones []Zone) (WhiteBalance, error) {
	if len(zones) == 0 {
		return WhiteBalance{}, ErrNoZones
	}

	// Ratio sort without divisions: Gi/Ri < Gj/Rj <=> Gi*Rj < Gj*Ri.
	redSorted := make([]Zone, len(zones))
	copy(redSorted, zones)
	sort.Slice(redSorted, func(i, j int) bool {
		return redSorted[i].G*redSorted[j].R < redSorted[j].G*redSorted[i].R
	})

	blueSorted := make([]Zone, len(zones))
	copy(blueSorted, zones)
	sort.Slice(blueSorted, func(i, j int) bool {
		return blueSorted[i].G*blueSorted[j].B < blueSorted[j].G*blueSorted[i].B
	})

	discard := len(zones) / 4
	var sumRed, sumBlue Zone
	for i := discard; i < len(zones)-discard; i++ {
		sumRed.R += redSorted[i].R
		sumRed.G += redSorted[i].G
		sumRed.B += redSorted[i].B

		sumBlue.R += blueSorted[i].R
		sumBlue.G += blueSorted[i].G
		sumBlue.B += blueSorted[i].B
	}

	// The +1 keeps the division defined on an all-dark middle span.
	return WhiteBalance{
		RedGain:      sumRed.G / (sumRed.R + 1),
		GreenGain:    1.0,
		BlueGain:     sumBlue.G / (sumBlue.B + 1),
		TemperatureK: EstimateCCT(sumRed.R, sumRed.G, sumBlue.B),
	}, nil
}

// EstimateCCT approximates the correlated color temperature of an
// illuminant from its RGB response: convert to CIE 1931 chromaticity,
// then apply McCamy's cubic approximation of the Planckian locus.
// Scale does not matter, only the ratios between channels.
func EstimateCCT(red, green, blue float64) float64 {
	x := -0.14282*red + 1.54924*green - 0.95641*blue
	y := -0.32466*red + 1.57837*green - 0.73191*blue
	z := -0.68202*red + 0.77073*green + 0.56332*blue

	cx := x / (x + y + z)
	cy := y / (x + y + z)

	n := (cx - 0.3320) / (0.1858 - cy)
	return 449*n*n*n + 3525*n*n + 6823.3*n + 5520.33
}
