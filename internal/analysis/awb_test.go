package analysis

import (
	"errors"
	"math"
	"testing"
)

func flatZones(n int, z Zone) []Zone {
	zs := make([]Zone, n)
	for i := range zs {
		zs[i] = z
	}
	return zs
}

// TestGreyWorldGainArithmetic pins the gain formula on identical zones,
// where the middle-half sums are exact.
//
// Scenario:
//  1. Eight zones of (R=50, G=100, B=25): quarter discard drops 2 per
//     edge, leaving 4 in the middle of each sorted order.
//  2. Sums: red order (200, 400, 100), blue order identical.
//  3. RedGain = 400/201, BlueGain = 400/101, GreenGain = 1.
func TestGreyWorldGainArithmetic(t *testing.T) {
	wb, err := GreyWorld(flatZones(8, Zone{R: 50, G: 100, B: 25}))
	if err != nil {
		t.Fatalf("GreyWorld: %v", err)
	}

	const eps = 1e-12
	if want := 400.0 / 201.0; math.Abs(wb.RedGain-want) > eps {
		t.Errorf("RedGain = %v, want %v", wb.RedGain, want)
	}
	if want := 400.0 / 101.0; math.Abs(wb.BlueGain-want) > eps {
		t.Errorf("BlueGain = %v, want %v", wb.BlueGain, want)
	}
	if wb.GreenGain != 1.0 {
		t.Errorf("GreenGain = %v, want 1.0", wb.GreenGain)
	}

	t.Logf("✅ gains: R=%.4f B=%.4f from (50,100,25) zones", wb.RedGain, wb.BlueGain)
}

// TestGreyWorldRejectsOutliers validates the quarter discard: two wild
// zones (one strongly red, one strongly green) fall outside the middle
// half of both ratio orders, so a neutral background wins.
//
// Scenario:
//  1. Six neutral zones (100,100,100), one (1000,10,500), one (1,200,1).
//  2. Red order G/R: 0.01 first, 200 last. Blue order G/B: 0.02 first,
//     200 last. Discard of 2 removes each outlier plus one neutral.
//  3. Both sums are 4 neutral zones -> gains 400/401, near unity.
func TestGreyWorldRejectsOutliers(t *testing.T) {
	zones := flatZones(6, Zone{R: 100, G: 100, B: 100})
	zones = append(zones,
		Zone{R: 1000, G: 10, B: 500},
		Zone{R: 1, G: 200, B: 1},
	)

	wb, err := GreyWorld(zones)
	if err != nil {
		t.Fatalf("GreyWorld: %v", err)
	}

	const want = 400.0 / 401.0
	if math.Abs(wb.RedGain-want) > 1e-12 {
		t.Errorf("RedGain = %v, want %v (outliers not discarded?)", wb.RedGain, want)
	}
	if math.Abs(wb.BlueGain-want) > 1e-12 {
		t.Errorf("BlueGain = %v, want %v (outliers not discarded?)", wb.BlueGain, want)
	}

	t.Logf("✅ saturated zones discarded: gains %.4f from neutral middle", wb.RedGain)
}

// TestGreyWorldCorrectsCast validates the direction of the gains: a
// frame with a red cast needs RedGain < 1 and BlueGain > 1 to pull the
// channels back to green.
func TestGreyWorldCorrectsCast(t *testing.T) {
	wb, err := GreyWorld(flatZones(8, Zone{R: 180, G: 120, B: 60}))
	if err != nil {
		t.Fatalf("GreyWorld: %v", err)
	}

	if wb.RedGain >= 1.0 {
		t.Errorf("RedGain = %v, want < 1 for a red-heavy scene", wb.RedGain)
	}
	if wb.BlueGain <= 1.0 {
		t.Errorf("BlueGain = %v, want > 1 for a blue-starved scene", wb.BlueGain)
	}

	t.Logf("✅ red cast corrected: R=%.3f B=%.3f", wb.RedGain, wb.BlueGain)
}

func TestGreyWorldNoZones(t *testing.T) {
	_, err := GreyWorld(nil)
	if !errors.Is(err, ErrNoZones) {
		t.Fatalf("GreyWorld(nil) error = %v, want ErrNoZones", err)
	}

	t.Logf("✅ empty zone list refused: %v", err)
}

// TestEstimateCCTNeutral pins the equal-energy point of the fit. The
// XYZ matrix plus McCamy places (1,1,1) near 8890 K, and the result
// depends only on channel ratios, not scale.
func TestEstimateCCTNeutral(t *testing.T) {
	cct := EstimateCCT(1, 1, 1)
	if math.Abs(cct-8890.2) > 25 {
		t.Errorf("EstimateCCT(1,1,1) = %.1f, want ~8890", cct)
	}

	scaled := EstimateCCT(50, 50, 50)
	if math.Abs(scaled-cct) > 1e-6 {
		t.Errorf("scale changed the estimate: %.6f vs %.6f", scaled, cct)
	}

	t.Logf("✅ neutral CCT %.1f K, scale invariant", cct)
}

// TestEstimateCCTOrdering validates the physical direction: a red-heavy
// response reads as a warmer (lower kelvin) illuminant than neutral.
func TestEstimateCCTOrdering(t *testing.T) {
	warm := EstimateCCT(1.2, 1.0, 0.8)
	neutral := EstimateCCT(1, 1, 1)

	if warm >= neutral {
		t.Errorf("warm CCT %.1f should be below neutral %.1f", warm, neutral)
	}
	if warm < 1000 {
		t.Errorf("warm CCT %.1f implausibly low", warm)
	}

	t.Logf("✅ CCT ordering: warm %.1f K < neutral %.1f K", warm, neutral)
}
