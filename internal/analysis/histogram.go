// Package analysis implements sensor-style frame statistics: cumulative
// histograms with quantile queries, and grey-world white-balance
// estimation over zone averages.
//
// The package works on plain numbers. Extracting channels and zones
// from a raster is the parent package's job.
package analysis

import "math"

// Histogram holds bin counts in cumulative form: cumulative[0] is
// always 0 and cumulative[n] is the total of the first n bins. The
// representation makes every quantile query a binary search.
type Histogram struct {
	cumulative []uint64
}

// NewHistogram builds a histogram from per-bin counts.
func NewHistogram(counts []uint64) *Histogram {
	cumulative := make([]uint64, len(counts)+1)
	for i, c := range counts {
		cumulative[i+1] = cumulative[i] + c
	}
	return &Histogram{cumulative: cumulative}
}

// Bins returns the number of bins.
func (h *Histogram) Bins() int {
	return len(h.cumulative) - 1
}

// Total returns the count across all bins.
func (h *Histogram) Total() uint64 {
	return h.cumulative[len(h.cumulative)-1]
}

// CumulativeFrequency returns the count accumulated up to a fractional
// bin position, linearly interpolated inside the bin. Positions outside
// [0, Bins] clamp to 0 and Total.
func (h *Histogram) CumulativeFrequency(bin float64) uint64 {
	if bin <= 0 {
		return 0
	}
	if bin >= float64(h.Bins()) {
		return h.Total()
	}
	b := int(bin)
	return h.cumulative[b] +
		uint64((bin-float64(b))*float64(h.cumulative[b+1]-h.cumulative[b]))
}

// Quantile returns the fractional bin position below which fraction q
// of the counts fall, for q in [0, 1].
func (h *Histogram) Quantile(q float64) float64 {
	return h.QuantileRange(q, 0, h.Bins()-1)
}

// QuantileRange is Quantile with its binary search restricted to the
// bin window [first, last]. The quantile is still taken against the
// full Total, so the caller must pass a window containing the answer:
// a window that excludes it parks the search on an edge bin, and the
// interpolation extrapolates past the window instead of clamping.
// InterQuantileMean keeps the contract by running its window out to
// the last bin.
func (h *Histogram) QuantileRange(q float64, first, last int) float64 {
	items := uint64(q * float64(h.Total()))

	// Binary search for the bin holding the items-th count.
	for first < last {
		middle := (first + last) / 2
		if h.cumulative[middle+1] > items {
			last = middle
		} else {
			first = middle + 1
		}
	}

	frac := 0.0
	if h.cumulative[first+1] != h.cumulative[first] {
		frac = (float64(items) - float64(h.cumulative[first])) /
			float64(h.cumulative[first+1]-h.cumulative[first])
	}
	return float64(first) + frac
}

// InterQuantileMean returns the mean bin value of the counts between
// two quantiles, with the fractional bins at both edges weighted by
// their covered span. Bin values are taken at bin centers, hence the
// half-bin shift. Requires lowQuantile < highQuantile.
func (h *Histogram) InterQuantileMean(lowQuantile, highQuantile float64) float64 {
	lowPoint := h.Quantile(lowQuantile)
	highPoint := h.QuantileRange(highQuantile, int(lowPoint), h.Bins()-1)

	sumBinFreq := 0.0
	cumulFreq := 0.0
	for pNext := math.Floor(lowPoint) + 1.0; pNext <= math.Ceil(highPoint); lowPoint, pNext = pNext, pNext+1.0 {
		bin := int(math.Floor(lowPoint))
		freq := float64(h.cumulative[bin+1]-h.cumulative[bin]) *
			(math.Min(pNext, highPoint) - lowPoint)
		sumBinFreq += float64(bin) * freq
		cumulFreq += freq
	}
	return sumBinFreq/cumulFreq + 0.5
}
