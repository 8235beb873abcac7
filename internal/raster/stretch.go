package raster

import (
	"math"
	"sort"
)

// Output range for 8-bit preview export.
const (
	StretchMin = 0
	StretchMax = 255
)

// Stretch applies a truncated histogram stretch: the [p, 100-p] percentile
// range of the input is mapped linearly onto [outMin, outMax], outliers are
// clipped, and the result is truncated (not rounded) to uint8.
//
// Degenerate inputs take two distinct shortcuts: a constant array maps to
// outMin, while a non-constant array whose percentiles coincide maps to the
// mid-gray (outMax+outMin)/2 — a narrow-but-nonzero spread is rendered gray
// rather than black.
func Stretch(samples []float64, truncatedPercent float64, outMin, outMax int) []uint8 {
	out := make([]uint8, len(samples))
	if len(samples) == 0 {
		return out
	}

	if allClose(samples, samples[0]) {
		fill(out, uint8(outMin))
		return out
	}

	sorted := make([]float64, len(samples))
	copy(sorted, samples)
	sort.Float64s(sorted)

	lo := percentile(sorted, truncatedPercent)
	hi := percentile(sorted, 100-truncatedPercent)

	if isClose(hi, lo) {
		fill(out, uint8((outMax+outMin)/2))
		return out
	}

	scale := float64(outMax-outMin) / (hi - lo)
	for i, v := range samples {
		mapped := (v-lo)*scale + float64(outMin)
		if mapped < float64(outMin) {
			mapped = float64(outMin)
		} else if mapped > float64(outMax) {
			mapped = float64(outMax)
		}
		out[i] = uint8(mapped) // truncation toward zero after clamping
	}
	return out
}

// percentile returns the p-th percentile of sorted samples using linear
// interpolation between order statistics.
func percentile(sorted []float64, p float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	rank := p / 100 * float64(len(sorted)-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))
	if lower < 0 {
		lower = 0
	}
	if upper > len(sorted)-1 {
		upper = len(sorted) - 1
	}
	if lower == upper {
		return sorted[lower]
	}
	frac := rank - float64(lower)
	return sorted[lower]*(1-frac) + sorted[upper]*frac
}

// isClose reports numerical indistinguishability with the conventional
// rtol=1e-5, atol=1e-8 tolerances.
func isClose(a, b float64) bool {
	return math.Abs(a-b) <= 1e-8+1e-5*math.Abs(b)
}

func allClose(samples []float64, ref float64) bool {
	for _, v := range samples {
		if !isClose(v, ref) {
			return false
		}
	}
	return true
}

func fill(out []uint8, v uint8) {
	for i := range out {
		out[i] = v
	}
}
