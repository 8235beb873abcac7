package raster

import "math"

// Statistics summarizes one band's valid samples. StdDev is the population
// standard deviation (divide by N), matching conventional raster tooling.
type Statistics struct {
	Min    float64
	Max    float64
	Mean   float64
	StdDev float64
	Count  int
}

// ComputeStatistics aggregates min/max/mean/stddev over the given samples in
// a single deterministic pass (Welford's recurrence for the variance). The
// samples are expected to be finite and nodata-masked by the raster reader.
// ok is false when the band has no valid samples.
func ComputeStatistics(samples []float64) (stats Statistics, ok bool) {
	if len(samples) == 0 {
		return Statistics{}, false
	}

	stats.Min = samples[0]
	stats.Max = samples[0]

	var mean, m2 float64
	for i, v := range samples {
		if v < stats.Min {
			stats.Min = v
		}
		if v > stats.Max {
			stats.Max = v
		}
		delta := v - mean
		mean += delta / float64(i+1)
		m2 += delta * (v - mean)
	}

	stats.Mean = mean
	stats.StdDev = math.Sqrt(m2 / float64(len(samples)))
	stats.Count = len(samples)
	return stats, true
}
