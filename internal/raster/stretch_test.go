package raster

import "testing"

func TestStretchConstantInput(t *testing.T) {
	// A constant band maps to the output minimum, not mid-gray.
	samples := []float64{42, 42, 42, 42}
	out := Stretch(samples, 2, StretchMin, StretchMax)
	for i, v := range out {
		if v != StretchMin {
			t.Fatalf("out[%d] = %d, want %d", i, v, StretchMin)
		}
	}
}

func TestStretchAllZeros(t *testing.T) {
	samples := make([]float64, 100)
	out := Stretch(samples, 2, StretchMin, StretchMax)
	for i, v := range out {
		if v != 0 {
			t.Fatalf("out[%d] = %d, want 0", i, v)
		}
	}
}

func TestStretchNarrowRange(t *testing.T) {
	// Percentiles collapse but the input is not constant: mid-gray.
	samples := make([]float64, 1000)
	for i := range samples {
		samples[i] = 100
	}
	samples[0] = 0
	samples[999] = 1e9

	out := Stretch(samples, 2, StretchMin, StretchMax)
	want := uint8((StretchMax + StretchMin) / 2)
	// Inspect an interior element; the outliers are also filled.
	if out[500] != want {
		t.Errorf("out[500] = %d, want %d", out[500], want)
	}
	if out[0] != want || out[999] != want {
		t.Errorf("outliers = %d, %d, want %d", out[0], out[999], want)
	}
}

func TestStretchLinearRamp(t *testing.T) {
	samples := make([]float64, 101)
	for i := range samples {
		samples[i] = float64(i) * 10 // 0..1000
	}
	out := Stretch(samples, 0, StretchMin, StretchMax)

	if out[0] != 0 {
		t.Errorf("minimum mapped to %d, want 0", out[0])
	}
	if out[100] != 255 {
		t.Errorf("maximum mapped to %d, want 255", out[100])
	}
	// Monotonic.
	for i := 1; i < len(out); i++ {
		if out[i] < out[i-1] {
			t.Fatalf("output not monotonic at %d: %d < %d", i, out[i], out[i-1])
		}
	}
}

func TestStretchClampsOutliers(t *testing.T) {
	// With truncation, values beyond the percentile range clamp to the
	// output bounds instead of overflowing.
	samples := make([]float64, 100)
	for i := range samples {
		samples[i] = float64(i)
	}
	out := Stretch(samples, 10, StretchMin, StretchMax)

	if out[0] != StretchMin {
		t.Errorf("low outlier = %d, want %d", out[0], StretchMin)
	}
	if out[99] != StretchMax {
		t.Errorf("high outlier = %d, want %d", out[99], StretchMax)
	}
}

func TestStretchEmpty(t *testing.T) {
	if out := Stretch(nil, 2, StretchMin, StretchMax); len(out) != 0 {
		t.Errorf("Stretch(nil) = %v, want empty", out)
	}
}

func TestStretchTruncatesTowardZero(t *testing.T) {
	// Interior values truncate rather than round: a value mapping to
	// 127.9 must come out as 127.
	samples := []float64{0, 0.501, 1}
	out := Stretch(samples, 0, 0, 255)
	if out[1] != 127 { // 0.501*255 = 127.755
		t.Errorf("out[1] = %d, want 127 (truncated)", out[1])
	}
}

func TestPercentile(t *testing.T) {
	sorted := []float64{0, 10, 20, 30, 40}
	tests := []struct {
		p    float64
		want float64
	}{
		{0, 0},
		{50, 20},
		{100, 40},
		{25, 10},
		{12.5, 5}, // interpolated between order statistics
	}
	for _, tt := range tests {
		if got := percentile(sorted, tt.p); got != tt.want {
			t.Errorf("percentile(%v) = %v, want %v", tt.p, got, tt.want)
		}
	}

	if got := percentile([]float64{7}, 50); got != 7 {
		t.Errorf("percentile of single element = %v, want 7", got)
	}
}

func TestIsClose(t *testing.T) {
	tests := []struct {
		a, b float64
		want bool
	}{
		{1, 1, true},
		{1, 1 + 1e-9, true},
		{0, 1e-9, true},
		{1, 1.001, false},
		{1e6, 1e6 + 1, true}, // relative tolerance dominates at scale
		{0, 1, false},
	}
	for _, tt := range tests {
		if got := isClose(tt.a, tt.b); got != tt.want {
			t.Errorf("isClose(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}
