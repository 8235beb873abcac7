package geo

import (
	"math"
	"testing"
)

func TestAffineApply(t *testing.T) {
	tests := []struct {
		name     string
		tr       Affine
		col, row float64
		wantX    float64
		wantY    float64
	}{
		{"origin", Affine{OriginX: 100, PixelWidth: 10, OriginY: 200, PixelHeight: -10}, 0, 0, 100, 200},
		{"axis aligned", Affine{OriginX: 100, PixelWidth: 10, OriginY: 200, PixelHeight: -10}, 3, 2, 130, 180},
		{"with skew", Affine{OriginX: 100, PixelWidth: 10, RowSkew: 1, OriginY: 200, ColSkew: 0.5, PixelHeight: -10}, 4, 2, 142, 182},
		{"default", DefaultAffine, 5, 7, 5, 7},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := tt.tr.Apply(tt.col, tt.row)
			if x != tt.wantX || y != tt.wantY {
				t.Errorf("Apply(%v, %v) = (%v, %v), want (%v, %v)", tt.col, tt.row, x, y, tt.wantX, tt.wantY)
			}
		})
	}
}

func TestAffineShiftOrigin(t *testing.T) {
	tr := Affine{OriginX: 0, PixelWidth: 1, OriginY: 0, PixelHeight: -1}

	// Zero offset is the identity.
	if got := tr.ShiftOrigin(0, 0); got != tr {
		t.Errorf("ShiftOrigin(0, 0) = %v, want %v", got, tr)
	}

	got := tr.ShiftOrigin(10, 20)
	if got.OriginX != 10 || got.OriginY != -20 {
		t.Errorf("ShiftOrigin(10, 20) origin = (%v, %v), want (10, -20)", got.OriginX, got.OriginY)
	}
	if got.PixelWidth != tr.PixelWidth || got.PixelHeight != tr.PixelHeight {
		t.Errorf("ShiftOrigin changed pixel size: %v", got)
	}
}

func TestAffineShiftOriginWithSkew(t *testing.T) {
	tr := Affine{OriginX: 100, PixelWidth: 2, RowSkew: 0.5, OriginY: 200, ColSkew: 0.25, PixelHeight: -2}
	got := tr.ShiftOrigin(10, 4)

	// The shifted origin is the projected coordinate of pixel (10, 4),
	// skew terms included.
	wantX, wantY := tr.Apply(10, 4)
	if got.OriginX != wantX || got.OriginY != wantY {
		t.Errorf("ShiftOrigin(10, 4) origin = (%v, %v), want (%v, %v)", got.OriginX, got.OriginY, wantX, wantY)
	}
	if got.RowSkew != tr.RowSkew || got.ColSkew != tr.ColSkew {
		t.Errorf("ShiftOrigin changed skew: %v", got)
	}
}

func TestAffineGDALRoundTrip(t *testing.T) {
	coeffs := [6]float64{500000, 10, 0.1, 4000000, 0.2, -10}
	tr := AffineFromGDAL(coeffs)
	if got := tr.GDAL(); got != coeffs {
		t.Errorf("GDAL() = %v, want %v", got, coeffs)
	}
}

func TestAffineResolution(t *testing.T) {
	tr := Affine{PixelWidth: 10, PixelHeight: -10}
	xres, yres := tr.Resolution()
	if xres != 10 || yres != 10 {
		t.Errorf("Resolution() = (%v, %v), want (10, 10)", xres, yres)
	}
}

func TestAffineIsDefault(t *testing.T) {
	if !DefaultAffine.IsDefault() {
		t.Error("DefaultAffine.IsDefault() = false, want true")
	}
	georeferenced := Affine{OriginX: 1, PixelWidth: 1, PixelHeight: 1}
	if georeferenced.IsDefault() {
		t.Error("georeferenced transform reported as default")
	}
	if (Affine{}).IsDefault() {
		t.Error("zero transform reported as default")
	}
}

func TestShiftOriginDegenerate(t *testing.T) {
	// Zero pixel sizes are passed through, not rejected.
	tr := Affine{OriginX: 5, OriginY: 5}
	got := tr.ShiftOrigin(3, 3)
	if got.OriginX != 5 || got.OriginY != 5 {
		t.Errorf("degenerate ShiftOrigin moved origin to (%v, %v)", got.OriginX, got.OriginY)
	}
	if math.IsNaN(got.PixelWidth) {
		t.Error("degenerate ShiftOrigin produced NaN")
	}
}
