package geo

import (
	"fmt"
	"math"
)

// Affine is the 6-parameter transform mapping pixel coordinates (col,row) to
// projected map coordinates:
//
//	x = OriginX + col*PixelWidth + row*RowSkew
//	y = OriginY + col*ColSkew   + row*PixelHeight
//
// Coefficient order matches GDAL's GetGeoTransform. PixelHeight is negative
// for north-up rasters. Values are immutable; operations return new instances.
type Affine struct {
	OriginX     float64
	PixelWidth  float64
	RowSkew     float64
	OriginY     float64
	ColSkew     float64
	PixelHeight float64
}

// AffineFromGDAL builds an Affine from GDAL coefficient order
// (originX, pixelWidth, rowSkew, originY, colSkew, pixelHeight).
func AffineFromGDAL(t [6]float64) Affine {
	return Affine{
		OriginX:     t[0],
		PixelWidth:  t[1],
		RowSkew:     t[2],
		OriginY:     t[3],
		ColSkew:     t[4],
		PixelHeight: t[5],
	}
}

// GDAL returns the coefficients in GDAL order.
func (a Affine) GDAL() [6]float64 {
	return [6]float64{a.OriginX, a.PixelWidth, a.RowSkew, a.OriginY, a.ColSkew, a.PixelHeight}
}

// Apply maps pixel coordinates to projected coordinates.
func (a Affine) Apply(col, row float64) (x, y float64) {
	x = a.OriginX + col*a.PixelWidth + row*a.RowSkew
	y = a.OriginY + col*a.ColSkew + row*a.PixelHeight
	return
}

// ShiftOrigin returns a new transform whose origin is advanced by the given
// pixel offsets, including the skew contribution. Pixel size and skew are
// preserved. Degenerate (zero pixel size) transforms are accepted unchanged;
// callers dividing by pixel size must guard for themselves.
func (a Affine) ShiftOrigin(xOffsetPixels, yOffsetPixels float64) Affine {
	x, y := a.Apply(xOffsetPixels, yOffsetPixels)
	return Affine{
		OriginX:     x,
		PixelWidth:  a.PixelWidth,
		RowSkew:     a.RowSkew,
		OriginY:     y,
		ColSkew:     a.ColSkew,
		PixelHeight: a.PixelHeight,
	}
}

// Resolution returns the absolute pixel size in CRS units.
func (a Affine) Resolution() (xres, yres float64) {
	return math.Abs(a.PixelWidth), math.Abs(a.PixelHeight)
}

// DefaultAffine is the transform GDAL reports for rasters without
// georeferencing: origin (0,0), unit pixels, no rotation.
var DefaultAffine = Affine{PixelWidth: 1, PixelHeight: 1}

// IsDefault reports whether the transform equals the ungeoreferenced default.
func (a Affine) IsDefault() bool {
	return a == DefaultAffine
}

func (a Affine) String() string {
	return fmt.Sprintf("Affine(%v, %v, %v, %v, %v, %v)",
		a.OriginX, a.PixelWidth, a.RowSkew, a.OriginY, a.ColSkew, a.PixelHeight)
}
