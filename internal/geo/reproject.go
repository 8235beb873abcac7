package geo

import (
	"math"

	"github.com/paulmach/orb"
)

// Geographic is the WGS84 footprint of a raster. Available reports whether
// reprojection succeeded; when false, Bounds and Center carry no meaning and
// callers render the metadata without them. This is an explicit marker rather
// than an error so partial metadata display can proceed.
type Geographic struct {
	Bounds    orb.Bound // Min = (west, south), Max = (east, north)
	Center    orb.Point // (longitude, latitude)
	Available bool
}

// Reproject computes the geographic bounds and center of a raster from its
// affine transform and spatial reference.
//
// The bounds are the min/max reduction over the four reprojected image
// corners — a deliberate 4-corner approximation, not a footprint trace. The
// center is the reprojected pixel-space centroid (width/2, height/2),
// computed independently of the corners; for rotated or non-linear
// projections it does not generally equal the centroid of the bounds.
func Reproject(tr Affine, srs *SpatialReference, width, height int) Geographic {
	proj, err := NewTransform(srs)
	if err != nil {
		return Geographic{}
	}

	w := float64(width)
	h := float64(height)
	corners := [4][2]float64{{0, 0}, {w, 0}, {w, h}, {0, h}}

	west, south := math.Inf(1), math.Inf(1)
	east, north := math.Inf(-1), math.Inf(-1)

	for _, c := range corners {
		px, py := tr.Apply(c[0], c[1])
		lon, lat := proj.ToWGS84(px, py)
		if !finite(lon) || !finite(lat) {
			return Geographic{}
		}
		west = math.Min(west, lon)
		east = math.Max(east, lon)
		south = math.Min(south, lat)
		north = math.Max(north, lat)
	}

	cx, cy := tr.Apply(w/2, h/2)
	clon, clat := proj.ToWGS84(cx, cy)
	if !finite(clon) || !finite(clat) {
		return Geographic{}
	}

	return Geographic{
		Bounds: orb.Bound{
			Min: orb.Point{west, south},
			Max: orb.Point{east, north},
		},
		Center:    orb.Point{clon, clat},
		Available: true,
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
