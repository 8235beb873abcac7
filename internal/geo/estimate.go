package geo

import "math"

// kmPerDegree is the approximate ground distance of one degree of latitude.
const kmPerDegree = 111.0

// SpanArea holds ground-extent estimates for a raster. Valid is false when
// neither a georeference nor a usable projection is present; Approximate is
// true when the values come from the degree-based fallback rather than CRS
// linear units.
type SpanArea struct {
	XSpanKm     float64
	YSpanKm     float64
	AreaKm2     float64
	UnitName    string
	Valid       bool
	Approximate bool
}

// Estimate derives the ground span and area covered by a raster.
//
// Primary path: the CRS linear unit and its conversion factor to metres scale
// |width*pixelWidth| and |height*pixelHeight| to kilometres. Fallback path,
// taken only when the unit lookup fails (not when it resolves to an angular
// unit): the already-computed geographic bounds are scaled by 111 km/degree
// with a cos(latitude) correction on the east-west span. With no
// georeference, or when the lookup fails and no bounds are available, the
// result is invalid with unit "unknown".
func Estimate(tr Affine, srs *SpatialReference, width, height int, geog Geographic) SpanArea {
	if tr.IsDefault() || srs == nil {
		return SpanArea{UnitName: "unknown"}
	}

	unitName, toMetres, err := srs.LinearUnit()
	if err == nil {
		xSpan := math.Abs(float64(width)*tr.PixelWidth) * toMetres / 1000.0
		ySpan := math.Abs(float64(height)*tr.PixelHeight) * toMetres / 1000.0
		return SpanArea{
			XSpanKm:  xSpan,
			YSpanKm:  ySpan,
			AreaKm2:  xSpan * ySpan,
			UnitName: unitName,
			Valid:    true,
		}
	}

	if geog.Available {
		centerLat := (geog.Bounds.Top() + geog.Bounds.Bottom()) / 2
		lonSpan := math.Abs(geog.Bounds.Right() - geog.Bounds.Left())
		latSpan := math.Abs(geog.Bounds.Top() - geog.Bounds.Bottom())

		xSpan := lonSpan * kmPerDegree * math.Cos(centerLat*math.Pi/180)
		ySpan := latSpan * kmPerDegree
		return SpanArea{
			XSpanKm:     xSpan,
			YSpanKm:     ySpan,
			AreaKm2:     xSpan * ySpan,
			UnitName:    "degree (approximated)",
			Valid:       true,
			Approximate: true,
		}
	}

	return SpanArea{UnitName: "unknown"}
}
