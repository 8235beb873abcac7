package geo

import "fmt"

// Projection converts between a source CRS and WGS84.
type Projection interface {
	// ToWGS84 converts source CRS coordinates to WGS84 longitude/latitude (degrees).
	ToWGS84(x, y float64) (lon, lat float64)

	// FromWGS84 converts WGS84 longitude/latitude (degrees) to source CRS coordinates.
	FromWGS84(lon, lat float64) (x, y float64)

	// EPSG returns the EPSG code for this projection.
	EPSG() int
}

// ForEPSG returns a Projection for the given EPSG code.
// Returns nil if the EPSG code is not supported.
func ForEPSG(epsg int) Projection {
	switch {
	case epsg == 4326:
		return &WGS84Identity{}
	case epsg == 3857:
		return &WebMercatorProj{}
	case epsg == 2056:
		return &SwissLV95{}
	case epsg >= 32601 && epsg <= 32660:
		return &UTM{Zone: epsg - 32600}
	case epsg >= 32701 && epsg <= 32760:
		return &UTM{Zone: epsg - 32700, South: true}
	default:
		return nil
	}
}

// NewTransform builds the projected→geographic transform for a spatial
// reference. A geographic CRS yields the identity. The error marks the
// reprojection-unavailable condition; callers degrade to absent bounds/center
// rather than aborting.
func NewTransform(srs *SpatialReference) (Projection, error) {
	if srs == nil {
		return nil, fmt.Errorf("no spatial reference")
	}
	if srs.Model == ModelGeographic {
		return &WGS84Identity{}, nil
	}
	if p := ForEPSG(srs.EPSG); p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("unsupported CRS %s", srs)
}

// WGS84Identity is a no-op projection for data already in EPSG:4326.
type WGS84Identity struct{}

func (w *WGS84Identity) ToWGS84(x, y float64) (lon, lat float64)   { return x, y }
func (w *WGS84Identity) FromWGS84(lon, lat float64) (x, y float64) { return lon, lat }
func (w *WGS84Identity) EPSG() int                                 { return 4326 }
