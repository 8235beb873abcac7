package geo

import "fmt"

// ModelType distinguishes projected from geographic coordinate systems.
type ModelType int

const (
	ModelUnknown ModelType = iota
	ModelProjected
	ModelGeographic
)

// EPSG unit codes as used by GeoTIFF geokeys.
const (
	UnitMetre        = 9001
	UnitFoot         = 9002
	UnitFootUSSurvey = 9003
	UnitKilometre    = 9036
	UnitDegree       = 9102
	unitUserDefined  = 32767
)

// SpatialReference is an opaque CRS descriptor derived from GeoTIFF geokeys
// (or an equivalent source). It is owned by the raster metadata and never
// mutated after construction.
type SpatialReference struct {
	EPSG     int       // authority code, 0 when unknown
	Model    ModelType // projected or geographic
	Citation string    // human-readable CRS name, may be empty

	LinearUnitCode uint16  // EPSG unit code, 0 when unset
	LinearUnitSize float64 // metres per unit for user-defined units
}

// LinearUnit resolves the CRS linear unit name and its conversion factor to
// metres. It fails when the reference carries no usable unit information;
// callers fall back to a geographic approximation in that case. A geographic
// CRS resolves to ("degree", 1.0) without error, mirroring GDAL's neutral
// GetLinearUnits behavior.
func (s *SpatialReference) LinearUnit() (name string, toMetres float64, err error) {
	if s == nil {
		return "", 0, fmt.Errorf("no spatial reference")
	}

	if s.Model == ModelGeographic {
		return "degree", 1.0, nil
	}

	switch s.LinearUnitCode {
	case UnitMetre:
		return "metre", 1.0, nil
	case UnitFoot:
		return "foot", 0.3048, nil
	case UnitFootUSSurvey:
		return "US survey foot", 1200.0 / 3937.0, nil
	case UnitKilometre:
		return "kilometre", 1000.0, nil
	case UnitDegree:
		return "degree", 1.0, nil
	case unitUserDefined:
		if s.LinearUnitSize > 0 {
			return "user-defined", s.LinearUnitSize, nil
		}
		return "", 0, fmt.Errorf("user-defined linear unit without a unit size")
	case 0:
		// GeoTIFF defaults projected coordinates to metres.
		if s.Model == ModelProjected || s.EPSG != 0 {
			return "metre", 1.0, nil
		}
		return "", 0, fmt.Errorf("spatial reference carries no linear unit")
	default:
		return "", 0, fmt.Errorf("unsupported linear unit code %d", s.LinearUnitCode)
	}
}

func (s *SpatialReference) String() string {
	if s == nil {
		return "none"
	}
	switch {
	case s.EPSG != 0 && s.Citation != "":
		return fmt.Sprintf("EPSG:%d (%s)", s.EPSG, s.Citation)
	case s.EPSG != 0:
		return fmt.Sprintf("EPSG:%d", s.EPSG)
	case s.Citation != "":
		return s.Citation
	default:
		return "unknown"
	}
}
