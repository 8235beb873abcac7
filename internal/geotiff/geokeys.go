package geotiff

import (
	"strings"

	"github.com/geotool-cli/geotool/internal/geo"
)

// GeoTIFF GeoKey IDs.
const (
	gkModelType        = 1024
	gkRasterType       = 1025
	gkCitation         = 1026
	gkGeographicType   = 2048
	gkGeogCitation     = 2049
	gkProjectedCSType  = 3072
	gkProjCitation     = 3073
	gkProjLinearUnits  = 3076
	gkProjLinearUnitSz = 3077
)

// GeoKey model type values.
const (
	modelTypeProjected  = 1
	modelTypeGeographic = 2
)

// parseSpatialReference decodes the GeoKey directory into a coordinate
// reference description. Returns nil when the file carries no GeoKeys at all.
func parseSpatialReference(d *ifd) *geo.SpatialReference {
	if len(d.GeoKeys) < 4 {
		return nil
	}

	// Directory header: [KeyDirectoryVersion, KeyRevision, MinorRevision, NumberOfKeys]
	numKeys := int(d.GeoKeys[3])

	srs := &geo.SpatialReference{}
	for i := 0; i < numKeys; i++ {
		base := 4 + i*4
		if base+3 >= len(d.GeoKeys) {
			break
		}
		keyID := d.GeoKeys[base]
		location := d.GeoKeys[base+1]
		count := int(d.GeoKeys[base+2])
		valueOffset := d.GeoKeys[base+3]

		switch keyID {
		case gkModelType:
			switch valueOffset {
			case modelTypeProjected:
				srs.Model = geo.ModelProjected
			case modelTypeGeographic:
				srs.Model = geo.ModelGeographic
			}
		case gkProjectedCSType:
			if valueOffset > 0 && valueOffset != 32767 {
				srs.EPSG = int(valueOffset)
			}
		case gkGeographicType:
			// The projected code wins when both are present.
			if srs.EPSG == 0 && valueOffset > 0 && valueOffset != 32767 {
				srs.EPSG = int(valueOffset)
			}
		case gkProjCitation, gkCitation, gkGeogCitation:
			if srs.Citation == "" {
				srs.Citation = geoKeyASCII(d, location, count, valueOffset)
			}
		case gkProjLinearUnits:
			srs.LinearUnitCode = valueOffset
		case gkProjLinearUnitSz:
			srs.LinearUnitSize = geoKeyDouble(d, location, valueOffset)
		}
	}
	return srs
}

// geoKeyASCII resolves a GeoKey value stored in the ASCII params tag.
func geoKeyASCII(d *ifd, location uint16, count int, offset uint16) string {
	if location != tagGeoAsciiParams {
		return ""
	}
	start := int(offset)
	end := start + count
	if start < 0 || end > len(d.GeoAsciiParams) {
		return ""
	}
	// GeoTIFF terminates ASCII values with '|'.
	return strings.TrimRight(d.GeoAsciiParams[start:end], "|\x00")
}

// geoKeyDouble resolves a GeoKey value stored in the double params tag.
func geoKeyDouble(d *ifd, location uint16, offset uint16) float64 {
	if location != tagGeoDoubleParams || int(offset) >= len(d.GeoDoubleParams) {
		return 0
	}
	return d.GeoDoubleParams[int(offset)]
}
