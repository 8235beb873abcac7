package geotiff

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/geotool-cli/geotool/internal/geo"
)

// A TIFF World File carries six lines:
//
//	Line 1: x-component of pixel size
//	Line 2: rotation term for the y-coordinate (column skew)
//	Line 3: rotation term for the x-coordinate (row skew)
//	Line 4: y-component of pixel size (negative for north-up)
//	Line 5: x-coordinate of the center of the upper-left pixel
//	Line 6: y-coordinate of the center of the upper-left pixel
//
// The origin refers to the pixel center; the returned transform is adjusted
// to the top-left corner convention used everywhere else.
func parseTFW(path string) (geo.Affine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return geo.Affine{}, fmt.Errorf("reading world file %s: %w", path, err)
	}

	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) < 6 {
		return geo.Affine{}, fmt.Errorf("world file %s: expected 6 lines, got %d", path, len(lines))
	}

	vals := make([]float64, 6)
	for i := 0; i < 6; i++ {
		v, err := strconv.ParseFloat(strings.TrimSpace(lines[i]), 64)
		if err != nil {
			return geo.Affine{}, fmt.Errorf("world file %s line %d: %w", path, i+1, err)
		}
		vals[i] = v
	}

	tr := geo.Affine{
		PixelWidth:  vals[0],
		ColSkew:     vals[1],
		RowSkew:     vals[2],
		PixelHeight: vals[3],
		OriginX:     vals[4],
		OriginY:     vals[5],
	}
	// Move the origin from pixel center to pixel corner.
	return tr.ShiftOrigin(-0.5, -0.5), nil
}

// findTFW looks for a world file sidecar alongside the given TIFF path.
// Checks extensions: .tfw, .TFW, .tifw, .TIFW
func findTFW(tiffPath string) string {
	ext := filepath.Ext(tiffPath)
	base := tiffPath[:len(tiffPath)-len(ext)]

	candidates := []string{".tfw", ".TFW", ".tifw", ".TIFW"}
	for _, c := range candidates {
		p := base + c
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}
