package report

import (
	"fmt"
	"io"
	"math"

	"github.com/geotool-cli/geotool/internal/geo"
)

// FormatBounds renders geographic bounds as hemisphere-qualified degrees,
// e.g. "7.414430°E - 7.424430°E, 46.938000°N - 46.948000°N".
func FormatBounds(g geo.Geographic) string {
	if !g.Available {
		return "unavailable"
	}
	b := g.Bounds
	return fmt.Sprintf("%s - %s, %s - %s",
		formatDegrees(b.Left(), "E", "W"),
		formatDegrees(b.Right(), "E", "W"),
		formatDegrees(b.Bottom(), "N", "S"),
		formatDegrees(b.Top(), "N", "S"))
}

// FormatCenter renders the geographic center, longitude first.
func FormatCenter(g geo.Geographic) string {
	if !g.Available {
		return "unavailable"
	}
	return fmt.Sprintf("%s, %s",
		formatDegrees(g.Center.Lon(), "E", "W"),
		formatDegrees(g.Center.Lat(), "N", "S"))
}

func orientation(width, height int) string {
	switch {
	case width > height:
		return "landscape"
	case width < height:
		return "portrait"
	default:
		return "square"
	}
}

func formatDegrees(v float64, pos, neg string) string {
	dir := pos
	if v < 0 {
		dir = neg
	}
	return fmt.Sprintf("%.6f°%s", math.Abs(v), dir)
}

// RenderInfo writes the full analysis as text.
func RenderInfo(w io.Writer, info *Info) {
	fmt.Fprintf(w, "File: %s\n", info.File.Path)
	fmt.Fprintf(w, "Size: %d bytes (%.2f MB)\n", info.File.SizeBytes, info.File.SizeMB())
	fmt.Fprintf(w, "Modified: %s\n", info.File.ModTime.Format("2006-01-02 15:04:05"))
	fmt.Fprintln(w)

	md := info.Meta
	fmt.Fprintf(w, "Dimensions: %d x %d (%d pixels)\n", md.Width, md.Height, md.TotalPixels())
	fmt.Fprintf(w, "Bands: %d\n", md.BandCount)
	fmt.Fprintf(w, "Pixel type: %s (%s, %s)\n",
		md.PixelType.Name(), md.PixelType.Description(), md.PixelType.ValueRange())
	fmt.Fprintf(w, "Aspect ratio: %.3f (%s)\n", md.AspectRatio(), orientation(md.Width, md.Height))
	fmt.Fprintf(w, "Uncompressed size: %d bytes\n", md.UncompressedSize())
	fmt.Fprintf(w, "Compression: %.1f%%\n", info.CompressionPercent())
	if md.NoData != nil {
		fmt.Fprintf(w, "NoData: %g\n", *md.NoData)
	}
	fmt.Fprintln(w)

	if md.SRS != nil {
		fmt.Fprintf(w, "CRS: %s\n", md.SRS)
	} else {
		fmt.Fprintf(w, "CRS: none\n")
	}
	fmt.Fprintf(w, "Geotransform: %s\n", md.Transform)
	rx, ry := md.Transform.Resolution()
	fmt.Fprintf(w, "Origin: (%.6f, %.6f)\n", md.Transform.OriginX, md.Transform.OriginY)
	fmt.Fprintf(w, "Pixel resolution: %.6f x %.6f\n", rx, ry)

	if info.Span.Valid {
		approx := ""
		if info.Span.Approximate {
			approx = " (approximate)"
		}
		fmt.Fprintf(w, "Coverage: %.3f km x %.3f km, %.3f km2%s\n",
			info.Span.XSpanKm, info.Span.YSpanKm, info.Span.AreaKm2, approx)
		fmt.Fprintf(w, "CRS unit: %s\n", info.Span.UnitName)
	} else {
		fmt.Fprintf(w, "Coverage: unavailable\n")
	}

	fmt.Fprintf(w, "Geographic bounds: %s\n", FormatBounds(info.Geographic))
	fmt.Fprintf(w, "Geographic center: %s\n", FormatCenter(info.Geographic))

	if len(info.Bands) > 0 {
		fmt.Fprintln(w)
		for _, b := range info.Bands {
			if !b.HasStats {
				fmt.Fprintf(w, "Band %d: no valid samples\n", b.Band)
				continue
			}
			fmt.Fprintf(w, "Band %d: min=%.3f max=%.3f mean=%.3f stddev=%.3f range=%.3f cv=%.1f%% (n=%d)\n",
				b.Band, b.Stats.Min, b.Stats.Max, b.Stats.Mean, b.Stats.StdDev,
				b.ValueRange(), b.CoefficientOfVariation(), b.Stats.Count)
		}
	}
}

// RenderConversion writes the export summary as text.
func RenderConversion(w io.Writer, c Conversion) {
	fmt.Fprintf(w, "Converted %s -> %s\n", c.Input.File.Path, c.OutputPath)
	fmt.Fprintf(w, "Format: %s", c.Format)
	if c.Format != "png" {
		fmt.Fprintf(w, " (quality %d)", c.Quality)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Output size: %d x %d", c.OutWidth, c.OutHeight)
	if c.Downsample > 1 {
		fmt.Fprintf(w, " (downsampled %dx)", c.Downsample)
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Output file: %d bytes (%.1f%% of input)\n", c.OutputSize, c.SizeRatio())
	fmt.Fprintf(w, "Elapsed: %.3f s\n", c.Elapsed.Seconds())
}

// RenderCrop writes the extraction summary as text, followed by the analysis
// of the produced raster.
func RenderCrop(w io.Writer, c CropResult) {
	fmt.Fprintf(w, "Crop %s: %s\n", c.Input.File.Path, c.Window)
	fmt.Fprintf(w, "Pixels: %d (%.2f%% of source)\n", c.CropPixels(), c.CropPercent())
	for _, warn := range c.Warnings {
		fmt.Fprintf(w, "Warning: %s\n", warn)
	}
	if c.Output != nil {
		fmt.Fprintf(w, "Elapsed: %.3f s (%.0f pixels/s, %.2f MB/s)\n",
			c.Elapsed.Seconds(), c.PixelsPerSecond(), c.MBPerSecond())
		fmt.Fprintln(w)
		RenderInfo(w, c.Output)
	}
}
