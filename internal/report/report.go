// Package report assembles analysis results for rasters and renders them as
// text. Assembly and rendering are separate so the CLI can reuse the same
// analysis for different outputs.
package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/geotool-cli/geotool/internal/geo"
	"github.com/geotool-cli/geotool/internal/raster"
)

// FileInfo describes the on-disk file behind a raster.
type FileInfo struct {
	Path      string
	Name      string
	SizeBytes int64
	ModTime   time.Time
}

// SizeMB returns the file size in megabytes.
func (f FileInfo) SizeMB() float64 {
	return float64(f.SizeBytes) / (1024 * 1024)
}

// StatFile collects filesystem facts about the given path.
func StatFile(path string) (FileInfo, error) {
	st, err := os.Stat(path)
	if err != nil {
		return FileInfo{}, fmt.Errorf("stat %s: %w", path, err)
	}
	return FileInfo{
		Path:      path,
		Name:      filepath.Base(path),
		SizeBytes: st.Size(),
		ModTime:   st.ModTime(),
	}, nil
}

// BandReport carries per-band statistics. HasStats is false when the band has
// no valid samples (all nodata or non-finite).
type BandReport struct {
	Band     int
	Stats    raster.Statistics
	HasStats bool
}

// ValueRange returns max-min for a band with statistics.
func (b BandReport) ValueRange() float64 {
	return b.Stats.Max - b.Stats.Min
}

// CoefficientOfVariation returns stddev/mean as a percentage, or 0 when the
// mean is zero.
func (b BandReport) CoefficientOfVariation() float64 {
	if b.Stats.Mean == 0 {
		return 0
	}
	return b.Stats.StdDev / b.Stats.Mean * 100
}

// Info is the full analysis of one raster: file facts, structural metadata,
// derived geography and per-band statistics.
type Info struct {
	File       FileInfo
	Meta       raster.Metadata
	Geographic geo.Geographic
	Span       geo.SpanArea
	Bands      []BandReport
}

// NewInfo analyzes an opened raster. The buffer may be nil, in which case the
// per-band statistics are omitted.
func NewInfo(file FileInfo, md raster.Metadata, buf *raster.Buffer) *Info {
	info := &Info{
		File:       file,
		Meta:       md,
		Geographic: geo.Reproject(md.Transform, md.SRS, md.Width, md.Height),
	}
	info.Span = geo.Estimate(md.Transform, md.SRS, md.Width, md.Height, info.Geographic)

	if buf != nil {
		for i, samples := range buf.Bands {
			valid := raster.MaskValid(samples, md.NoData)
			stats, ok := raster.ComputeStatistics(valid)
			info.Bands = append(info.Bands, BandReport{Band: i + 1, Stats: stats, HasStats: ok})
		}
	}
	return info
}

// CompressionPercent returns how much smaller the file is than its
// uncompressed in-memory size, as a percentage. Negative values mean the file
// is larger than the raw samples.
func (i *Info) CompressionPercent() float64 {
	raw := i.Meta.UncompressedSize()
	if raw == 0 {
		return 0
	}
	return (1 - float64(i.File.SizeBytes)/float64(raw)) * 100
}

// Conversion summarizes a raster-to-image export.
type Conversion struct {
	Input      *Info
	OutputPath string
	Format     string
	Quality    int
	Downsample int
	OutWidth   int
	OutHeight  int
	OutputSize int64
	Elapsed    time.Duration
}

// SizeRatio returns output size as a percentage of the input file size.
func (c Conversion) SizeRatio() float64 {
	if c.Input == nil || c.Input.File.SizeBytes == 0 {
		return 0
	}
	return float64(c.OutputSize) / float64(c.Input.File.SizeBytes) * 100
}

// CropResult summarizes a window extraction.
type CropResult struct {
	Input    *Info
	Window   raster.Window
	Warnings []string
	Output   *Info
	Elapsed  time.Duration
}

// CropPixels returns the number of pixels in the extracted window.
func (c CropResult) CropPixels() int64 {
	return int64(c.Window.Width) * int64(c.Window.Height)
}

// CropPercent returns the window size as a percentage of the source raster.
func (c CropResult) CropPercent() float64 {
	if c.Input == nil || c.Input.Meta.TotalPixels() == 0 {
		return 0
	}
	return float64(c.CropPixels()) / float64(c.Input.Meta.TotalPixels()) * 100
}

// PixelsPerSecond returns the crop throughput in pixels.
func (c CropResult) PixelsPerSecond() float64 {
	if c.Elapsed <= 0 {
		return 0
	}
	return float64(c.CropPixels()) / c.Elapsed.Seconds()
}

// MBPerSecond returns the crop throughput in output megabytes.
func (c CropResult) MBPerSecond() float64 {
	if c.Elapsed <= 0 || c.Output == nil {
		return 0
	}
	return c.Output.File.SizeMB() / c.Elapsed.Seconds()
}
