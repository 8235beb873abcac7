package report

import (
	"strings"
	"testing"
	"time"

	"github.com/paulmach/orb"

	"github.com/geotool-cli/geotool/internal/geo"
	"github.com/geotool-cli/geotool/internal/raster"
)

func availableGeographic() geo.Geographic {
	return geo.Geographic{
		Bounds:    orb.Bound{Min: orb.Point{7.414430, 46.938000}, Max: orb.Point{7.424430, 46.948000}},
		Center:    orb.Point{7.419430, 46.943000},
		Available: true,
	}
}

func TestFormatBounds(t *testing.T) {
	got := FormatBounds(availableGeographic())
	want := "7.414430°E - 7.424430°E, 46.938000°N - 46.948000°N"
	if got != want {
		t.Errorf("FormatBounds() = %q, want %q", got, want)
	}
}

func TestFormatBoundsWesternSouthern(t *testing.T) {
	g := geo.Geographic{
		Bounds:    orb.Bound{Min: orb.Point{-122.5, -33.5}, Max: orb.Point{-122.0, -33.0}},
		Available: true,
	}
	got := FormatBounds(g)
	want := "122.500000°W - 122.000000°W, 33.500000°S - 33.000000°S"
	if got != want {
		t.Errorf("FormatBounds() = %q, want %q", got, want)
	}
}

func TestFormatBoundsUnavailable(t *testing.T) {
	if got := FormatBounds(geo.Geographic{}); got != "unavailable" {
		t.Errorf("FormatBounds() = %q, want unavailable", got)
	}
	if got := FormatCenter(geo.Geographic{}); got != "unavailable" {
		t.Errorf("FormatCenter() = %q, want unavailable", got)
	}
}

func TestFormatCenter(t *testing.T) {
	got := FormatCenter(availableGeographic())
	want := "7.419430°E, 46.943000°N"
	if got != want {
		t.Errorf("FormatCenter() = %q, want %q", got, want)
	}
}

func TestBandReportDerived(t *testing.T) {
	b := BandReport{
		Band:     1,
		Stats:    raster.Statistics{Min: 10, Max: 110, Mean: 50, StdDev: 5, Count: 100},
		HasStats: true,
	}
	if got := b.ValueRange(); got != 100 {
		t.Errorf("ValueRange() = %v, want 100", got)
	}
	if got := b.CoefficientOfVariation(); got != 10 {
		t.Errorf("CoefficientOfVariation() = %v, want 10", got)
	}

	zeroMean := BandReport{Stats: raster.Statistics{StdDev: 5}}
	if got := zeroMean.CoefficientOfVariation(); got != 0 {
		t.Errorf("CoefficientOfVariation() with zero mean = %v, want 0", got)
	}
}

func TestNewInfo(t *testing.T) {
	nodata := -1.0
	md := raster.Metadata{
		Width:     100,
		Height:    100,
		BandCount: 1,
		PixelType: raster.UInt16,
		Transform: geo.Affine{OriginX: 500000, PixelWidth: 10, OriginY: 4000000, PixelHeight: -10},
		SRS:       &geo.SpatialReference{EPSG: 32633, Model: geo.ModelProjected},
		NoData:    &nodata,
	}
	buf := raster.NewBuffer(100, 100, 1)
	for i := range buf.Bands[0] {
		buf.Bands[0][i] = float64(i % 100)
	}
	buf.Bands[0][0] = -1 // nodata, masked out of the statistics

	info := NewInfo(FileInfo{Path: "test.tif", SizeBytes: 1000}, md, buf)

	if !info.Geographic.Available {
		t.Error("geographic footprint not available for supported CRS")
	}
	if !info.Span.Valid || info.Span.XSpanKm != 1.0 {
		t.Errorf("span = %+v, want valid 1 km", info.Span)
	}
	if len(info.Bands) != 1 {
		t.Fatalf("bands = %d, want 1", len(info.Bands))
	}
	if !info.Bands[0].HasStats {
		t.Fatal("band has no statistics")
	}
	if info.Bands[0].Stats.Count != 100*100-1 {
		t.Errorf("stat count = %d, want %d (nodata masked)", info.Bands[0].Stats.Count, 100*100-1)
	}
	if info.Bands[0].Stats.Min != 0 {
		t.Errorf("min = %v, want 0 (nodata excluded)", info.Bands[0].Stats.Min)
	}
}

func TestNewInfoWithoutBuffer(t *testing.T) {
	md := raster.Metadata{Width: 10, Height: 10, BandCount: 3, PixelType: raster.Byte, Transform: geo.DefaultAffine}
	info := NewInfo(FileInfo{}, md, nil)
	if len(info.Bands) != 0 {
		t.Errorf("bands = %d, want 0 when no buffer given", len(info.Bands))
	}
	if info.Geographic.Available {
		t.Error("geography available without CRS")
	}
}

func TestCompressionPercent(t *testing.T) {
	info := &Info{
		File: FileInfo{SizeBytes: 2500},
		Meta: raster.Metadata{Width: 100, Height: 100, BandCount: 1, PixelType: raster.Byte},
	}
	// 10000 raw bytes stored in 2500: 75% smaller.
	if got := info.CompressionPercent(); got != 75 {
		t.Errorf("CompressionPercent() = %v, want 75", got)
	}
}

func TestCropResultDerived(t *testing.T) {
	input := &Info{
		File: FileInfo{Path: "in.tif", SizeBytes: 1 << 20},
		Meta: raster.Metadata{Width: 100, Height: 100, BandCount: 1, PixelType: raster.Byte},
	}
	c := CropResult{
		Input:   input,
		Window:  raster.Window{XOff: 0, YOff: 0, Width: 50, Height: 50},
		Elapsed: time.Second,
		Output: &Info{
			File: FileInfo{SizeBytes: 2 << 20},
		},
	}

	if got := c.CropPixels(); got != 2500 {
		t.Errorf("CropPixels() = %d, want 2500", got)
	}
	if got := c.CropPercent(); got != 25 {
		t.Errorf("CropPercent() = %v, want 25", got)
	}
	if got := c.PixelsPerSecond(); got != 2500 {
		t.Errorf("PixelsPerSecond() = %v, want 2500", got)
	}
	if got := c.MBPerSecond(); got != 2 {
		t.Errorf("MBPerSecond() = %v, want 2", got)
	}
}

func TestRenderInfo(t *testing.T) {
	md := raster.Metadata{
		Width:     100,
		Height:    50,
		BandCount: 1,
		PixelType: raster.UInt16,
		Transform: geo.Affine{OriginX: 500000, PixelWidth: 10, OriginY: 4000000, PixelHeight: -10},
		SRS:       &geo.SpatialReference{EPSG: 32633, Model: geo.ModelProjected},
	}
	buf := raster.NewBuffer(100, 50, 1)
	for i := range buf.Bands[0] {
		buf.Bands[0][i] = float64(i)
	}
	info := NewInfo(FileInfo{Path: "scene.tif", SizeBytes: 9000}, md, buf)

	var sb strings.Builder
	RenderInfo(&sb, info)
	out := sb.String()

	for _, want := range []string{
		"File: scene.tif",
		"Dimensions: 100 x 50 (5000 pixels)",
		"Pixel type: UInt16",
		"CRS: EPSG:32633",
		"Coverage: 1.000 km x 0.500 km",
		"Band 1: min=0.000 max=4999.000",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderInfo() output missing %q\n%s", want, out)
		}
	}
}

func TestRenderCropWarnings(t *testing.T) {
	input := &Info{
		File: FileInfo{Path: "in.tif"},
		Meta: raster.Metadata{Width: 10, Height: 10, BandCount: 1, PixelType: raster.Byte, Transform: geo.DefaultAffine},
	}
	c := CropResult{
		Input:    input,
		Window:   raster.Window{XOff: 5, YOff: 5, Width: 10, Height: 10},
		Warnings: []string{"x offset 5 + width 10 exceeds raster width 10"},
	}

	var sb strings.Builder
	RenderCrop(&sb, c)
	out := sb.String()

	if !strings.Contains(out, "Warning: x offset 5 + width 10 exceeds raster width 10") {
		t.Errorf("RenderCrop() output missing warning\n%s", out)
	}
	if !strings.Contains(out, "window(xoff=5, yoff=5, width=10, height=10)") {
		t.Errorf("RenderCrop() output missing window\n%s", out)
	}
}
