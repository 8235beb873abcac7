package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/geotool-cli/geotool/internal/geotiff"
	"github.com/geotool-cli/geotool/internal/raster"
	"github.com/geotool-cli/geotool/internal/report"
)

var cropCmd = &cobra.Command{
	Use:   "crop <file.tif>",
	Short: "Extract a pixel window into a new GeoTIFF",
	Long: `crop copies a rectangular pixel region into a new GeoTIFF. The output
keeps the band layout, pixel type, CRS and nodata of the source; the
georeference origin is shifted so the output stays correctly placed.

A window reaching outside the source extent is reported as a warning before
the extraction is attempted.`,
	Args: cobra.ExactArgs(1),
	RunE: runCrop,
}

func init() {
	cropCmd.Flags().StringP("output", "o", "", "output file (default: input name with _crop suffix)")
	cropCmd.Flags().Int("xoff", 0, "window x offset in pixels")
	cropCmd.Flags().Int("yoff", 0, "window y offset in pixels")
	cropCmd.Flags().Int("width", 0, "window width in pixels (required)")
	cropCmd.Flags().Int("height", 0, "window height in pixels (required)")
	cropCmd.MarkFlagRequired("width")
	cropCmd.MarkFlagRequired("height")
	rootCmd.AddCommand(cropCmd)
}

func runCrop(cmd *cobra.Command, args []string) error {
	start := time.Now()
	input := args[0]

	xoff, _ := cmd.Flags().GetInt("xoff")
	yoff, _ := cmd.Flags().GetInt("yoff")
	width, _ := cmd.Flags().GetInt("width")
	height, _ := cmd.Flags().GetInt("height")
	output, _ := cmd.Flags().GetString("output")

	if output == "" {
		base := strings.TrimSuffix(strings.TrimSuffix(input, ".tif"), ".tiff")
		output = base + "_crop.tif"
	}

	win := raster.Window{XOff: xoff, YOff: yoff, Width: width, Height: height}

	ds, err := geotiff.Open(input)
	if err != nil {
		return err
	}
	defer ds.Close()
	md := ds.Metadata()

	// Out-of-range windows warn but do not abort; the extraction itself
	// decides whether the window is readable.
	warnings := validateWindow(win, md)
	for _, w := range warnings {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}

	buf, err := ds.Read()
	if err != nil {
		return err
	}

	croppedMD, croppedBuf, err := raster.Crop(md, buf, win)
	if err != nil {
		return fmt.Errorf("cropping %s: %w", input, err)
	}

	if err := geotiff.Write(output, croppedMD, croppedBuf); err != nil {
		return err
	}

	inFile, err := report.StatFile(input)
	if err != nil {
		return err
	}
	result := report.CropResult{
		Input:    report.NewInfo(inFile, md, nil),
		Window:   win,
		Warnings: warnings,
		Elapsed:  time.Since(start),
	}

	// Analyze the produced file the same way info does.
	if out, err := geotiff.Open(output); err == nil {
		outFile, statErr := report.StatFile(output)
		if statErr == nil {
			outBuf, _ := out.Read()
			result.Output = report.NewInfo(outFile, out.Metadata(), outBuf)
		}
		out.Close()
	}

	report.RenderCrop(os.Stdout, result)
	return nil
}

// validateWindow returns human-readable reasons the window does not fit the
// raster. An empty slice means the window is fully inside.
func validateWindow(win raster.Window, md raster.Metadata) []string {
	var warnings []string
	if win.XOff < 0 {
		warnings = append(warnings, fmt.Sprintf("x offset %d is negative", win.XOff))
	}
	if win.YOff < 0 {
		warnings = append(warnings, fmt.Sprintf("y offset %d is negative", win.YOff))
	}
	if win.Width <= 0 {
		warnings = append(warnings, fmt.Sprintf("window width %d is not positive", win.Width))
	}
	if win.Height <= 0 {
		warnings = append(warnings, fmt.Sprintf("window height %d is not positive", win.Height))
	}
	if win.XOff >= 0 && win.Width > 0 && win.XOff+win.Width > md.Width {
		warnings = append(warnings, fmt.Sprintf("x offset %d + width %d exceeds raster width %d",
			win.XOff, win.Width, md.Width))
	}
	if win.YOff >= 0 && win.Height > 0 && win.YOff+win.Height > md.Height {
		warnings = append(warnings, fmt.Sprintf("y offset %d + height %d exceeds raster height %d",
			win.YOff, win.Height, md.Height))
	}
	return warnings
}
