package main

import (
	"fmt"
	"image"
	"os"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/geotool-cli/geotool/internal/encode"
	"github.com/geotool-cli/geotool/internal/geotiff"
	"github.com/geotool-cli/geotool/internal/raster"
	"github.com/geotool-cli/geotool/internal/report"
)

var convertCmd = &cobra.Command{
	Use:   "convert <file.tif>",
	Short: "Export a contrast-stretched 8-bit preview image",
	Long: `convert renders one raster band as an 8-bit grayscale preview.

The band values are stretched so that the central percentile range fills the
full 0-255 output range, which makes 16-bit and floating point rasters
viewable without manual scaling. Outliers beyond the truncation percentiles
are clipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	convertCmd.Flags().StringP("output", "o", "", "output file (default: input name with format extension)")
	convertCmd.Flags().StringP("format", "f", "png", "output format (png|jpeg|webp)")
	convertCmd.Flags().Int("quality", 85, "quality for lossy formats (1-100)")
	convertCmd.Flags().Int("downsample", 1, "integer downsample factor")
	convertCmd.Flags().Int("band", 1, "band to render (1-based)")
	convertCmd.Flags().Float64("percent", 2, "truncation percentile for the stretch")

	viper.BindPFlag("convert.format", convertCmd.Flags().Lookup("format"))
	viper.BindPFlag("convert.quality", convertCmd.Flags().Lookup("quality"))
	viper.BindPFlag("convert.downsample", convertCmd.Flags().Lookup("downsample"))
	viper.BindPFlag("convert.percent", convertCmd.Flags().Lookup("percent"))

	rootCmd.AddCommand(convertCmd)
}

func runConvert(cmd *cobra.Command, args []string) error {
	start := time.Now()
	input := args[0]

	format := viper.GetString("convert.format")
	quality := viper.GetInt("convert.quality")
	downsample := viper.GetInt("convert.downsample")
	percent := viper.GetFloat64("convert.percent")
	band, _ := cmd.Flags().GetInt("band")
	output, _ := cmd.Flags().GetString("output")

	if downsample < 1 {
		return fmt.Errorf("downsample factor must be >= 1, got %d", downsample)
	}
	if percent < 0 || percent >= 50 {
		return fmt.Errorf("truncation percentile must be in [0, 50), got %g", percent)
	}

	enc, err := encode.NewEncoder(format, quality)
	if err != nil {
		return err
	}
	if output == "" {
		output = strings.TrimSuffix(input, ".tif")
		output = strings.TrimSuffix(output, ".tiff")
		output += enc.FileExtension()
	}

	ds, err := geotiff.Open(input)
	if err != nil {
		return err
	}
	defer ds.Close()

	md := ds.Metadata()
	buf, err := ds.Read()
	if err != nil {
		return err
	}
	samples, err := buf.Band(band)
	if err != nil {
		return err
	}

	stretched := raster.Stretch(samples, percent, raster.StretchMin, raster.StretchMax)
	gray := &image.Gray{
		Pix:    stretched,
		Stride: md.Width,
		Rect:   image.Rect(0, 0, md.Width, md.Height),
	}

	var img image.Image = gray
	outW, outH := md.Width, md.Height
	if downsample > 1 {
		outW = md.Width / downsample
		outH = md.Height / downsample
		if outW < 1 || outH < 1 {
			return fmt.Errorf("downsample factor %d exceeds raster size %dx%d", downsample, md.Width, md.Height)
		}
		img = imaging.Resize(gray, outW, outH, imaging.Box)
	}

	data, err := enc.Encode(img)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", output, err)
	}
	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", output, err)
	}

	file, err := report.StatFile(input)
	if err != nil {
		return err
	}
	result := report.Conversion{
		Input:      report.NewInfo(file, md, buf),
		OutputPath: output,
		Format:     enc.Format(),
		Quality:    quality,
		Downsample: downsample,
		OutWidth:   outW,
		OutHeight:  outH,
		OutputSize: int64(len(data)),
		Elapsed:    time.Since(start),
	}
	report.RenderConversion(os.Stdout, result)
	return nil
}
