package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/geotool-cli/geotool/internal/geotiff"
	"github.com/geotool-cli/geotool/internal/report"
)

var infoCmd = &cobra.Command{
	Use:   "info <file.tif>",
	Short: "Print raster metadata, geography and band statistics",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().Bool("no-stats", false, "skip per-band statistics (faster, metadata only)")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	ds, err := geotiff.Open(args[0])
	if err != nil {
		return err
	}
	defer ds.Close()

	file, err := report.StatFile(args[0])
	if err != nil {
		return err
	}

	noStats, _ := cmd.Flags().GetBool("no-stats")
	if noStats {
		info := report.NewInfo(file, ds.Metadata(), nil)
		report.RenderInfo(os.Stdout, info)
		return nil
	}

	samples, err := ds.Read()
	if err != nil {
		return err
	}
	info := report.NewInfo(file, ds.Metadata(), samples)
	report.RenderInfo(os.Stdout, info)
	return nil
}
