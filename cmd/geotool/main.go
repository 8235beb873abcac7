package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "geotool",
	Short: "Inspect, convert and crop georeferenced rasters",
	Long: `geotool reads GeoTIFF rasters and derives what a map needs to know
about them: georeferencing, geographic bounds, coverage and band statistics.

Examples:
  # Print the full analysis of a raster
  geotool info dem.tif

  # Export a stretched 8-bit preview
  geotool convert dem.tif -o dem.png

  # Export a downsampled WebP preview
  geotool convert ortho.tif --format webp --quality 80 --downsample 4 -o ortho.webp

  # Extract a pixel window into a new GeoTIFF
  geotool crop dem.tif --xoff 100 --yoff 100 --width 512 --height 512 -o patch.tif`,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.geotool.yaml)")
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory.
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		// Search config in home directory with name ".geotool" (without extension).
		viper.AddConfigPath(home)
		viper.SetConfigType("yaml")
		viper.SetConfigName(".geotool")
	}

	viper.SetEnvPrefix("geotool")
	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
