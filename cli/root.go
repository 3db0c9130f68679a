package cli

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/galleryview/utils"
	"github.com/mobile-next/galleryview/viewer"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "galleryview",
	Short: "A touch gesture engine for full-screen image viewers",
	Long:  `Hosts and replays full-screen image viewer sessions: swipe to navigate, swipe down to close, pinch and double-tap to zoom.`,
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func initConfig() {
	utils.SetVerbose(verbose)
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().StringVar(&thresholdsPath, "thresholds", "", "INI file overriding gesture thresholds")
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// loadThresholds returns nil when no file was given, leaving the defaults
func loadThresholds() (*viewer.Thresholds, error) {
	if thresholdsPath == "" {
		return nil, nil
	}

	th, err := viewer.LoadThresholds(thresholdsPath)
	if err != nil {
		return nil, err
	}
	return &th, nil
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}
