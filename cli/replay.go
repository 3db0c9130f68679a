package cli

import (
	"fmt"

	"github.com/mobile-next/galleryview/commands"
	"github.com/spf13/cobra"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a recorded touch script",
	Long:  `Runs a JSON touch script against a fresh viewer on a virtual clock and prints the navigation events and final state.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		script, err := commands.LoadScript(replayFile)
		if err != nil {
			response := commands.NewErrorResponse(err)
			printJson(response)
			return err
		}

		return runScript(script)
	},
}

// runScript replays script with the configured thresholds and prints the result
func runScript(script commands.Script) error {
	th, err := loadThresholds()
	if err != nil {
		response := commands.NewErrorResponse(err)
		printJson(response)
		return err
	}

	response := commands.ReplayCommand(commands.ReplayRequest{
		Script:     script,
		Thresholds: th,
		Trace:      replayTrace,
	})
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(replayCmd)

	replayCmd.Flags().StringVarP(&replayFile, "file", "f", "", "path to the JSON touch script")
	replayCmd.Flags().BoolVar(&replayTrace, "trace", false, "include the state after every step")
	_ = replayCmd.MarkFlagRequired("file")
}
