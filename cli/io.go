package cli

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/mobile-next/galleryview/commands"
	"github.com/spf13/cobra"
)

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Synthetic gestures against a viewer",
	Long:  `Replays common gestures like swipes, taps and pinches against a fresh viewer and prints the outcome.`,
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Drag one finger between two points",
	Long:  `Drags a single contact from (x1,y1) to (x2,y2) over --duration milliseconds. Coordinates should be provided as a single string "x1,y1,x2,y2".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args[0], 4)
		if err != nil {
			return printError(err)
		}

		script := gesture().SwipeScript(coords[0], coords[1], coords[2], coords[3], time.Duration(ioSwipeDurationMs)*time.Millisecond, ioMoves)
		return runScript(script)
	},
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap the viewer at the given coordinates",
	Long:  `Taps --count times at x,y, --interval milliseconds apart. Two taps toggle zoom. Coordinates should be provided as a single string "x,y".`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args[0], 2)
		if err != nil {
			return printError(err)
		}

		script := gesture().TapScript(coords[0], coords[1], ioTapCount, time.Duration(ioTapIntervalMs)*time.Millisecond)
		return runScript(script)
	},
}

var ioPinchCmd = &cobra.Command{
	Use:   "pinch [x,y]",
	Short: "Pinch two fingers around a center point",
	Long:  `Places two contacts --from pixels apart around x,y and moves them to --to pixels apart over --duration milliseconds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseCoords(args[0], 2)
		if err != nil {
			return printError(err)
		}
		if ioPinchFrom <= 0 {
			return printError(fmt.Errorf("--from must be positive, got %g", ioPinchFrom))
		}

		script := gesture().PinchScript(coords[0], coords[1], ioPinchFrom, ioPinchTo, time.Duration(ioPinchDurationMs)*time.Millisecond, ioMoves)
		return runScript(script)
	},
}

func gesture() commands.Gesture {
	return commands.Gesture{
		Total:         ioTotal,
		Index:         ioIndex,
		ViewportWidth: ioViewportWidth,
	}
}

// parseCoords parses "a,b,..." into exactly n numbers
func parseCoords(s string, n int) ([]float64, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected %d comma separated values, got '%s'", n, s)
	}

	coords := make([]float64, n)
	for i, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate value '%s'", part)
		}
		coords[i] = v
	}
	return coords, nil
}

func printError(err error) error {
	response := commands.NewErrorResponse(err)
	printJson(response)
	return fmt.Errorf("%s", response.Error)
}

func init() {
	rootCmd.AddCommand(ioCmd)

	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioPinchCmd)

	ioCmd.PersistentFlags().IntVar(&ioTotal, "total", 5, "number of images in the gallery")
	ioCmd.PersistentFlags().IntVar(&ioIndex, "index", 2, "index of the image on screen")
	ioCmd.PersistentFlags().Float64Var(&ioViewportWidth, "viewport-width", 0, "viewport width in pixels")
	ioCmd.PersistentFlags().IntVar(&ioMoves, "moves", 5, "number of move events for swipe and pinch")
	ioCmd.PersistentFlags().BoolVar(&replayTrace, "trace", false, "include the state after every step")

	ioSwipeCmd.Flags().IntVar(&ioSwipeDurationMs, "duration", 150, "gesture duration in milliseconds")

	ioTapCmd.Flags().IntVar(&ioTapCount, "count", 1, "number of taps")
	ioTapCmd.Flags().IntVar(&ioTapIntervalMs, "interval", 150, "milliseconds between taps")

	ioPinchCmd.Flags().IntVar(&ioPinchDurationMs, "duration", 300, "gesture duration in milliseconds")
	ioPinchCmd.Flags().Float64Var(&ioPinchFrom, "from", 100, "initial distance between the fingers")
	ioPinchCmd.Flags().Float64Var(&ioPinchTo, "to", 200, "final distance between the fingers")
}
