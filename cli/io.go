package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/commands"
	"github.com/mobile-next/droidinput/keys"
	"github.com/spf13/cobra"
)

var ioCmd = &cobra.Command{
	Use:   "io",
	Short: "Send single input events to the device",
	Long:  `Drives the same gesture and key pipeline the server uses, one command at a time.`,
}

// parseInts splits "a,b,..." into exactly n integers.
func parseInts(s string, n int, format string) ([]int, error) {
	parts := strings.Split(s, ",")
	if len(parts) != n {
		return nil, fmt.Errorf("invalid coordinate format. Expected '%s', got '%s'", format, s)
	}

	values := make([]int, n)
	for i, part := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid coordinate values. %s must be integers, got '%s'", format, s)
		}
		values[i] = v
	}
	return values, nil
}

// runOnBridge builds a bridge from the loaded config, runs fn and prints its response.
func runOnBridge(cmd *cobra.Command, fn func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		response := commands.NewErrorResponse(err)
		printJson(response)
		return err
	}

	toggles := &commands.ToggleCounter{}
	b, err := commands.NewBridge(cfg, bridge.WithToggleHandler(toggles.Flip))
	if err != nil {
		response := commands.NewErrorResponse(err)
		printJson(response)
		return err
	}
	defer b.Detach()

	response := commands.AddToggleReport(fn(cmd.Context(), b), toggles.Count())
	printJson(response)
	if response.Status == "error" {
		return fmt.Errorf("%s", response.Error)
	}
	return nil
}

func printParseError(err error) error {
	response := commands.NewErrorResponse(err)
	printJson(response)
	return fmt.Errorf("%s", response.Error)
}

var ioTapCmd = &cobra.Command{
	Use:   "tap [x,y]",
	Short: "Tap on the device screen at the given coordinates",
	Long:  `Sends a press and release of the primary button at x,y. Coordinates are in client space and pass through the scaling factor.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseInts(args[0], 2, "x,y")
		if err != nil {
			return printParseError(err)
		}

		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			return commands.TapCommand(ctx, b, commands.TapRequest{X: coords[0], Y: coords[1]})
		})
	},
}

var ioLongPressCmd = &cobra.Command{
	Use:   "longpress [x,y]",
	Short: "Long press on the device screen at the given coordinates",
	Long:  `Sends a long-press button event at x,y, which holds the finger down for two seconds.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseInts(args[0], 2, "x,y")
		if err != nil {
			return printParseError(err)
		}

		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			return commands.LongPressCommand(ctx, b, commands.LongPressRequest{X: coords[0], Y: coords[1]})
		})
	},
}

var ioSwipeCmd = &cobra.Command{
	Use:   "swipe [x1,y1,x2,y2]",
	Short: "Swipe on the device screen from one point to another",
	Long:  `Drags the primary button from x1,y1 to x2,y2 through a few intermediate moves.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		coords, err := parseInts(args[0], 4, "x1,y1,x2,y2")
		if err != nil {
			return printParseError(err)
		}

		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			return commands.SwipeCommand(ctx, b, commands.SwipeRequest{X1: coords[0], Y1: coords[1], X2: coords[2], Y2: coords[3]})
		})
	},
}

var ioKeyCmd = &cobra.Command{
	Use:   "key [key...]",
	Short: "Press a key or key chord",
	Long:  `Presses the given keys together and releases them, e.g. "home", "esc" or "ctrl shift esc". Keys are names or numeric keysyms like 0xffe3.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keysyms := make([]uint32, 0, len(args))
		for _, arg := range args {
			keysym, err := keys.ParseKeysym(arg)
			if err != nil {
				return printParseError(err)
			}
			keysyms = append(keysyms, keysym)
		}

		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			return commands.KeyPressCommand(ctx, b, keysyms)
		})
	},
}

var ioTextCmd = &cobra.Command{
	Use:   "text [text]",
	Short: "Copy text to the device clipboard",
	Long:  `Places the text on the device clipboard, the same way a client cut-text event does.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			return commands.CutTextCommand(ctx, b, commands.CutTextRequest{Text: args[0]})
		})
	},
}

var ioPointerCmd = &cobra.Command{
	Use:   "pointer [mask,x,y...]",
	Short: "Replay raw pointer events",
	Long:  `Feeds raw pointer events to the bridge in order. Each argument is "mask,x,y" where mask is the RFB button mask.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		events := make([]commands.PointerRequest, 0, len(args))
		for _, arg := range args {
			values, err := parseInts(arg, 3, "mask,x,y")
			if err != nil {
				return printParseError(err)
			}
			if values[0] < 0 || values[0] > 0xff {
				return printParseError(fmt.Errorf("button mask must be between 0 and 255, got %d", values[0]))
			}
			events = append(events, commands.PointerRequest{ButtonMask: uint8(values[0]), X: values[1], Y: values[2]})
		}

		return runOnBridge(cmd, func(ctx context.Context, b *bridge.Bridge) *commands.CommandResponse {
			for _, ev := range events {
				if response := commands.PointerCommand(ctx, b, ev); response.Status == "error" {
					return response
				}
			}
			return commands.NewSuccessResponse(map[string]interface{}{
				"message": fmt.Sprintf("Sent %d pointer event(s)", len(events)),
			})
		})
	},
}

func init() {
	rootCmd.AddCommand(ioCmd)

	// add io subcommands
	ioCmd.AddCommand(ioTapCmd)
	ioCmd.AddCommand(ioLongPressCmd)
	ioCmd.AddCommand(ioSwipeCmd)
	ioCmd.AddCommand(ioKeyCmd)
	ioCmd.AddCommand(ioTextCmd)
	ioCmd.AddCommand(ioPointerCmd)
}
