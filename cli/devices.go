package cli

import (
	"fmt"

	"github.com/mobile-next/droidinput/commands"
	"github.com/spf13/cobra"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List connected Android devices",
	Long:  `List the Android devices visible to adb. Use a serial from this list with --serial.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		response := commands.DevicesCommand(onlineOnly)
		printJson(response)
		if response.Status == "error" {
			return fmt.Errorf("%s", response.Error)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(devicesCmd)

	devicesCmd.Flags().BoolVar(&onlineOnly, "online", false, "only show devices in the 'device' state")
}
