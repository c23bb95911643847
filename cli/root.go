package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/mobile-next/droidinput/config"
	"github.com/mobile-next/droidinput/daemon"
	"github.com/mobile-next/droidinput/utils"
	"github.com/spf13/cobra"
)

const version = "dev"

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "droidinput",
	Short: "Inject remote pointer and key input into an Android device",
	Long:  `Translates remote-desktop style pointer, key and clipboard events into Android input commands.`,
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
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", fmt.Sprintf("config file (default %s)", config.DefaultPath()))
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "how commands reach the device (su or adb)")
	rootCmd.PersistentFlags().StringVarP(&serial, "serial", "s", "", "adb serial of the target device (adb mode)")
	rootCmd.PersistentFlags().Float64Var(&scale, "scale", 0, "scaling factor applied to client coordinates")
}

// shutdownHook collects what the running command must release on a signal
var shutdownHook = daemon.NewShutdownHook()

// Execute runs the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// Shutdown releases resources registered by the running command.
func Shutdown(ctx context.Context) error {
	return shutdownHook.Run(ctx)
}

// loadConfig reads the config file and applies command line overrides on top.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	var err error

	path := configPath
	if path == "" {
		path = config.DefaultPath()
		cfg, err = config.LoadOptional(path)
	} else {
		// an explicit --config must exist
		cfg, err = config.Load(path)
	}
	if err != nil {
		return cfg, err
	}

	flags := cmd.Flags()
	if flags.Changed("mode") {
		cfg.Mode = mode
	}
	if flags.Changed("serial") {
		cfg.Serial = serial
		// a serial only makes sense when going through adb
		if !flags.Changed("mode") {
			cfg.Mode = config.ModeAdb
		}
	}
	if flags.Changed("scale") {
		cfg.Scale = scale
	}

	utils.Verbose("Loaded config from %s: mode=%s serial=%q scale=%g", path, cfg.Mode, cfg.Serial, cfg.Scale)
	return cfg, cfg.Validate()
}

// printJson is a helper function to print JSON responses
func printJson(data interface{}) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(string(jsonData))
}
