package cli

import (
	"context"
	"fmt"

	"github.com/mobile-next/droidinput/bridge"
	"github.com/mobile-next/droidinput/commands"
	"github.com/mobile-next/droidinput/daemon"
	"github.com/mobile-next/droidinput/server"
	"github.com/mobile-next/droidinput/utils"
	"github.com/spf13/cobra"
)

var serverCmd = &cobra.Command{
	Use:   "server",
	Short: "Server management commands",
	Long:  `Commands for managing the droidinput JSON-RPC server.`,
}

var serverStartCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the droidinput server",
	Long:  `Starts a JSON-RPC server that feeds pointer, key and clipboard events into the device.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// GetBool/GetString cannot fail for defined flags
		listenAddr, _ := cmd.Flags().GetString("listen")
		if listenAddr == "" {
			listenAddr = cfg.Listen
		}
		if cmd.Flags().Changed("cors") {
			cfg.CORS, _ = cmd.Flags().GetBool("cors")
		}
		isDaemon, _ := cmd.Flags().GetBool("daemon")
		logFile, _ := cmd.Flags().GetString("log-file")

		token := resolveToken(cmd)

		addr, err := server.NormalizeAddr(listenAddr)
		if err != nil {
			return err
		}

		if isDaemon && !daemon.IsChild() {
			if err := utils.CheckListenAddr(addr); err != nil {
				return err
			}

			if _, err := daemon.Daemonize(logFile); err != nil {
				return fmt.Errorf("failed to start daemon: %w", err)
			}

			fmt.Printf("Server daemon spawned, attempting to listen on %s\n", listenAddr)
			return nil
		}

		toggle := &server.Toggle{}
		b, err := commands.NewBridge(cfg, bridge.WithToggleHandler(toggle.Flip))
		if err != nil {
			return err
		}
		shutdownHook.Register("detach bridge", func(ctx context.Context) error {
			b.Detach()
			return nil
		})

		srv := server.New(b, server.Options{
			EnableCORS: cfg.CORS,
			Token:      token,
			Toggle:     toggle,
		})
		shutdownHook.Register("stop server", func(ctx context.Context) error {
			srv.Shutdown()
			return nil
		})

		return srv.ListenAndServe(addr)
	},
}

var serverKillCmd = &cobra.Command{
	Use:   "kill",
	Short: "Stop the daemonized droidinput server",
	Long:  `Connects to the server and sends a shutdown command via JSON-RPC.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		// GetString cannot fail for defined flags
		addr, _ := cmd.Flags().GetString("listen")
		if addr == "" {
			addr = cfg.Listen
		}

		token := resolveToken(cmd)

		if err := daemon.KillServer(addr, token); err != nil {
			return err
		}

		fmt.Printf("Server shutdown command sent successfully\n")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(serverCmd)

	// add server subcommands
	serverCmd.AddCommand(serverStartCmd)
	serverCmd.AddCommand(serverKillCmd)

	// server start flags
	serverStartCmd.Flags().String("listen", "", "Address to listen on (e.g., 'localhost:12000' or '0.0.0.0:13000')")
	serverStartCmd.Flags().Bool("cors", false, "Enable CORS support")
	serverStartCmd.Flags().BoolP("daemon", "d", false, "Run server in daemon mode (background)")
	serverStartCmd.Flags().String("log-file", "", "Where the daemon writes its log (default: discarded)")
	serverStartCmd.Flags().String("token", "", "Bearer token clients must present (default: the stored token, if any)")

	// server kill flags
	serverKillCmd.Flags().String("listen", "", "Address of server to kill (default: listen address from config)")
	serverKillCmd.Flags().String("token", "", "Bearer token of the server (default: the stored token, if any)")
}
