package cli

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/mobile-next/droidinput/utils"
	"github.com/spf13/cobra"
	"github.com/zalando/go-keyring"
)

const keyringService = "droidinput"
const keyringUser = "server"

const generatedTokenBytes = 24

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Server token management",
	Long:  `Commands for storing the bearer token the server requires from clients in the system keyring.`,
}

var authSetTokenCmd = &cobra.Command{
	Use:   "set-token [token]",
	Short: "Store the server token",
	Long:  `Stores the given token in the system keyring. Without an argument a random token is generated and printed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var token string
		if len(args) == 1 {
			token = args[0]
		} else {
			raw := make([]byte, generatedTokenBytes)
			if _, err := rand.Read(raw); err != nil {
				return fmt.Errorf("failed to generate token: %w", err)
			}
			token = hex.EncodeToString(raw)
		}

		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		if err := keyring.Set(keyringService, keyringUser, token); err != nil {
			return fmt.Errorf("failed to store token: %w", err)
		}

		if len(args) == 0 {
			fmt.Println(token)
		}
		return nil
	},
}

var authClearTokenCmd = &cobra.Command{
	Use:   "clear-token",
	Short: "Remove the stored server token",
	Long:  `Removes the token from the system keyring. The server then accepts clients without a token.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := keyring.Delete(keyringService, keyringUser); err != nil {
			fmt.Println("no token is stored")
			return nil
		}

		fmt.Println("Token removed.")
		return nil
	},
}

var authTokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Display the stored server token",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		token, err := keyring.Get(keyringService, keyringUser)
		if err != nil {
			return fmt.Errorf("no token found for droidinput")
		}

		fmt.Println(token)
		return nil
	},
}

// resolveToken prefers the --token flag and falls back to the keyring.
// A missing keyring entry means the server runs without a token.
func resolveToken(cmd *cobra.Command) string {
	if flag := cmd.Flags().Lookup("token"); flag != nil && flag.Changed {
		return flag.Value.String()
	}

	token, err := keyring.Get(keyringService, keyringUser)
	if err != nil {
		// headless machines often have no keyring backend at all
		if !errors.Is(err, keyring.ErrNotFound) {
			utils.Verbose("Keyring unavailable, running without token: %v", err)
		}
		return ""
	}
	return token
}

func init() {
	rootCmd.AddCommand(authCmd)
	authCmd.AddCommand(authSetTokenCmd, authClearTokenCmd, authTokenCmd)
}
