package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"twsampler/pkg/auth"
)

// authCmd groups the credential management subcommands
var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage stored API credentials",
	Long: `Store, list and remove API bearer tokens.

Tokens are kept in the system keychain when one is available, in an
encrypted file when TWSAMPLER_VAULT_PASSPHRASE is set, or read from the
TWSAMPLER_BEARER_TOKEN environment variable as a last resort.`,
}

// authLoginCmd stores a bearer token
var authLoginCmd = &cobra.Command{
	Use:   "login [name]",
	Short: "Store a bearer token",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		name := "default"
		if len(args) == 1 {
			name = args[0]
		}

		fmt.Print("Bearer token: ")
		tokenBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
		fmt.Println()
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		token := strings.TrimSpace(string(tokenBytes))
		if token == "" {
			return fmt.Errorf("token must not be empty")
		}

		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		if err := manager.Store(&auth.Credential{Name: name, BearerToken: token}); err != nil {
			return err
		}

		fmt.Printf("Credential %q stored.\n", name)
		return nil
	},
}

// authListCmd lists stored credentials
var authListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		creds, err := manager.List()
		if err != nil {
			return err
		}
		if len(creds) == 0 {
			fmt.Println("No stored credentials. Use 'twsampler auth login' to store one.")
			return nil
		}

		for _, cred := range creds {
			if cred.LastModified.IsZero() {
				fmt.Println(cred.Name)
			} else {
				fmt.Printf("%s (updated %s)\n", cred.Name, cred.LastModified.Format("2006-01-02 15:04"))
			}
		}
		return nil
	},
}

// authRemoveCmd deletes a stored credential
var authRemoveCmd = &cobra.Command{
	Use:   "remove <name>",
	Short: "Remove a stored credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true

		manager, err := auth.NewManager()
		if err != nil {
			return err
		}
		if err := manager.Delete(args[0]); err != nil {
			return err
		}

		fmt.Printf("Credential %q removed.\n", args[0])
		return nil
	},
}

func init() {
	authCmd.AddCommand(authLoginCmd)
	authCmd.AddCommand(authListCmd)
	authCmd.AddCommand(authRemoveCmd)
	rootCmd.AddCommand(authCmd)
}
