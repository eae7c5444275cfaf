// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"fmt"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
)

// logoutCmd clears the session from both storage backends.
var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Remove the saved session",
	Long: `The logout command forgets the current session. The token, account id and
name are removed from the OS keychain and from the per-login-session file,
whichever of them holds it. No logout request is sent to the backend; the
session check started when the session is loaded may still reach it.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.store.Logout(); err != nil {
			return fmt.Errorf("clear stored session: %w", err)
		}
		pterm.Success.Println("All saved credentials have been removed")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(logoutCmd)
}
