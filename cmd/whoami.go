// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/httperrors"
	"rustatl/cli/internal/session"
	"rustatl/cli/internal/tokeninfo"
)

// whoamiCmd confirms the stored session with the backend and shows the account.
var whoamiCmd = &cobra.Command{
	Use:     "whoami",
	Aliases: []string{"me"},
	Short:   "Show the current account",
	Long: `The whoami command restores the saved session and asks the backend who the
token belongs to. If the backend rejects the token the session is removed.
If the backend cannot be reached the saved profile is shown instead.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if !a.store.IsLoggedIn() {
			printNotLoggedIn()
			return nil
		}

		err = withSpinner("Verifying session", a.store.Wait)
		switch {
		case errors.Is(err, session.ErrTokenRejected):
			pterm.Warning.Println("Your session is no longer valid and has been removed.")
			pterm.Println("   Run 'rustatl login' to sign in again.")
			return err
		case err != nil:
			_ = httperrors.FormatNetworkError(err, "verifying your session", httperrors.ExtractHostFromURL(a.cfg.APIURL))
			pterm.Info.Println("Showing the saved profile (offline).")
		}

		printUser(a.store.Snapshot())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
}

func printUser(st session.State) {
	u := st.User
	if u == nil {
		printNotLoggedIn()
		return
	}
	pterm.Printf("👤 Current user: %s\n", u.Name)
	pterm.Printf("   Account: %s\n", u.PID)
	if u.Email != "" {
		pterm.Printf("   Email:   %s\n", u.Email)
	}
	if u.Verified != nil {
		pterm.Printf("   Verified: %t\n", *u.Verified)
	}
	if info, err := tokeninfo.Inspect(st.Token); err == nil && info.HasExpiry() {
		pterm.Printf("   Session: %s\n", describeExpiry(info, time.Now()))
	}
}

func describeExpiry(info *tokeninfo.Info, now time.Time) string {
	if info.Expired(now) {
		return fmt.Sprintf("expired %s ago", now.Sub(info.ExpiresAt).Round(time.Minute))
	}
	return fmt.Sprintf("expires in %s", info.Remaining(now).Round(time.Minute))
}
