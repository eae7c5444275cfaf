// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/logging"
	"rustatl/cli/internal/session"
	"rustatl/cli/internal/tokeninfo"
)

var tokenReveal bool

// tokenCmd prints the stored bearer token and its claims.
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Show the stored bearer token",
	Long: `The token command prints the bearer token of the saved session, masked
unless --reveal is given, followed by its claims when it is a JWT. The claims
are decoded locally and not verified. Like every command, token starts a
background check of the saved session against the backend when it loads it.

With --reveal only the token is printed, so it can be used in scripts:

  curl -H "Authorization: Bearer $(rustatl token --reveal)" ...`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		tok, ok := a.store.Token()
		if !ok {
			printNotLoggedIn()
			return session.ErrUnauthenticated
		}
		if tokenReveal {
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		}

		pterm.Printf("Token:     %s\n", logging.MaskToken(tok))
		info, err := tokeninfo.Inspect(tok)
		if errors.Is(err, tokeninfo.ErrNotJWT) {
			pterm.Println("Type:      opaque")
			return nil
		}
		if err != nil {
			return fmt.Errorf("decode token: %w", err)
		}

		now := time.Now()
		pterm.Printf("Type:      JWT (%s)\n", info.Algorithm)
		if info.PID != "" {
			pterm.Printf("Account:   %s\n", info.PID)
		}
		if info.Subject != "" {
			pterm.Printf("Subject:   %s\n", info.Subject)
		}
		if !info.IssuedAt.IsZero() {
			pterm.Printf("Issued:    %s\n", info.IssuedAt.Local().Format(time.RFC1123))
		}
		if info.HasExpiry() {
			pterm.Printf("Expires:   %s (%s)\n", info.ExpiresAt.Local().Format(time.RFC1123), describeExpiry(info, now))
		} else {
			pterm.Println("Expires:   never")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.Flags().BoolVar(&tokenReveal, "reveal", false, "Print the full token only")
}
