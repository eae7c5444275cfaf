// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/session"
	"rustatl/cli/internal/terminal"
)

var (
	loginToken    string
	loginPID      string
	loginName     string
	loginVerified bool
	loginRemember bool
	loginResponse string
)

// loginCmd stores credentials obtained from the backend's login endpoint.
var loginCmd = &cobra.Command{
	Use:     "login",
	Aliases: []string{"auth"},
	Short:   "Store the credentials returned by the backend login",
	Long: `The login command saves a session from credentials issued by the backend's
login endpoint. Pass the JSON response with --response (a file, or - for stdin),
or give the fields separately. When --token is omitted you are prompted for it
without echo.

With --remember the session is kept in the OS keychain and survives restarts.
Otherwise it lives in a per-login-session file and is gone after you sign out
of your machine.`,
	Example: `  curl -s -X POST localhost:5150/api/auth/login -d @creds.json | rustatl login --response - --remember
  rustatl login --pid 3c0... --name Ferris`,

	RunE: func(cmd *cobra.Command, args []string) error {
		creds, err := loginCredentials(cmd)
		if err != nil {
			return err
		}

		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.store.Login(creds, loginRemember); err != nil {
			if errors.Is(err, session.ErrStorageUnavailable) {
				pterm.Warning.Println("Logged in for this command only: no storage backend is available.")
			}
			return fmt.Errorf("save session: %w", err)
		}

		where := "until you sign out of this machine"
		if loginRemember {
			where = "in the OS keychain"
		}
		pterm.Success.Printf("Logged in as %s (%s), saved %s\n", creds.Name, creds.PID, where)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().StringVar(&loginToken, "token", "", "Bearer token (prompted for when omitted)")
	loginCmd.Flags().StringVar(&loginPID, "pid", "", "Account identifier")
	loginCmd.Flags().StringVar(&loginName, "name", "", "Display name")
	loginCmd.Flags().BoolVar(&loginVerified, "verified", false, "Mark the account as email-verified")
	loginCmd.Flags().BoolVar(&loginRemember, "remember", false, "Keep the session across restarts")
	loginCmd.Flags().StringVar(&loginResponse, "response", "", "Login response JSON file, or - for stdin")
}

// loginCredentials assembles credentials from --response, then flags, then
// an interactive prompt for the token. Flags override response fields.
func loginCredentials(cmd *cobra.Command) (session.Credentials, error) {
	var creds session.Credentials
	if loginResponse != "" {
		var err error
		if creds, err = readLoginResponse(cmd.InOrStdin(), loginResponse); err != nil {
			return creds, err
		}
	}

	if loginToken != "" {
		creds.Token = loginToken
	}
	if loginPID != "" {
		creds.PID = loginPID
	}
	if loginName != "" {
		creds.Name = loginName
	}
	if cmd.Flags().Changed("verified") {
		creds.Verified = loginVerified
	}

	if creds.Token == "" {
		const prompt = "Token: "
		tok, err := terminal.ReadSecret(cmd.ErrOrStderr(), prompt)
		if err != nil {
			return creds, fmt.Errorf("read token: %w", err)
		}
		if interactive() {
			terminal.ClearPreviousLines(cmd.ErrOrStderr(), len(prompt))
		}
		creds.Token = tok
	}

	var missing []string
	if creds.PID == "" {
		missing = append(missing, "--pid")
	}
	if creds.Name == "" {
		missing = append(missing, "--name")
	}
	if len(missing) > 0 {
		return creds, fmt.Errorf("missing %s", strings.Join(missing, " and "))
	}
	return creds, nil
}

func readLoginResponse(stdin io.Reader, src string) (session.Credentials, error) {
	var creds session.Credentials
	r := stdin
	if src != "-" {
		f, err := os.Open(src)
		if err != nil {
			return creds, err
		}
		defer f.Close()
		r = f
	}
	if err := json.NewDecoder(r).Decode(&creds); err != nil {
		return creds, fmt.Errorf("parse login response: %w", err)
	}
	return creds, nil
}
