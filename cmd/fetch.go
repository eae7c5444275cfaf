// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/httperrors"
	"rustatl/cli/internal/logging"
	"rustatl/cli/internal/session"
)

var (
	fetchMethod  string
	fetchHeaders []string
	fetchData    string
	fetchFail    bool
	fetchInclude bool
)

// fetchCmd sends an authenticated request to the backend.
var fetchCmd = &cobra.Command{
	Use:   "fetch <path-or-url>",
	Short: "Send an authenticated request to the backend",
	Long: `The fetch command sends a request carrying the session's bearer token and
prints the response body to stdout. Relative paths are resolved against the API
URL. Without a session the request is not sent.

Use -d @file to send a file, or -d @- to read the body from stdin.`,
	Example: `  rustatl fetch /api/auth/current
  rustatl fetch -X POST -H 'Content-Type: application/json' -d '{"title":"meetup"}' /api/notes`,
	Args: cobra.ExactArgs(1),

	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := newApp(ctx)
		if err != nil {
			return err
		}
		if err := a.store.Wait(); err != nil && !errors.Is(err, session.ErrTokenRejected) {
			a.log.Debug("session verification failed", a.log.Args("error", logging.Mask(err.Error())))
		}

		body, err := requestBody(cmd.InOrStdin(), fetchData)
		if err != nil {
			return err
		}
		method := strings.ToUpper(fetchMethod)
		if method == "" {
			method = http.MethodGet
			if body != nil {
				method = http.MethodPost
			}
		}

		req, err := a.api.NewRequest(ctx, method, args[0], body)
		if err != nil {
			return err
		}
		for _, h := range fetchHeaders {
			k, v, ok := strings.Cut(h, ":")
			if !ok {
				return fmt.Errorf("invalid header %q, want 'Name: value'", h)
			}
			req.Header.Add(strings.TrimSpace(k), strings.TrimSpace(v))
		}

		resp, err := a.store.FetchWithAuth(req)
		if errors.Is(err, session.ErrUnauthenticated) {
			printNotLoggedIn()
			return err
		}
		if err != nil {
			return httperrors.FormatNetworkError(err, "sending the request", httperrors.ExtractHostFromURL(req.URL.String()))
		}
		defer resp.Body.Close()

		if fetchInclude {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s %s\n", resp.Proto, resp.Status)
			for k, vs := range resp.Header {
				for _, v := range vs {
					fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s\n", k, v)
				}
			}
			fmt.Fprintln(cmd.ErrOrStderr())
		}
		if _, err := io.Copy(cmd.OutOrStdout(), resp.Body); err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode >= 400 {
			if resp.StatusCode == http.StatusUnauthorized {
				pterm.Warning.Println("The backend rejected the token. Run 'rustatl whoami' to check your session.")
			}
			if fetchFail {
				return fmt.Errorf("request failed: %s", resp.Status)
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().StringVarP(&fetchMethod, "request", "X", "", "HTTP method (default GET, or POST with -d)")
	fetchCmd.Flags().StringArrayVarP(&fetchHeaders, "header", "H", nil, "Extra header 'Name: value' (repeatable)")
	fetchCmd.Flags().StringVarP(&fetchData, "data", "d", "", "Request body, @file or @- for stdin")
	fetchCmd.Flags().BoolVarP(&fetchFail, "fail", "f", false, "Exit non-zero on HTTP status 400 and above")
	fetchCmd.Flags().BoolVarP(&fetchInclude, "include", "i", false, "Print status line and headers to stderr")
}

func requestBody(stdin io.Reader, data string) (io.Reader, error) {
	switch {
	case data == "":
		return nil, nil
	case data == "@-":
		return stdin, nil
	case strings.HasPrefix(data, "@"):
		b, err := os.ReadFile(data[1:])
		if err != nil {
			return nil, err
		}
		return bytes.NewReader(b), nil
	default:
		return strings.NewReader(data), nil
	}
}
