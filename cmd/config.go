// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"rustatl/cli/internal/config"
)

// configCmd shows the effective configuration.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change CLI settings",
	Long: `Without a subcommand, config prints the path of the config file and the
effective settings after environment and flag overrides. Tokens are never
stored in the config file.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		p, err := config.Path()
		if err != nil {
			return err
		}
		b, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "config file: %s\n", p)
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	},
}

// setters maps config keys to functions applying a string value.
var setters = map[string]func(*config.Config, string) error{
	"log_level": func(c *config.Config, v string) error { c.LogLevel = v; return nil },
	"api_url":   func(c *config.Config, v string) error { c.APIURL = v; return c.Validate() },
	"grpc_addr": func(c *config.Config, v string) error { c.GRPCAddr = v; return nil },
	"timeout_seconds": func(c *config.Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_seconds must be a positive integer, got %q", v)
		}
		c.TimeoutSeconds = n
		return nil
	},
	"endpoints.current": func(c *config.Config, v string) error {
		if !strings.HasPrefix(v, "/") {
			return fmt.Errorf("endpoints.current must be a path starting with /, got %q", v)
		}
		c.Endpoints.Current = v
		return nil
	},
}

func settingKeys() []string {
	keys := make([]string, 0, len(setters))
	for k := range setters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

var configSetCmd = &cobra.Command{
	Use:       "set <key> <value>",
	Short:     "Change a setting in the config file",
	Args:      cobra.ExactArgs(2),
	ValidArgs: settingKeys(),

	RunE: func(cmd *cobra.Command, args []string) error {
		set, ok := setters[args[0]]
		if !ok {
			return fmt.Errorf("unknown key %q (one of %s)", args[0], strings.Join(settingKeys(), ", "))
		}
		// Environment overrides are not written back.
		cfg, err := config.LoadFile()
		if err != nil {
			return err
		}
		if err := set(&cfg, args[1]); err != nil {
			return err
		}
		if err := config.Save(cfg); err != nil {
			return err
		}
		pterm.Success.Printf("%s = %s\n", args[0], args[1])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
	configCmd.AddCommand(configSetCmd)
}
