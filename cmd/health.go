// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package cmd

import (
	"context"
	"errors"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"rustatl/cli/internal/logging"
	"rustatl/cli/internal/rpcauth"
)

var (
	healthAddr      string
	healthService   string
	healthPlaintext bool
)

// healthCmd checks the backend's gRPC health service over an authenticated channel.
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check the backend's gRPC health service",
	Long: `The health command connects to the backend's gRPC endpoint (grpc_addr in the
config, or --addr) and queries the standard health service. The session's bearer
token is attached to the call when one is stored.`,

	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd.Context())
		if err != nil {
			return err
		}
		addr := healthAddr
		if addr == "" {
			addr = a.cfg.GRPCAddr
		}
		if addr == "" {
			return errors.New("no gRPC address: set grpc_addr in the config or pass --addr")
		}

		conn, err := rpcauth.Dial(addr, a.store, healthPlaintext)
		if err != nil {
			return err
		}
		defer conn.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), a.cfg.Timeout())
		defer cancel()

		var status healthpb.HealthCheckResponse_ServingStatus
		err = withSpinner("Checking "+addr, func() error {
			var cerr error
			status, cerr = rpcauth.CheckHealth(ctx, conn, healthService)
			return cerr
		})
		if err != nil {
			logging.PresentRPCError(err)
			return err
		}

		a.log.Debug("health check", a.log.Args("addr", addr, "service", healthService, "status", status.String()))
		if status == healthpb.HealthCheckResponse_SERVING {
			pterm.Success.Printf("%s is serving\n", addr)
			return nil
		}
		pterm.Warning.Printf("%s reports %s\n", addr, status)
		return errors.New("backend is not serving")
	},
}

func init() {
	rootCmd.AddCommand(healthCmd)
	healthCmd.Flags().StringVar(&healthAddr, "addr", "", "gRPC address host:port (overrides grpc_addr)")
	healthCmd.Flags().StringVar(&healthService, "service", "", "Service name to check (empty for the whole server)")
	healthCmd.Flags().BoolVar(&healthPlaintext, "plaintext", false, "Connect without TLS")
}
