// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// RPCErrorType represents the category of gRPC error
type RPCErrorType int

const (
	RPCErrorUnknown RPCErrorType = iota
	RPCErrorNetwork
	RPCErrorAuth
	RPCErrorTimeout
	RPCErrorInternal
	RPCErrorUnavailable
)

// ParseRPCError categorizes a gRPC error, preferring its status code and
// falling back to the message text for errors that carry no status.
func ParseRPCError(err error) RPCErrorType {
	if err == nil {
		return RPCErrorUnknown
	}
	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.Unauthenticated, codes.PermissionDenied:
			return RPCErrorAuth
		case codes.DeadlineExceeded:
			return RPCErrorTimeout
		case codes.Internal, codes.DataLoss:
			return RPCErrorInternal
		case codes.Unavailable:
			if strings.Contains(strings.ToLower(st.Message()), "connection reset") {
				return RPCErrorNetwork
			}
			return RPCErrorUnavailable
		}
	}

	lower := strings.ToLower(err.Error())
	switch {
	case strings.Contains(lower, "rst_stream") || strings.Contains(lower, "connection reset"):
		return RPCErrorNetwork
	case strings.Contains(lower, "deadline") || strings.Contains(lower, "timeout"):
		return RPCErrorTimeout
	}
	return RPCErrorUnknown
}

// FormatRPCError formats a gRPC error in a user-friendly way
func FormatRPCError(err error) string {
	errType := ParseRPCError(err)

	var builder strings.Builder

	builder.WriteString(pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("RPC failed"))
	builder.WriteString("\n\n")

	switch errType {
	case RPCErrorNetwork:
		builder.WriteString("The connection was interrupted unexpectedly.\n")
	case RPCErrorInternal:
		builder.WriteString("The service reported an internal error.\n")
	case RPCErrorUnavailable:
		builder.WriteString("The service is currently unavailable.\n")
	case RPCErrorTimeout:
		builder.WriteString("The call timed out.\n")
	case RPCErrorAuth:
		builder.WriteString("The service did not accept your session.\n")
	default:
		builder.WriteString("The call could not be completed.\n")
	}

	builder.WriteString("\n")

	if errType == RPCErrorAuth {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please run 'rustatl login' and try again"))
	} else {
		builder.WriteString(pterm.NewStyle(pterm.FgYellow).Sprint("→ Please try again in a few moments"))
	}
	builder.WriteString("\n")

	if err != nil {
		builder.WriteString("\n")
		builder.WriteString(pterm.NewStyle(pterm.FgGray).Sprint("Technical details: " + Mask(err.Error())))
	}

	return builder.String()
}

// PresentRPCError displays a formatted gRPC error
func PresentRPCError(err error) {
	fmt.Println()
	fmt.Println(FormatRPCError(err))
	fmt.Println()
}
