// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

package logging

import (
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
)

// VerboseEnv enables debug logging for every command when set to "1".
const VerboseEnv = "RUSTATL_VERBOSE"

// IsVerbose reports whether verbose mode is enabled through the environment.
func IsVerbose() bool {
	return os.Getenv(VerboseEnv) == "1"
}

// ParseLevel maps a config log level name to a pterm level.
// Unknown names fall back to info.
func ParseLevel(level string) pterm.LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return pterm.LogLevelTrace
	case "debug":
		return pterm.LogLevelDebug
	case "warn", "warning":
		return pterm.LogLevelWarn
	case "error":
		return pterm.LogLevelError
	case "off", "disabled", "none":
		return pterm.LogLevelDisabled
	default:
		return pterm.LogLevelInfo
	}
}

// New builds the structured logger used by the CLI. Logs go to stderr so that
// command output on stdout stays machine-readable. Verbose mode forces debug.
func New(level string, verbose bool) *pterm.Logger {
	lvl := ParseLevel(level)
	if verbose || IsVerbose() {
		lvl = pterm.LogLevelDebug
	}
	return pterm.DefaultLogger.
		WithLevel(lvl).
		WithWriter(os.Stderr)
}

// Discard returns a logger that drops everything. Useful in tests.
func Discard() *pterm.Logger {
	return pterm.DefaultLogger.
		WithLevel(pterm.LogLevelDisabled).
		WithWriter(io.Discard)
}
