// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package logging provides the CLI's structured logger and utilities for secure
// logging and error presentation.
// It includes functions for masking sensitive information in log messages and
// formatting errors for user-friendly display while protecting credentials.
//
// The package helps ensure that bearer tokens, passwords and API keys are not
// accidentally exposed in logs or error messages shown to users.
package logging

import (
	"regexp"
)

var (
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s;&]+)`)
	reToken    = regexp.MustCompile(`(?i)(token=|bearer\s+)([A-Za-z0-9._~+/=-]+)`)
	reJSONTok  = regexp.MustCompile(`(?i)("(?:auth_)?token"\s*:\s*")([^"]+)(")`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s;&]+)`)
)

// Mask replaces sensitive values in the input string with "*".
func Mask(s string) string {
	out := s
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reToken.ReplaceAllString(out, "$1***")
	out = reJSONTok.ReplaceAllString(out, "$1***$3")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	return out
}

// MaskToken shortens a bearer token for display, keeping only its first
// and last four characters.
func MaskToken(token string) string {
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}
