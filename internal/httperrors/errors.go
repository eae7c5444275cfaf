// Copyright (c) 2025 Rust Atlanta
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors turns transport failures into messages a user can act on.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Class is the kind of network failure.
type Class int

const (
	Generic Class = iota
	Timeout
	DNS
	ConnectionRefused
	TLS
)

func (c Class) String() string {
	switch c {
	case Timeout:
		return "timeout"
	case DNS:
		return "dns"
	case ConnectionRefused:
		return "connection_refused"
	case TLS:
		return "tls"
	default:
		return "generic"
	}
}

// Classify inspects a transport error. Checks run from most to least specific.
// HTTP status answers are not transport errors and classify as Generic.
func Classify(err error) Class {
	switch {
	case isTimeoutError(err):
		return Timeout
	case isDNSError(err):
		return DNS
	case isConnectionRefusedError(err):
		return ConnectionRefused
	case isSSLError(err):
		return TLS
	default:
		return Generic
	}
}

// FormatNetworkError prints a troubleshooting message for err and returns it
// wrapped. action describes what was being done ("verifying your session"),
// host is the server that was contacted.
func FormatNetworkError(err error, action, host string) error {
	if err == nil {
		return nil
	}
	display(err, action, host)
	return fmt.Errorf("network error: %w", err)
}

func display(err error, action, host string) {
	switch Classify(err) {
	case Timeout:
		showTimeoutError(action)
	case DNS:
		showDNSError(action, host)
	case ConnectionRefused:
		showConnectionRefusedError(action, host)
	case TLS:
		showSSLError(action)
	default:
		showGenericError(action, host, err.Error())
	}
}

func isTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

func isConnectionRefusedError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

func isSSLError(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func showTimeoutError(action string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", action)
	pterm.Println()
	pterm.Println("The server took too long to respond. This could mean:")
	pterm.Println("  • Slow network connection")
	pterm.Println("  • Server is under heavy load")
	pterm.Println()
	pterm.Println("Raise timeout_seconds in the config or try again in a few moments.")
	pterm.Println()
}

func showDNSError(action, host string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", action)
	pterm.Println()
	pterm.Printf("Unable to look up %s. Please check:\n", host)
	pterm.Println("  • Your network connection is working")
	pterm.Println("  • The API URL is spelled correctly (--api-url or RUSTATL_API_URL)")
	pterm.Println()
}

func showConnectionRefusedError(action, host string) {
	pterm.Printf("🚫 Connection refused while %s\n", action)
	pterm.Println()
	pterm.Printf("Nothing is accepting connections at %s. This could mean:\n", host)
	pterm.Println("  • The backend is not running")
	pterm.Println("  • Wrong server address or port")
	pterm.Println()
}

func showSSLError(action string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", action)
	pterm.Println()
	pterm.Println("Cannot establish a secure connection. This could mean:")
	pterm.Println("  • Certificate issue on the server")
	pterm.Println("  • Network proxy interfering with HTTPS")
	pterm.Println("  • System clock is incorrect")
	pterm.Println()
}

func showGenericError(action, host, details string) {
	pterm.Printf("❌ Cannot reach %s while %s\n", host, action)
	pterm.Println()
	pterm.Println("Your local session was kept; run the command again once the server is reachable.")
	pterm.Println()

	if details != "" {
		if len(details) > 100 {
			details = details[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", details)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the host from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
