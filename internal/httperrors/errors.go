// Copyright (c) 2025 Tripmart
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for HTTP requests.
package httperrors

import (
	"errors"
	"net"
	"net/url"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// Cause is the detected reason a request could not complete.
type Cause int

const (
	CauseGeneric Cause = iota
	CauseTimeout
	CauseDNS
	CauseConnectionRefused
	CauseTLS
)

// Classify detects common transport failure types.
func Classify(err error) Cause {
	switch {
	case err == nil:
		return CauseGeneric
	case isTimeoutError(err):
		return CauseTimeout
	case isDNSError(err):
		return CauseDNS
	case isConnectionRefusedError(err):
		return CauseConnectionRefused
	case isSSLError(err):
		return CauseTLS
	default:
		return CauseGeneric
	}
}

// Summary returns a one-line, user-facing description of a transport failure.
// It always asks the user to check their connection and never includes
// server-authored text.
func Summary(err error) string {
	switch Classify(err) {
	case CauseTimeout:
		return "The server took too long to respond. Check your connection and try again."
	case CauseDNS:
		return "Cannot resolve the server address. Check your connection and DNS settings."
	case CauseConnectionRefused:
		return "The server is not accepting connections. Check your connection or the API URL."
	case CauseTLS:
		return "A secure connection could not be established. Check your connection, proxy and system clock."
	default:
		return "Cannot reach the Tripmart service. Check your connection and try again."
	}
}

// Explain prints a detailed troubleshooting block for a transport failure.
// context describes what was being done, e.g. "loading products".
func Explain(err error, context string) {
	if err == nil {
		return
	}
	switch Classify(err) {
	case CauseTimeout:
		showTimeoutError(context)
	case CauseDNS:
		showDNSError(context)
	case CauseConnectionRefused:
		showConnectionRefusedError(context)
	case CauseTLS:
		showSSLError(context)
	default:
		showGenericError(context, err.Error())
	}
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}

	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "timeout") ||
		strings.Contains(errStr, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	if errors.Is(err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isSSLError checks if the error is an SSL/TLS error.
func isSSLError(err error) bool {
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "tls") ||
		strings.Contains(errStr, "x509") ||
		strings.Contains(errStr, "certificate") ||
		strings.Contains(errStr, "handshake")
}

func showTimeoutError(context string) {
	pterm.Printf("⏱️  Connection timeout while %s\n", context)
	pterm.Println()
	pterm.Println("The server took too long to respond. This could mean:")
	pterm.Println("  • Slow internet connection")
	pterm.Println("  • Server is under heavy load")
	pterm.Println("  • Network firewall is blocking the connection")
	pterm.Println()
}

func showDNSError(context string) {
	pterm.Printf("🌐 Cannot resolve server address while %s\n", context)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • Your internet connection is working")
	pterm.Println("  • The API URL is spelled correctly (tripmart connect)")
	pterm.Println("  • DNS settings are correct")
	pterm.Println()
}

func showConnectionRefusedError(context string) {
	pterm.Printf("🚫 Connection refused while %s\n", context)
	pterm.Println()
	pterm.Println("The server is not accepting connections. This could mean:")
	pterm.Println("  • The API server is not running")
	pterm.Println("  • Wrong server address or port")
	pterm.Println("  • Firewall is blocking the connection")
	pterm.Println()
}

func showSSLError(context string) {
	pterm.Printf("🔒 Secure connection failed while %s\n", context)
	pterm.Println()
	pterm.Println("Cannot establish a secure HTTPS connection. This could mean:")
	pterm.Println("  • SSL/TLS certificate issue")
	pterm.Println("  • Network proxy interfering with HTTPS")
	pterm.Println("  • System clock is incorrect")
	pterm.Println()
}

func showGenericError(context string, errDetails string) {
	pterm.Printf("❌ Cannot connect to the Tripmart service while %s\n", context)
	pterm.Println()
	pterm.Println("Please check:")
	pterm.Println("  • Your internet connection")
	pterm.Println("  • The configured API URL (tripmart connect)")
	pterm.Println()

	if errDetails != "" {
		shortErr := errDetails
		if len(shortErr) > 100 {
			shortErr = shortErr[:100] + "..."
		}
		pterm.Debug.Printf("Technical details: %s\n", shortErr)
		pterm.Println()
	}
}

// ExtractHostFromURL extracts the hostname from a URL for error messages.
func ExtractHostFromURL(urlStr string) string {
	u, err := url.Parse(urlStr)
	if err != nil || u.Host == "" {
		return "server"
	}
	return u.Host
}
