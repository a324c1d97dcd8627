// Package log provides logging helpers for PhishSniffer.
//
// Analyzed emails routinely contain exactly the data an attacker is
// phishing for: credentials, card numbers, session tokens. The SecureHandler
// wraps a standard slog.Handler and sanitizes attribute values that look
// like secrets before they reach any log sink, so that analyzing a phishing
// email never leaks its lure content into local logs.
package log
