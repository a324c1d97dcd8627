// Package main provides the entry point for the PhishSniffer CLI.
//
// PhishSniffer analyzes email messages for phishing indicators.
// It combines rule-based heuristics with a trainable classifier and
// keeps a local history of past analyses and flagged URLs.
//
// Usage:
//
//	phishsniffer analyze <email-file>
//	phishsniffer analyze --text "raw email content"
//	phishsniffer serve
//
// See --help for all available options.
package main

// main is the entry point for PhishSniffer.
func main() {
	Execute()
}
