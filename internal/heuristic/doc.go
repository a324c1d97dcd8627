// Package heuristic provides rule-based phishing checks for parsed emails.
//
// # Purpose
//
// This package inspects a parsed message (sender headers, extracted URLs,
// subject and body text) and produces suspicious indicators that feed the
// report and complement the classifier's probability.
//
// # Design Philosophy
//
// The package follows a modular analyzer pattern where each class of check
// is implemented as a separate Analyzer. This design was chosen because:
//  1. Each check type has unique logic and data requirements
//  2. Enables selective analysis based on configuration
//  3. Makes it easy to add new checks without modifying existing code
//  4. Simplifies testing of individual analysis components
//
// # Analyzer Categories
//
// ## Sender
//   - From/Reply-To/Return-Path domain mismatches
//   - Display-name spoofing of known brands
//   - Free-provider, suspicious-TLD, and throwaway-address traits
//
// ## URL
//   - URL extraction from subject and body
//   - Shortened and IP-based URLs
//   - Suspicious top-level domains
//   - Links whose visible text differs from their destination
//
// ## Content
//   - Urgency language in subject and body
//   - Requests for credentials or payment data
//   - Prize/lottery claims, threats, and grammar tells
//
// # Usage
//
//	analyzer := heuristic.NewAnalyzer()
//	indicators, err := analyzer.Analyze(ctx, data)
//
// Each indicator carries a severity from the central mapping in the model
// package; critical indicators (domain mismatch, IP URLs) are near-certain
// phishing markers while info indicators only add context.
package heuristic
