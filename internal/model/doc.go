// Package model defines the core data structures used throughout PhishSniffer.
//
// This package contains the following main types:
//   - Email: A parsed email message with headers, body, and attachment info
//   - AnalysisReport: The main analysis result structure
//   - Indicator: A single suspicious indicator found during analysis
//   - SimpleReport: A summarized, human-readable report
//
// Design decision: We separate models into their own package to avoid circular
// dependencies. Multiple packages (mail, heuristic, classifier, report) need to
// use these types, so centralizing them prevents import cycles.
//
// The models are designed to be serializable to JSON for report output and
// database storage.
package model
