// Package report provides output formatting for analysis results.
//
// Three formats are supported through a common Writer interface:
//   - simple: human-readable text for terminal display
//   - json: machine-readable output for tool integration
//   - markdown: shareable documents with severity tables
//
// A MultiWriter fans one report out to several destinations, such as
// the terminal and a report file at the same time.
package report
