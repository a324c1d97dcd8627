// Package pipeline orchestrates the email analysis workflow.
//
// An analysis is a sequence of steps executed against a shared report:
// parse the message, run the heuristic analyzers, score it with the
// classifier, apply pattern overrides, and persist the result. Steps
// implement a common interface so the CLI and the HTTP server can
// assemble the same workflow with different inputs.
//
// A BatchProcessor runs the pipeline over many input files concurrently
// with a bounded worker count.
package pipeline
