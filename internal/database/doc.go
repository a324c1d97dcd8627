// Package database provides SQLite-based storage for analysis results.
//
// # Purpose
//
// This package persists three kinds of records:
//   - analysis history: a rolling window of recent verdict summaries
//   - suspicious URLs: every risky link seen across analyses
//   - analysis reports: complete reports as JSON for later review
//
// # Storage Design
//
// All records live in a single SQLite database file. SQLite was chosen
// over flat JSON files because:
//  1. The history cap and URL dedup become single statements
//  2. Concurrent API requests get real transactional safety
//  3. One file is still trivial to back up or delete
//
// The history table is capped: inserting beyond the limit silently
// drops the oldest entries. Suspicious URLs are unique per URL and an
// update never lowers a recorded risk level.
package database
