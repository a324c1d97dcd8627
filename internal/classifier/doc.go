// Package classifier scores email text with a trained phishing model.
//
// # Purpose
//
// This package turns raw message text into a fixed-width feature vector,
// runs it through a stored model, and converts the resulting probability
// into a verdict relative to a configurable threshold.
//
// # Model Storage
//
// Models are JSON weight files in the model directory, named with a
// sortable timestamp. Each model may have a "<name>_metadata.json"
// sidecar describing how it was trained. When no model name is given
// the newest file wins.
//
// # Fallback Behavior
//
// The predictor never fails hard. A missing model directory, absent
// weight files, or an unreadable model all degrade to a built-in
// rule-based fallback, and a scoring error yields a neutral 0.5
// probability. Analysis must keep working on a fresh install.
package classifier
