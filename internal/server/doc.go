// Package server implements the PhishSniffer REST API.
// It exposes email analysis, model management, and URL checking over
// HTTP with JSON request and response bodies.
package server
