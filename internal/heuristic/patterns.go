package heuristic

import (
	"context"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// PatternAnalyzer matches user-defined special patterns against the
// message. A matching pattern is treated as a confirmed campaign
// signature: it forces a phishing verdict regardless of what the
// classifier says.
//
// Design decision: Pattern matches set a flag on the report rather
// than adjusting the probability here because:
//  1. The verdict override belongs to the classification step
//  2. Keeping analyzers side-effect free on probabilities makes
//     them independently testable
type PatternAnalyzer struct{}

// NewPatternAnalyzer creates a new PatternAnalyzer.
func NewPatternAnalyzer() *PatternAnalyzer {
	return &PatternAnalyzer{}
}

// Name returns the analyzer name.
func (a *PatternAnalyzer) Name() string {
	return "pattern"
}

// Category returns the analyzer category.
func (a *PatternAnalyzer) Category() string {
	return CategoryPattern
}

// Analyze checks the message against configured special patterns.
func (a *PatternAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Indicator, error) {
	indicators := make([]model.Indicator, 0)
	if data.Email == nil || data.Patterns == nil {
		return indicators, nil
	}

	email := data.Email
	pattern := data.Patterns.MatchPattern(email.Subject, email.From, email.Body, data.URLs)
	if pattern == nil {
		return indicators, nil
	}

	indicators = append(indicators, model.Indicator{
		Type:     "special_pattern_match",
		Value:    pattern.Name,
		Location: "message",
	})

	if data.Report != nil {
		data.Report.PatternOverride = true
	}

	return indicators, nil
}
