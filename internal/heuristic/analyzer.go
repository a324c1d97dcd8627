package heuristic

import (
	"context"

	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// Analyzer category constants.
const (
	// CategorySender is used by analyzers that inspect message headers.
	CategorySender = "sender"
	// CategoryURL is used by analyzers that inspect extracted links.
	CategoryURL = "url"
	// CategoryContent is used by analyzers that inspect subject and body text.
	CategoryContent = "content"
	// CategoryPattern is used by analyzers that match user-defined patterns.
	CategoryPattern = "pattern"
)

// Analyzer coordinates phishing checks across multiple analyzers.
// It aggregates indicators from different analysis types into a unified report.
//
// Design decision: We use a coordinator pattern rather than running analyzers
// independently because:
//  1. Unified severity assessment across all indicators
//  2. Deduplication of similar indicators
//  3. Consistent context and cancellation handling
//  4. URL extraction happens once and is shared by downstream analyzers
type Analyzer struct {
	// analyzers is the list of registered analyzers to run.
	analyzers []CheckAnalyzer

	// options configures analyzer behavior.
	options AnalyzerOptions
}

// AnalyzerOptions configures the analyzer behavior.
type AnalyzerOptions struct {
	// EnableURLChecks enables URL extraction and link analysis.
	EnableURLChecks bool

	// EnableContentChecks enables subject/body language analysis.
	EnableContentChecks bool

	// CustomBrands are additional brand names to flag when they appear
	// in a display name without a matching sender domain.
	CustomBrands []string
}

// DefaultOptions returns sensible default analyzer options.
func DefaultOptions() AnalyzerOptions {
	return AnalyzerOptions{
		EnableURLChecks:     true,
		EnableContentChecks: true,
	}
}

// CheckAnalyzer defines the interface for individual analyzers.
// Each analyzer focuses on a specific class of phishing trait.
//
// Design decision: We use an interface rather than concrete types because:
//  1. Allows for easy extension with new analyzers
//  2. Enables testing with mock analyzers
//  3. Supports different analyzer implementations for the same check type
type CheckAnalyzer interface {
	// Name returns the analyzer's name for logging and reporting.
	Name() string

	// Category returns the analyzer's category (e.g., "sender", "url").
	Category() string

	// Analyze runs the analysis on the provided data.
	// It returns indicators discovered during analysis.
	Analyze(ctx context.Context, data *AnalysisData) ([]model.Indicator, error)
}

// AnalysisData contains all data available for analysis.
//
// Design decision: We pass all data in a single struct rather than
// multiple parameters because:
//  1. Not all analyzers need all data types
//  2. Adding new data types doesn't change analyzer signatures
//  3. Easier to mock in tests
type AnalysisData struct {
	// Email is the parsed message being analyzed.
	Email *model.Email

	// URLs are the links extracted from the message. The coordinator
	// fills this before running registered analyzers so every analyzer
	// sees the same set.
	URLs []string

	// Patterns holds user-defined special patterns and trusted domains.
	// May be nil when no configuration file was loaded.
	Patterns *config.File

	// Report is the current analysis report (for recording URLs).
	Report *model.AnalysisReport
}

// NewAnalyzer creates a new Analyzer with all built-in analyzers registered.
func NewAnalyzer(opts ...func(*AnalyzerOptions)) *Analyzer {
	options := DefaultOptions()
	for _, opt := range opts {
		opt(&options)
	}

	a := &Analyzer{
		options:   options,
		analyzers: make([]CheckAnalyzer, 0),
	}

	// Register built-in analyzers
	a.Register(NewSenderAnalyzer(options.CustomBrands...))
	if options.EnableURLChecks {
		a.Register(NewURLAnalyzer())
	}
	if options.EnableContentChecks {
		a.Register(NewContentAnalyzer())
	}
	a.Register(NewPatternAnalyzer())

	return a
}

// Register adds an analyzer to the list.
func (a *Analyzer) Register(analyzer CheckAnalyzer) {
	a.analyzers = append(a.analyzers, analyzer)
}

// Analyze runs all registered analyzers and aggregates indicators.
func (a *Analyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Indicator, error) {
	if data.Email != nil && len(data.URLs) == 0 {
		data.URLs = ExtractURLs(data.Email.Subject + " " + data.Email.Body)
	}

	var allIndicators []model.Indicator

	for _, analyzer := range a.analyzers {
		select {
		case <-ctx.Done():
			return allIndicators, ctx.Err()
		default:
		}

		indicators, err := analyzer.Analyze(ctx, data)
		if err != nil {
			// Log error but continue with other analyzers
			// We want to collect as many indicators as possible
			continue
		}

		allIndicators = append(allIndicators, indicators...)
	}

	// Deduplicate indicators
	allIndicators = deduplicateIndicators(allIndicators)

	return allIndicators, nil
}

// deduplicateIndicators removes duplicate indicators based on type and value.
//
// Design decision: We deduplicate by type+value rather than just value because:
//  1. Same value might have different meanings in different contexts
//  2. Multiple analyzers might find the same thing
//  3. We want to keep the most severe instance of each indicator
func deduplicateIndicators(indicators []model.Indicator) []model.Indicator {
	seen := make(map[string]int) // key -> index in result
	result := make([]model.Indicator, 0)

	for _, ind := range indicators {
		key := ind.Type + "|" + ind.Value
		if idx, exists := seen[key]; exists {
			// Keep the more severe indicator
			if ind.Severity > result[idx].Severity {
				result[idx] = ind
			}
		} else {
			seen[key] = len(result)
			result = append(result, ind)
		}
	}

	return result
}
