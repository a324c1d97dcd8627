package model

import "time"

// SimpleReport is a summarized, human-readable report.
// It extracts key findings from the full analysis report for quick review.
//
// Design decision: We create a separate simplified report rather than
// just printing parts of AnalysisReport because:
// 1. It provides a consistent, curated view of the most important findings
// 2. It can be serialized to JSON for tools that want structured but simple output
// 3. It separates presentation concerns from data collection
type SimpleReport struct {
	// Source identifies the analyzed input.
	Source string `json:"source"`

	// DateAnalyzed is when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// === Verdict ===

	// IsPhishing is the final verdict.
	IsPhishing bool `json:"is_phishing"`

	// Probability is the phishing-class probability.
	Probability float64 `json:"probability"`

	// ConfidenceLevel is "High", "Medium", or "Low".
	ConfidenceLevel string `json:"confidence_level"`

	// PatternOverride is true when the verdict was forced by a known
	// phishing pattern.
	PatternOverride bool `json:"pattern_override"`

	// === Message Summary ===

	// From is the sender header of the analyzed message.
	From string `json:"from,omitempty"`

	// Subject is the subject of the analyzed message.
	Subject string `json:"subject,omitempty"`

	// === Severity Summary ===

	// CriticalCount is the number of critical indicators.
	CriticalCount int `json:"critical_count"`

	// HighCount is the number of high severity indicators.
	HighCount int `json:"high_count"`

	// MediumCount is the number of medium severity indicators.
	MediumCount int `json:"medium_count"`

	// LowCount is the number of low severity indicators.
	LowCount int `json:"low_count"`

	// InfoCount is the number of informational indicators.
	InfoCount int `json:"info_count"`

	// === Findings ===

	// Indicators contains all suspicious indicators.
	Indicators []Indicator `json:"indicators,omitempty"`

	// URLCount is the number of URLs extracted from the message.
	URLCount int `json:"url_count"`

	// SuspiciousURLCount is the number of extracted URLs rated above Low risk.
	SuspiciousURLCount int `json:"suspicious_url_count"`

	// Error contains any error message if the analysis failed.
	Error string `json:"error,omitempty"`
}

// NewSimpleReport creates a new SimpleReport from an AnalysisReport.
// This extracts and summarizes key findings.
func NewSimpleReport(report *AnalysisReport) *SimpleReport {
	simple := &SimpleReport{
		Source:          report.Source,
		DateAnalyzed:    report.DateAnalyzed,
		IsPhishing:      report.IsPhishing,
		Probability:     report.Probability,
		ConfidenceLevel: report.ConfidenceLevel,
		PatternOverride: report.PatternOverride,
		Indicators:      report.Indicators,
		URLCount:        len(report.ExtractedURLs),
	}

	if report.Error != nil {
		simple.Error = report.Error.Error()
	}

	if report.Email != nil {
		simple.From = report.Email.From
		simple.Subject = report.Email.Subject
	}

	for _, u := range report.ExtractedURLs {
		if u.RiskLevel == RiskHigh || u.RiskLevel == RiskMedium {
			simple.SuspiciousURLCount++
		}
	}

	simple.countBySeverity()

	return simple
}

// countBySeverity tallies indicators by severity level.
func (s *SimpleReport) countBySeverity() {
	for _, ind := range s.Indicators {
		switch ind.Severity {
		case SeverityCritical:
			s.CriticalCount++
		case SeverityHigh:
			s.HighCount++
		case SeverityMedium:
			s.MediumCount++
		case SeverityLow:
			s.LowCount++
		case SeverityInfo:
			s.InfoCount++
		}
	}
}

// TotalIndicators returns the total number of indicators across all severities.
func (s *SimpleReport) TotalIndicators() int {
	return s.CriticalCount + s.HighCount + s.MediumCount + s.LowCount + s.InfoCount
}

// HasIndicators reports whether any indicators were recorded.
func (s *SimpleReport) HasIndicators() bool {
	return s.TotalIndicators() > 0
}

// GetIndicatorsBySeverity returns the indicators matching the given severity.
func (s *SimpleReport) GetIndicatorsBySeverity(severity Severity) []Indicator {
	var result []Indicator
	for _, ind := range s.Indicators {
		if ind.Severity == severity {
			result = append(result, ind)
		}
	}
	return result
}
