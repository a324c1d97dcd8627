package model

import (
	"strings"
	"time"
)

// RiskLevel categorizes a suspicious URL for the URL store and the URL
// analysis endpoint. Values match what the history views sort and filter on.
type RiskLevel string

const (
	// RiskHigh marks URLs that are near-certain phishing infrastructure
	// (IP-based URLs, unparseable URLs).
	RiskHigh RiskLevel = "High"

	// RiskMedium marks URLs with suspicious traits (shorteners, bad TLDs).
	RiskMedium RiskLevel = "Medium"

	// RiskLow marks URLs with no suspicious traits, or ones a user marked safe.
	RiskLow RiskLevel = "Low"
)

// Score returns a sortable numeric value for the risk level.
// Higher means riskier.
func (r RiskLevel) Score() int {
	switch r {
	case RiskHigh:
		return 3
	case RiskMedium:
		return 2
	case RiskLow:
		return 1
	default:
		return 0
	}
}

// URLRecord is a single analyzed URL with its assessed risk.
type URLRecord struct {
	// URL is the full URL as it appeared in the message.
	URL string `json:"url"`

	// Domain is the host portion of the URL.
	Domain string `json:"domain,omitempty"`

	// Source identifies where the URL came from (file path, "text input", "api").
	Source string `json:"source,omitempty"`

	// DateAdded is when the URL was first recorded.
	DateAdded time.Time `json:"date_added"`

	// RiskLevel is the assessed risk category.
	RiskLevel RiskLevel `json:"risk_level"`

	// RiskFactors lists the reasons the URL was flagged.
	RiskFactors []string `json:"risk_factors,omitempty"`

	// SafetyScore is 1.0 for clean URLs, lower for riskier ones.
	SafetyScore float64 `json:"safety_score"`
}

// Indicator represents a single suspicious indicator found during analysis.
type Indicator struct {
	// Type is the indicator type identifier.
	// This maps to the indicatorInfoMapping in severity.go.
	Type string `json:"type"`

	// Severity is the risk level.
	Severity Severity `json:"severity"`

	// SeverityText is the human-readable severity.
	SeverityText string `json:"severity_text"`

	// Title is a short description of the indicator.
	Title string `json:"title"`

	// Description provides more detail about the indicator.
	Description string `json:"description,omitempty"`

	// Impact explains why this indicator matters.
	Impact string `json:"impact,omitempty"`

	// Recommendation provides guidance on how to respond.
	Recommendation string `json:"recommendation,omitempty"`

	// Value is the specific value found (address, URL, phrase, etc.).
	Value string `json:"value,omitempty"`

	// Location is where the indicator was discovered
	// (e.g., "From header", "subject", "body").
	Location string `json:"location,omitempty"`
}

// AnalysisReport is the main analysis result structure.
// It contains everything collected while analyzing one email.
//
// Design decision: We use a single large struct rather than many small ones
// to simplify serialization and database storage. The SimpleReport sub-struct
// provides the summarized view for human-readable output.
type AnalysisReport struct {
	// === Basic Information ===

	// Source identifies the analyzed input (file path, "text input", "api").
	Source string `json:"source"`

	// AnalysisID is a short content-derived identifier for the analysis.
	AnalysisID string `json:"analysis_id,omitempty"`

	// DateAnalyzed is the timestamp when the analysis was performed.
	DateAnalyzed time.Time `json:"date_analyzed"`

	// ContentHash is the BLAKE2b hash of the raw input, hex-encoded.
	ContentHash string `json:"content_hash,omitempty"`

	// === Parsed Message ===

	// Email is the parsed message. Excluded from JSON due to size; the
	// interesting header values are summarized in the simple report.
	Email *Email `json:"-"`

	// === Verdict ===

	// IsPhishing is the final verdict after threshold and pattern overrides.
	IsPhishing bool `json:"is_phishing"`

	// Prediction is the raw model output before thresholding.
	Prediction float64 `json:"prediction"`

	// Probability is the phishing-class probability in [0,1].
	Probability float64 `json:"probability"`

	// ConfidenceLevel is "High" (>0.8), "Medium" (>0.6), or "Low".
	ConfidenceLevel string `json:"confidence_level"`

	// PatternOverride is true when a special known-phishing pattern forced
	// the verdict regardless of the model output.
	PatternOverride bool `json:"pattern_override"`

	// ModelName identifies the model that produced the prediction.
	ModelName string `json:"model_name,omitempty"`

	// FeatureVector is the 10-dimensional weighted feature vector fed to
	// the model. Useful for debugging threshold decisions.
	FeatureVector []float64 `json:"feature_vector,omitempty"`

	// === Findings ===

	// Indicators contains all suspicious indicators found by the heuristics.
	Indicators []Indicator `json:"indicators,omitempty"`

	// RiskFactors is the flat list of risk-factor strings for API output.
	RiskFactors []string `json:"risk_factors,omitempty"`

	// FeaturesDetected is the flat list of neutral observations for API output.
	FeaturesDetected []string `json:"features_detected,omitempty"`

	// ExtractedURLs contains every URL found in the message with its risk.
	ExtractedURLs []URLRecord `json:"extracted_urls,omitempty"`

	// === Sub-Reports ===

	// SimpleReport contains the summarized findings for human-readable output.
	SimpleReport *SimpleReport `json:"simple_report,omitempty"`

	// === Analysis State ===

	// PerformedSteps lists the pipeline steps that actually ran.
	PerformedSteps []string `json:"performed_steps,omitempty"`

	// Error contains any error that occurred during analysis.
	// Only set if the analysis failed or partially failed.
	Error error `json:"-"` // Excluded from JSON

	// ErrorMessage is the string representation of Error for serialization.
	ErrorMessage string `json:"error,omitempty"` //nolint:tagliatelle // error is conventional
}

// NewAnalysisReport creates a new report for the given input source.
func NewAnalysisReport(source string) *AnalysisReport {
	return &AnalysisReport{
		Source:          source,
		DateAnalyzed:    time.Now(),
		ConfidenceLevel: "Low",
	}
}

// AddIndicator appends an indicator, filling severity and info fields
// from the central indicator mapping when they are unset.
func (r *AnalysisReport) AddIndicator(ind Indicator) {
	info := GetIndicatorInfo(ind.Type)
	if ind.SeverityText == "" {
		ind.Severity = info.Severity
		ind.SeverityText = info.Severity.String()
	}
	if ind.Title == "" {
		ind.Title = titleFromType(ind.Type)
	}
	if ind.Description == "" {
		ind.Description = info.Impact
	}
	if ind.Impact == "" {
		ind.Impact = info.Impact
	}
	if ind.Recommendation == "" {
		ind.Recommendation = info.Recommendation
	}
	r.Indicators = append(r.Indicators, ind)
}

// titleFromType renders an indicator type like "sender_domain_mismatch"
// as "Sender Domain Mismatch".
func titleFromType(indicatorType string) string {
	words := strings.Split(indicatorType, "_")
	for i, word := range words {
		if word == "" {
			continue
		}
		switch word {
		case "url", "ip", "tld":
			words[i] = strings.ToUpper(word)
		default:
			words[i] = strings.ToUpper(word[:1]) + word[1:]
		}
	}
	return strings.Join(words, " ")
}

// AddURL records an analyzed URL, skipping duplicates by URL string.
func (r *AnalysisReport) AddURL(rec URLRecord) {
	for _, existing := range r.ExtractedURLs {
		if existing.URL == rec.URL {
			return
		}
	}
	r.ExtractedURLs = append(r.ExtractedURLs, rec)
}

// MaxSeverity returns the highest severity among all indicators.
// Returns SeverityInfo when there are no indicators.
func (r *AnalysisReport) MaxSeverity() Severity {
	maxSev := SeverityInfo
	for _, ind := range r.Indicators {
		if ind.Severity > maxSev {
			maxSev = ind.Severity
		}
	}
	return maxSev
}
