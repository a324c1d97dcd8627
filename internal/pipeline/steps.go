package pipeline

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"

	"golang.org/x/crypto/blake2b"

	"github.com/Sharawey74/PhishSniffer/internal/classifier"
	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/database"
	"github.com/Sharawey74/PhishSniffer/internal/heuristic"
	"github.com/Sharawey74/PhishSniffer/internal/mail"
	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// parseAuto adapts the mail parser to the step's parser signature.
func parseAuto(data []byte) (*model.Email, error) {
	return mail.ParseAuto(data), nil
}

// analysisIDLength is the number of hex characters taken from the
// content hash to form the analysis ID.
const analysisIDLength = 12

// ParseStep reads and parses the input message.
//
// When Raw is set it is parsed directly; otherwise the step reads the
// file named by the report's Source. Parsing never hard-fails on
// malformed MIME: the parser degrades to treating the input as plain
// text so the later steps always have something to analyze.
type ParseStep struct {
	// Raw is the message content. When nil the step reads the file
	// at report.Source.
	Raw []byte

	// parser turns raw bytes into a parsed message. Overridable in tests.
	parser func(data []byte) (*model.Email, error)
}

// NewParseStep creates a step that reads the message from the file
// named by the report's Source.
func NewParseStep() *ParseStep {
	return &ParseStep{}
}

// NewParseRawStep creates a step that parses the given content instead
// of reading a file. Used by the API server and text-input analysis.
func NewParseRawStep(raw []byte) *ParseStep {
	return &ParseStep{Raw: raw}
}

// Name returns the step name.
func (s *ParseStep) Name() string {
	return "parse"
}

// Do parses the input and records the content hash and analysis ID.
func (s *ParseStep) Do(_ context.Context, report *model.AnalysisReport) error {
	raw := s.Raw
	if raw == nil {
		data, err := os.ReadFile(report.Source)
		if err != nil {
			return fmt.Errorf("read input %s: %w", report.Source, err)
		}
		raw = data
	}

	parse := s.parser
	if parse == nil {
		parse = parseAuto
	}

	email, err := parse(raw)
	if err != nil {
		return fmt.Errorf("parse input %s: %w", report.Source, err)
	}
	report.Email = email

	sum := blake2b.Sum256(raw)
	report.ContentHash = hex.EncodeToString(sum[:])
	report.AnalysisID = report.ContentHash[:analysisIDLength]

	return nil
}

// HeuristicStep runs the rule-based analyzers and records indicators.
type HeuristicStep struct {
	analyzer *heuristic.Analyzer
	patterns *config.File
}

// NewHeuristicStep creates a heuristic analysis step. patterns may be
// nil when no configuration file was loaded.
func NewHeuristicStep(analyzer *heuristic.Analyzer, patterns *config.File) *HeuristicStep {
	return &HeuristicStep{
		analyzer: analyzer,
		patterns: patterns,
	}
}

// Name returns the step name.
func (s *HeuristicStep) Name() string {
	return "heuristics"
}

// Do runs all registered analyzers against the parsed message.
func (s *HeuristicStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	if report.Email == nil {
		return fmt.Errorf("heuristics: no parsed message on report")
	}

	data := &heuristic.AnalysisData{
		Email:    report.Email,
		Patterns: s.patterns,
		Report:   report,
	}

	indicators, err := s.analyzer.Analyze(ctx, data)
	if err != nil {
		return fmt.Errorf("heuristics: %w", err)
	}

	for _, ind := range indicators {
		report.AddIndicator(ind)
	}

	return nil
}

// ClassifyStep scores the message with the loaded model and fills the
// verdict fields of the report.
type ClassifyStep struct {
	predictor *classifier.Predictor
}

// NewClassifyStep creates a classification step.
func NewClassifyStep(predictor *classifier.Predictor) *ClassifyStep {
	return &ClassifyStep{predictor: predictor}
}

// Name returns the step name.
func (s *ClassifyStep) Name() string {
	return "classify"
}

// Do runs the classifier on the message's analysis text.
func (s *ClassifyStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if report.Email == nil {
		return fmt.Errorf("classify: no parsed message on report")
	}

	pred := s.predictor.Predict(report.Email.AnalysisText())

	report.IsPhishing = pred.IsPhishing
	report.Prediction = pred.Probability
	report.Probability = pred.Probability
	report.ConfidenceLevel = pred.ConfidenceLevel
	report.ModelName = pred.ModelName
	report.FeatureVector = pred.Features
	report.RiskFactors = pred.RiskFactors
	report.FeaturesDetected = pred.FeaturesDetected

	return nil
}

// OverrideStep applies the special-pattern verdict override.
//
// A matched pattern marks the message as confirmed phishing: the
// verdict is forced and the probability is raised to at least the
// override floor so downstream consumers see a decisive score.
type OverrideStep struct{}

// NewOverrideStep creates the pattern override step.
func NewOverrideStep() *OverrideStep {
	return &OverrideStep{}
}

// Name returns the step name.
func (s *OverrideStep) Name() string {
	return "pattern-override"
}

// Do forces the phishing verdict when a special pattern matched.
func (s *OverrideStep) Do(_ context.Context, report *model.AnalysisReport) error {
	if !report.PatternOverride {
		return nil
	}

	report.IsPhishing = true
	if report.Probability < config.OverrideProbability {
		report.Probability = config.OverrideProbability
		report.Prediction = config.OverrideProbability
	}
	report.ConfidenceLevel = classifier.ConfidenceHigh

	return nil
}

// StoreStep persists the finished analysis: the history entry, the
// full report, and every extracted URL rated above low risk.
type StoreStep struct {
	db *database.AnalysisDB
}

// NewStoreStep creates a persistence step.
func NewStoreStep(db *database.AnalysisDB) *StoreStep {
	return &StoreStep{db: db}
}

// Name returns the step name.
func (s *StoreStep) Name() string {
	return "store"
}

// Do writes the analysis results to the database.
func (s *StoreStep) Do(ctx context.Context, report *model.AnalysisReport) error {
	// Summarize before persisting so the stored JSON is self-contained.
	report.SimpleReport = model.NewSimpleReport(report)

	if err := s.db.AddHistoryEntry(ctx, report); err != nil {
		return fmt.Errorf("store history: %w", err)
	}

	if err := s.db.SaveReport(ctx, report); err != nil {
		return fmt.Errorf("store report: %w", err)
	}

	for _, record := range report.ExtractedURLs {
		if record.RiskLevel == model.RiskLow {
			continue
		}
		if record.Source == "" {
			record.Source = report.Source
		}
		if err := s.db.UpsertURL(ctx, record); err != nil {
			return fmt.Errorf("store url %s: %w", record.URL, err)
		}
	}

	return nil
}

// SummarizeStep fills the simple report without persisting anything.
// Used when analysis runs with storage disabled.
type SummarizeStep struct{}

// NewSummarizeStep creates a summarize-only step.
func NewSummarizeStep() *SummarizeStep {
	return &SummarizeStep{}
}

// Name returns the step name.
func (s *SummarizeStep) Name() string {
	return "summarize"
}

// Do generates the simple report from the accumulated results.
func (s *SummarizeStep) Do(_ context.Context, report *model.AnalysisReport) error {
	report.SimpleReport = model.NewSimpleReport(report)
	return nil
}
