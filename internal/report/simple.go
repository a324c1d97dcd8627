package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// SimpleWriter outputs human-readable text reports.
// This format is designed for terminal display with clear section
// formatting and severity grouping.
//
// Design decision: We use plain text with ASCII formatting rather than
// ANSI colors by default because:
// 1. It works in all terminals without compatibility issues
// 2. It's easier to pipe to files or other tools
// 3. Color can be added as an option later if needed
type SimpleWriter struct {
	baseWriter

	// showEmpty controls whether sections with no indicators are shown.
	showEmpty bool

	// verbose enables additional detail in the output.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables verbose output with additional details.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{
		baseWriter: newBaseWriter(output),
	}

	for _, opt := range opts {
		opt(w)
	}

	return w
}

// Write outputs the full report in human-readable format.
// It generates a SimpleReport from the AnalysisReport if not already present.
func (w *SimpleWriter) Write(report *model.AnalysisReport) (int, error) {
	simple := report.SimpleReport
	if simple == nil {
		simple = model.NewSimpleReport(report)
	}

	return w.WriteSimple(simple)
}

// WriteSimple outputs the simple report in human-readable format.
func (w *SimpleWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, report)
	w.writeVerdict(&sb, report)
	w.writeSummary(&sb, report)
	w.writeIndicators(&sb, report)
	w.writeFooter(&sb)

	return w.output.Write([]byte(sb.String()))
}

// writeHeader writes the report header with message information.
func (w *SimpleWriter) writeHeader(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                      PHISHSNIFFER ANALYSIS\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("Source:         %s\n", report.Source))
	sb.WriteString(fmt.Sprintf("Analyzed:       %s\n", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")))
	if report.From != "" {
		sb.WriteString(fmt.Sprintf("From:           %s\n", report.From))
	}
	if report.Subject != "" {
		sb.WriteString(fmt.Sprintf("Subject:        %s\n", report.Subject))
	}

	if report.Error != "" {
		sb.WriteString(fmt.Sprintf("Status:         ERROR - %s\n", report.Error))
	} else {
		sb.WriteString("Status:         Complete\n")
	}

	sb.WriteString("\n")
}

// writeVerdict writes the classification outcome.
func (w *SimpleWriter) writeVerdict(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("VERDICT\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	if report.IsPhishing {
		sb.WriteString("  PHISHING\n")
	} else {
		sb.WriteString("  LEGITIMATE\n")
	}
	sb.WriteString(fmt.Sprintf("  Probability: %.1f%%\n", report.Probability*100))
	sb.WriteString(fmt.Sprintf("  Confidence:  %s\n", report.ConfidenceLevel))
	if report.PatternOverride {
		sb.WriteString("  Matched a known phishing pattern\n")
	}
	sb.WriteString("\n")
}

// writeSummary writes the severity summary section.
func (w *SimpleWriter) writeSummary(sb *strings.Builder, report *model.SimpleReport) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("SEVERITY SUMMARY\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	sb.WriteString(fmt.Sprintf("  CRITICAL: %d\n", report.CriticalCount))
	sb.WriteString(fmt.Sprintf("  HIGH:     %d\n", report.HighCount))
	sb.WriteString(fmt.Sprintf("  MEDIUM:   %d\n", report.MediumCount))
	sb.WriteString(fmt.Sprintf("  LOW:      %d\n", report.LowCount))
	sb.WriteString(fmt.Sprintf("  INFO:     %d\n", report.InfoCount))
	sb.WriteString("\n")

	sb.WriteString(fmt.Sprintf("  TOTAL:    %d indicators\n", report.TotalIndicators()))
	if report.URLCount > 0 {
		sb.WriteString(fmt.Sprintf("  URLS:     %d extracted, %d suspicious\n",
			report.URLCount, report.SuspiciousURLCount))
	}
	sb.WriteString("\n")
}

// writeIndicators writes all indicators grouped by severity.
func (w *SimpleWriter) writeIndicators(sb *strings.Builder, report *model.SimpleReport) {
	if !report.HasIndicators() && !w.showEmpty {
		return
	}

	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString("INDICATORS\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")

	// Write indicators in order of severity (critical first)
	severities := []model.Severity{
		model.SeverityCritical,
		model.SeverityHigh,
		model.SeverityMedium,
		model.SeverityLow,
		model.SeverityInfo,
	}

	for _, severity := range severities {
		indicators := report.GetIndicatorsBySeverity(severity)
		if len(indicators) == 0 && !w.showEmpty {
			continue
		}

		w.writeIndicatorsForSeverity(sb, severity, indicators)
	}
}

// writeIndicatorsForSeverity writes indicators of a specific severity level.
func (w *SimpleWriter) writeIndicatorsForSeverity(sb *strings.Builder, severity model.Severity, indicators []model.Indicator) {
	marker := w.getSeverityMarker(severity)
	sb.WriteString(fmt.Sprintf("[%s] %s\n", marker, severity.String()))

	if len(indicators) == 0 {
		sb.WriteString("  No indicators\n\n")
		return
	}

	for _, ind := range indicators {
		sb.WriteString(fmt.Sprintf("  * %s\n", ind.Title))
		if ind.Value != "" {
			sb.WriteString(fmt.Sprintf("    Value: %s\n", ind.Value))
		}
		if ind.Location != "" {
			sb.WriteString(fmt.Sprintf("    Location: %s\n", ind.Location))
		}
		if w.verbose && ind.Description != "" {
			sb.WriteString(fmt.Sprintf("    Description: %s\n", ind.Description))
		}
		if w.verbose && ind.Recommendation != "" {
			sb.WriteString(fmt.Sprintf("    Recommendation: %s\n", ind.Recommendation))
		}
	}
	sb.WriteString("\n")
}

// getSeverityMarker returns a visual marker for the severity level.
func (w *SimpleWriter) getSeverityMarker(severity model.Severity) string {
	switch severity {
	case model.SeverityCritical:
		return "!!!"
	case model.SeverityHigh:
		return "!!"
	case model.SeverityMedium:
		return "!"
	case model.SeverityLow:
		return "-"
	case model.SeverityInfo:
		return "i"
	default:
		return "?"
	}
}

// writeFooter writes the report footer.
func (w *SimpleWriter) writeFooter(sb *strings.Builder) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("Report generated by PhishSniffer\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
}
