package report

import (
	"fmt"
	"io"
	"strconv"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// MarkdownWriter outputs reports in Markdown format.
// This format is designed for documentation and sharing.
//
// Design decision: We use the nao1215/markdown library for fluent markdown
// generation which provides:
// 1. Type-safe markdown generation
// 2. Support for tables, lists, and code blocks
// 3. GitHub-flavored markdown alerts
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{
		baseWriter: newBaseWriter(output),
	}
}

// Write outputs the full report in Markdown format.
func (w *MarkdownWriter) Write(report *model.AnalysisReport) (int, error) {
	simple := report.SimpleReport
	if simple == nil {
		simple = model.NewSimpleReport(report)
	}

	return w.WriteSimple(simple)
}

// WriteSimple outputs the simple report in Markdown format.
func (w *MarkdownWriter) WriteSimple(report *model.SimpleReport) (int, error) {
	md := markdown.NewMarkdown(w.output)

	w.writeHeader(md, report)
	w.writeVerdict(md, report)
	w.writeSummary(md, report)
	w.writeIndicators(md, report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

// writeHeader writes the report header with message information.
func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, report *model.SimpleReport) {
	md.H1("PhishSniffer Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + report.Source + "`"},
		{"Analysis Date", report.DateAnalyzed.Format("2006-01-02 15:04:05 MST")},
	}
	if report.From != "" {
		rows = append(rows, []string{"From", "`" + report.From + "`"})
	}
	if report.Subject != "" {
		rows = append(rows, []string{"Subject", report.Subject})
	}
	rows = append(rows, []string{"Status", w.getStatusText(report)})

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

// getStatusText returns the status text based on report state.
func (w *MarkdownWriter) getStatusText(report *model.SimpleReport) string {
	if report.Error != "" {
		return "❌ Error - " + report.Error
	}
	return "✅ Complete"
}

// writeVerdict writes the classification outcome with an alert.
func (w *MarkdownWriter) writeVerdict(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Verdict")
	md.PlainText("")

	verdict := "Legitimate"
	if report.IsPhishing {
		verdict = "**Phishing**"
	}

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows: [][]string{
			{"Classification", verdict},
			{"Probability", fmt.Sprintf("%.1f%%", report.Probability*100)},
			{"Confidence", report.ConfidenceLevel},
		},
	})
	md.PlainText("")

	switch {
	case report.PatternOverride:
		md.Caution("This message matched a known phishing pattern. Do not interact with it.")
	case report.IsPhishing:
		md.Warningf(
			"This message was classified as phishing with %.1f%% probability.",
			report.Probability*100,
		)
	default:
		md.Note("This message was classified as legitimate. Review the indicators below before trusting it.")
	}
	md.PlainText("")
}

// writeSummary writes the severity summary section.
func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Severity Summary")
	md.PlainText("")

	md.Table(markdown.TableSet{
		Header: []string{"Severity", "Count"},
		Rows: [][]string{
			{"🔴 Critical", strconv.Itoa(report.CriticalCount)},
			{"🟠 High", strconv.Itoa(report.HighCount)},
			{"🟡 Medium", strconv.Itoa(report.MediumCount)},
			{"🔵 Low", strconv.Itoa(report.LowCount)},
			{"⚪ Info", strconv.Itoa(report.InfoCount)},
			{"**Total**", "**" + strconv.Itoa(report.TotalIndicators()) + "**"},
		},
	})
	md.PlainText("")

	if report.URLCount > 0 {
		md.PlainTextf("Extracted %d URL(s), %d rated suspicious.",
			report.URLCount, report.SuspiciousURLCount)
		md.PlainText("")
	}

	if report.HasIndicators() {
		w.writePieChart(md, report)
	}
}

// writePieChart writes a mermaid pie chart for severity distribution.
func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, report *model.SimpleReport) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Indicator Severity Distribution"),
		piechart.WithShowData(true),
	)

	if report.CriticalCount > 0 {
		chart.LabelAndIntValue("Critical", uint64(report.CriticalCount))
	}
	if report.HighCount > 0 {
		chart.LabelAndIntValue("High", uint64(report.HighCount))
	}
	if report.MediumCount > 0 {
		chart.LabelAndIntValue("Medium", uint64(report.MediumCount))
	}
	if report.LowCount > 0 {
		chart.LabelAndIntValue("Low", uint64(report.LowCount))
	}
	if report.InfoCount > 0 {
		chart.LabelAndIntValue("Info", uint64(report.InfoCount))
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

// writeIndicators writes all indicators grouped by severity.
func (w *MarkdownWriter) writeIndicators(md *markdown.Markdown, report *model.SimpleReport) {
	md.H2("Indicators")
	md.PlainText("")

	if !report.HasIndicators() {
		md.PlainText("No suspicious indicators detected.")
		md.PlainText("")
		return
	}

	severities := []struct {
		level  model.Severity
		header string
	}{
		{model.SeverityCritical, "### 🔴 Critical"},
		{model.SeverityHigh, "### 🟠 High"},
		{model.SeverityMedium, "### 🟡 Medium"},
		{model.SeverityLow, "### 🔵 Low"},
		{model.SeverityInfo, "### ⚪ Info"},
	}

	for _, sev := range severities {
		indicators := report.GetIndicatorsBySeverity(sev.level)
		if len(indicators) == 0 {
			continue
		}

		md.PlainText(sev.header)
		md.PlainText("")
		w.writeIndicatorsTable(md, indicators)
	}
}

// writeIndicatorsTable writes a table of indicators with details.
func (w *MarkdownWriter) writeIndicatorsTable(md *markdown.Markdown, indicators []model.Indicator) {
	headers := []string{"Title", "Value", "Location", "Recommendation"}

	rows := make([][]string, len(indicators))
	for i, ind := range indicators {
		value := ind.Value
		if value == "" {
			value = "-"
		}
		location := ind.Location
		if location == "" {
			location = "-"
		}
		rec := ind.Recommendation
		if rec == "" {
			rec = "-"
		}

		rows[i] = []string{
			ind.Title,
			truncateString(value, 50),
			truncateString(location, 40),
			truncateString(rec, 60),
		}
	}

	md.Table(markdown.TableSet{
		Header: headers,
		Rows:   rows,
	})
	md.PlainText("")

	// Add detailed descriptions for all indicators
	for _, ind := range indicators {
		if ind.Description != "" {
			md.Details(ind.Title, ind.Description)
		}
	}
	md.PlainText("")
}

// writeFooter writes the report footer.
func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by [PhishSniffer](https://github.com/Sharawey74/PhishSniffer)*")
}

// truncateString truncates a string to maxLen characters with ellipsis.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return s[:maxLen]
	}
	return s[:maxLen-3] + "..."
}
