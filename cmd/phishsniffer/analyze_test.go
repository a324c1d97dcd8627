package main

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/model"
)

const testPhishingEmail = "From: PayPal Security <alerts@secure-check.xyz>\r\n" +
	"Subject: Urgent: verify your account\r\n" +
	"\r\n" +
	"Act now: confirm your password at http://203.0.113.9/verify\r\n" +
	"or your account will be suspended immediately.\r\n"

// TestNewAnalyzeCmd tests the analyze command creation.
func TestNewAnalyzeCmd(t *testing.T) {
	t.Parallel()

	cmd := NewAnalyzeCmd()

	t.Run("has correct use", func(t *testing.T) {
		t.Parallel()
		if cmd.Use != "analyze [email-file...]" {
			t.Errorf("expected use 'analyze [email-file...]', got %q", cmd.Use)
		}
	})

	t.Run("has short description", func(t *testing.T) {
		t.Parallel()
		if cmd.Short == "" {
			t.Error("expected non-empty short description")
		}
	})

	t.Run("has long description", func(t *testing.T) {
		t.Parallel()
		if cmd.Long == "" {
			t.Error("expected non-empty long description")
		}
	})

	t.Run("has threshold flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("threshold")
		if flag == nil {
			t.Fatal("expected threshold flag")
		}
		if flag.Shorthand != "t" {
			t.Errorf("expected shorthand 't', got %q", flag.Shorthand)
		}
		if flag.DefValue != "0.5" {
			t.Errorf("expected default '0.5', got %q", flag.DefValue)
		}
	})

	t.Run("has batch flag", func(t *testing.T) {
		t.Parallel()
		flag := cmd.Flags().Lookup("batch")
		if flag == nil {
			t.Fatal("expected batch flag")
		}
		if flag.Shorthand != "b" {
			t.Errorf("expected shorthand 'b', got %q", flag.Shorthand)
		}
	})

	t.Run("has report format flags", func(t *testing.T) {
		t.Parallel()
		for _, name := range []string{"json", "markdown", "output"} {
			if cmd.Flags().Lookup(name) == nil {
				t.Errorf("expected %s flag", name)
			}
		}
	})

	t.Run("has text and no-save flags", func(t *testing.T) {
		t.Parallel()
		if cmd.Flags().Lookup("text") == nil {
			t.Error("expected text flag")
		}
		if cmd.Flags().Lookup("no-save") == nil {
			t.Error("expected no-save flag")
		}
	})
}

// TestBuildAnalyzeConfig tests config construction from flags.
func TestBuildAnalyzeConfig(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		if err := cmd.ParseFlags(nil); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildAnalyzeConfig(cmd, []string{"mail.eml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Threshold != config.DefaultThreshold {
			t.Errorf("threshold = %v, want %v", cfg.Threshold, config.DefaultThreshold)
		}
		if cfg.BatchSize != config.DefaultBatchSize {
			t.Errorf("batch size = %v, want %v", cfg.BatchSize, config.DefaultBatchSize)
		}
		if len(cfg.Inputs) != 1 || cfg.Inputs[0] != "mail.eml" {
			t.Errorf("inputs = %v", cfg.Inputs)
		}
		if cfg.NoSave {
			t.Error("no-save should default to false")
		}
	})

	t.Run("custom flags", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		args := []string{
			"--threshold", "0.8",
			"--batch", "2",
			"--json",
			"--no-save",
			"--model", "model_20250101",
		}
		if err := cmd.ParseFlags(args); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildAnalyzeConfig(cmd, []string{"a.eml", "b.eml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cfg.Threshold != 0.8 {
			t.Errorf("threshold = %v, want 0.8", cfg.Threshold)
		}
		if cfg.BatchSize != 2 {
			t.Errorf("batch size = %v, want 2", cfg.BatchSize)
		}
		if !cfg.JSONReport {
			t.Error("JSONReport should be true")
		}
		if !cfg.NoSave {
			t.Error("NoSave should be true")
		}
		if cfg.ModelName != "model_20250101" {
			t.Errorf("model name = %q", cfg.ModelName)
		}
		if len(cfg.Inputs) != 2 {
			t.Errorf("inputs = %v", cfg.Inputs)
		}
	})

	t.Run("missing explicit config file", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		missing := filepath.Join(t.TempDir(), "nope.yaml")
		if err := cmd.ParseFlags([]string{"--config", missing}); err != nil {
			t.Fatal(err)
		}

		if _, err := buildAnalyzeConfig(cmd, []string{"mail.eml"}); err == nil {
			t.Error("expected error for missing explicit config file")
		}
	})

	t.Run("loads patterns from config file", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "patterns.yaml")
		content := "trustedDomains:\n  - mycompany.com\npatterns:\n  - name: test campaign\n    subjectKeywords:\n      - invoice\n"
		if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}

		cmd := NewAnalyzeCmd()
		if err := cmd.ParseFlags([]string{"--config", configPath}); err != nil {
			t.Fatal(err)
		}

		cfg, err := buildAnalyzeConfig(cmd, []string{"mail.eml"})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cfg.File == nil || len(cfg.File.Patterns) != 1 {
			t.Fatalf("patterns not loaded: %+v", cfg.File)
		}
		if !cfg.File.IsTrustedDomain("mycompany.com") {
			t.Error("trusted domain not loaded")
		}
	})
}

// TestRunAnalyzeCmdValidation tests configuration validation paths.
func TestRunAnalyzeCmdValidation(t *testing.T) {
	t.Run("no input", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cmd.SetArgs([]string{})

		err := cmd.Execute()
		if !errors.Is(err, config.ErrNoInput) {
			t.Errorf("error = %v, want ErrNoInput", err)
		}
	})

	t.Run("conflicting formats", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cmd.SetArgs([]string{"--json", "--markdown", "mail.eml"})

		err := cmd.Execute()
		if !errors.Is(err, config.ErrConflictingReportFormats) {
			t.Errorf("error = %v, want ErrConflictingReportFormats", err)
		}
	})

	t.Run("conflicting inputs", func(t *testing.T) {
		cmd := NewAnalyzeCmd()
		cmd.SetArgs([]string{"--text", "hello", "mail.eml"})

		err := cmd.Execute()
		if !errors.Is(err, config.ErrConflictingInputs) {
			t.Errorf("error = %v, want ErrConflictingInputs", err)
		}
	})
}

// TestAnalyzeTextEndToEnd runs a full text analysis through the command.
func TestAnalyzeTextEndToEnd(t *testing.T) {
	reportPath := filepath.Join(t.TempDir(), "out", "report.json")

	cmd := NewAnalyzeCmd()
	cmd.SetArgs([]string{
		"--text", testPhishingEmail,
		"--no-save",
		"--json",
		"-o", reportPath,
	})

	if err := cmd.Execute(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := os.ReadFile(reportPath)
	if err != nil {
		t.Fatalf("report file not written: %v", err)
	}

	var result model.AnalysisReport
	if err := json.Unmarshal(data, &result); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}

	if !result.IsPhishing {
		t.Errorf("is_phishing = false, probability %v", result.Probability)
	}
	if result.Source != "text input" {
		t.Errorf("source = %q", result.Source)
	}
	if len(result.Indicators) == 0 {
		t.Error("expected heuristic indicators in report")
	}
	if result.SimpleReport == nil {
		t.Error("expected simple report in output")
	}
}

// TestOutputReportFormats verifies each report format writes output.
func TestOutputReportFormats(t *testing.T) {
	t.Parallel()

	baseReport := func() *model.AnalysisReport {
		r := model.NewAnalysisReport("test.eml")
		r.IsPhishing = true
		r.Probability = 0.9
		r.ConfidenceLevel = "High"
		r.AddIndicator(model.Indicator{
			Type:  "subject_urgency",
			Value: "urgent",
		})
		return r
	}

	tests := []struct {
		name string
		json bool
		md   bool
		want string
	}{
		{name: "simple format", want: "PHISHING"},
		{name: "json format", json: true, want: `"is_phishing": true`},
		{name: "markdown format", md: true, want: "# "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := config.NewConfig()
			cfg.JSONReport = tt.json
			cfg.MarkdownReport = tt.md
			cfg.ReportFile = filepath.Join(t.TempDir(), "report.out")

			if err := outputReport(cfg, baseReport()); err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			data, err := os.ReadFile(cfg.ReportFile)
			if err != nil {
				t.Fatalf("report file not written: %v", err)
			}
			if !strings.Contains(string(data), tt.want) {
				t.Errorf("output does not contain %q:\n%s", tt.want, data)
			}
		})
	}
}
