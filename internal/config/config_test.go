package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// TestNewConfig tests that defaults are sensible.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	if cfg.Threshold != DefaultThreshold {
		t.Errorf("Threshold = %v, want %v", cfg.Threshold, DefaultThreshold)
	}
	if cfg.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", cfg.BatchSize, DefaultBatchSize)
	}
	if cfg.ServeAddr != DefaultServeAddr {
		t.Errorf("ServeAddr = %q, want %q", cfg.ServeAddr, DefaultServeAddr)
	}
	if cfg.ModelDir == "" || cfg.DBDir == "" {
		t.Error("expected default data directories to be set")
	}
}

// TestConfigValidate tests configuration validation.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{
			name:    "no input",
			mutate:  func(c *Config) {},
			wantErr: ErrNoInput,
		},
		{
			name: "valid file input",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
			},
			wantErr: nil,
		},
		{
			name: "valid text input",
			mutate: func(c *Config) {
				c.Text = "From: a@b.com\n\nhello"
			},
			wantErr: nil,
		},
		{
			name: "conflicting inputs",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
				c.Text = "hello"
			},
			wantErr: ErrConflictingInputs,
		},
		{
			name: "threshold too high",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
				c.Threshold = 1.5
			},
			wantErr: ErrInvalidThreshold,
		},
		{
			name: "threshold negative",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
				c.Threshold = -0.1
			},
			wantErr: ErrInvalidThreshold,
		},
		{
			name: "zero batch size",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
				c.BatchSize = 0
			},
			wantErr: ErrInvalidBatchSize,
		},
		{
			name: "conflicting report formats",
			mutate: func(c *Config) {
				c.Inputs = []string{"mail.eml"}
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// TestValidateServe tests the server configuration subset.
func TestValidateServe(t *testing.T) {
	t.Parallel()

	t.Run("defaults are valid", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		if err := cfg.ValidateServe(); err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	})

	t.Run("missing address", func(t *testing.T) {
		t.Parallel()

		cfg := NewConfig()
		cfg.ServeAddr = ""
		if err := cfg.ValidateServe(); !errors.Is(err, ErrNoListenAddress) {
			t.Errorf("ValidateServe() = %v, want %v", err, ErrNoListenAddress)
		}
	})
}

// TestLoadConfigFile tests YAML config loading.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("loads patterns and trusted domains", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, DefaultConfigFile)
		content := `
trustedDomains:
  - example.com
patterns:
  - name: fake-invoice
    subjectKeywords:
      - invoice
      - payment due
    domains:
      - billing-secure.xyz
`
		if err := os.WriteFile(path, []byte(content), 0600); err != nil {
			t.Fatal(err)
		}

		cf, err := LoadConfigFile(path)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if len(cf.Patterns) != 1 {
			t.Fatalf("expected 1 pattern, got %d", len(cf.Patterns))
		}
		if cf.Patterns[0].Name != "fake-invoice" {
			t.Errorf("pattern name = %q", cf.Patterns[0].Name)
		}
		if !cf.IsTrustedDomain("EXAMPLE.COM") {
			t.Error("expected example.com to be trusted (case-insensitive)")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfigFile(filepath.Join(t.TempDir(), "nope.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("expected ErrConfigNotFound, got %v", err)
		}
	})

	t.Run("invalid yaml", func(t *testing.T) {
		t.Parallel()

		dir := t.TempDir()
		path := filepath.Join(dir, "bad.yaml")
		if err := os.WriteFile(path, []byte("patterns: [unclosed"), 0600); err != nil {
			t.Fatal(err)
		}

		if _, err := LoadConfigFile(path); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})
}

// TestSpecialPatternMatches tests pattern matching semantics.
func TestSpecialPatternMatches(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		pattern SpecialPattern
		subject string
		from    string
		body    string
		urls    []string
		want    bool
	}{
		{
			name:    "subject keyword match",
			pattern: SpecialPattern{SubjectKeywords: []string{"urgent", "invoice"}},
			subject: "your invoice is ready",
			want:    true,
		},
		{
			name:    "subject keyword miss",
			pattern: SpecialPattern{SubjectKeywords: []string{"urgent"}},
			subject: "weekly newsletter",
			want:    false,
		},
		{
			name:    "all groups must match",
			pattern: SpecialPattern{SubjectKeywords: []string{"invoice"}, Domains: []string{"evil.xyz"}},
			subject: "invoice attached",
			body:    "pay at legit.com",
			want:    false,
		},
		{
			name:    "domain matches body",
			pattern: SpecialPattern{Domains: []string{"evil.xyz"}},
			body:    "click http://evil.xyz/login now",
			want:    true,
		},
		{
			name:    "url group requires urls",
			pattern: SpecialPattern{URLs: []string{"bit.ly/scam"}},
			urls:    nil,
			want:    false,
		},
		{
			name:    "url substring match",
			pattern: SpecialPattern{URLs: []string{"bit.ly/scam"}},
			urls:    []string{"http://BIT.LY/scam123"},
			want:    true,
		},
		{
			name:    "empty pattern is inert",
			pattern: SpecialPattern{},
			subject: "anything",
			body:    "anything",
			want:    false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := tt.pattern.Matches(tt.subject, tt.from, tt.body, tt.urls)
			if got != tt.want {
				t.Errorf("Matches() = %v, want %v", got, tt.want)
			}
		})
	}
}

// TestMatchPattern tests first-match selection over a pattern set.
func TestMatchPattern(t *testing.T) {
	t.Parallel()

	cf := &File{
		Patterns: []SpecialPattern{
			{Name: "first", SubjectKeywords: []string{"lottery"}},
			{Name: "second", SubjectKeywords: []string{"invoice"}},
		},
	}

	if p := cf.MatchPattern("Your INVOICE", "", "", nil); p == nil || p.Name != "second" {
		t.Errorf("expected pattern %q, got %+v", "second", p)
	}
	if p := cf.MatchPattern("hello", "", "", nil); p != nil {
		t.Errorf("expected no match, got %+v", p)
	}

	var nilFile *File
	if p := nilFile.MatchPattern("lottery", "", "", nil); p != nil {
		t.Error("nil file should never match")
	}
}
