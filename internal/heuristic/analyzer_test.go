package heuristic

import (
	"context"
	"strings"
	"testing"

	"github.com/Sharawey74/PhishSniffer/internal/config"
	"github.com/Sharawey74/PhishSniffer/internal/model"
)

func indicatorTypes(indicators []model.Indicator) map[string]bool {
	types := make(map[string]bool, len(indicators))
	for _, ind := range indicators {
		types[ind.Type] = true
	}
	return types
}

func TestSenderAnalyzer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		email     *model.Email
		wantTypes []string
		skipTypes []string
	}{
		{
			name: "reply-to domain differs from sender",
			email: &model.Email{
				From:    "support@example.com",
				ReplyTo: "attacker@evil.net",
			},
			wantTypes: []string{"sender_domain_mismatch"},
		},
		{
			name: "return-path domain differs from sender",
			email: &model.Email{
				From:       "support@example.com",
				ReturnPath: "<bounce@evil.net>",
			},
			wantTypes: []string{"sender_domain_mismatch"},
		},
		{
			name: "brand in display name without matching domain",
			email: &model.Email{
				From: "PayPal Support <service@random-host.net>",
			},
			wantTypes: []string{"display_name_spoofing"},
		},
		{
			name: "domain in display name differs from sender domain",
			email: &model.Email{
				From: "chase.com Alerts <alerts@evil.net>",
			},
			wantTypes: []string{"display_name_spoofing"},
		},
		{
			name: "free provider with digits in local part",
			email: &model.Email{
				From: "winner20319@gmail.com",
			},
			wantTypes: []string{"sender_free_email", "sender_numeric_localpart"},
		},
		{
			name: "suspicious tld and wording",
			email: &model.Email{
				From: "billing-update@promo.xyz",
			},
			wantTypes: []string{"sender_suspicious_tld", "sender_suspicious_words"},
		},
		{
			name: "aligned corporate sender",
			email: &model.Email{
				From:       "newsletter@example.com",
				ReplyTo:    "newsletter@example.com",
				ReturnPath: "newsletter@example.com",
			},
			skipTypes: []string{
				"sender_domain_mismatch", "display_name_spoofing",
				"sender_free_email", "sender_suspicious_tld",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analyzer := NewSenderAnalyzer()
			indicators, err := analyzer.Analyze(context.Background(), &AnalysisData{Email: tt.email})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			got := indicatorTypes(indicators)
			for _, want := range tt.wantTypes {
				if !got[want] {
					t.Errorf("missing indicator type %q, got %v", want, indicators)
				}
			}
			for _, skip := range tt.skipTypes {
				if got[skip] {
					t.Errorf("unexpected indicator type %q", skip)
				}
			}
		})
	}
}

func TestSenderAnalyzerTrustedDomain(t *testing.T) {
	t.Parallel()

	patterns := &config.File{TrustedDomains: []string{"gmail.com"}}
	email := &model.Email{From: "security-alert12345@gmail.com"}

	analyzer := NewSenderAnalyzer()
	indicators, err := analyzer.Analyze(context.Background(), &AnalysisData{
		Email:    email,
		Patterns: patterns,
	})
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(indicators) != 0 {
		t.Errorf("trusted domain should bypass sender checks, got %v", indicators)
	}
}

func TestExtractURLs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "single url",
			text: "click http://example.com/login now",
			want: []string{"http://example.com/login"},
		},
		{
			name: "duplicates removed in order",
			text: "https://a.com https://b.com https://a.com",
			want: []string{"https://a.com", "https://b.com"},
		},
		{
			name: "url with query string",
			text: "visit https://example.com/verify?id=12&token=ab",
			want: []string{"https://example.com/verify?id=12&token=ab"},
		},
		{
			name: "no urls",
			text: "plain text without links",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := ExtractURLs(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("ExtractURLs() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ExtractURLs()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestAssessURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		url        string
		wantRisk   model.RiskLevel
		wantSafety float64
	}{
		{
			name:       "ip hosted url",
			url:        "http://192.168.10.5/login",
			wantRisk:   model.RiskHigh,
			wantSafety: 0.2,
		},
		{
			name:       "shortened url",
			url:        "https://bit.ly/3xYz",
			wantRisk:   model.RiskMedium,
			wantSafety: 0.4,
		},
		{
			name:       "suspicious tld",
			url:        "https://secure-login.xyz/verify",
			wantRisk:   model.RiskMedium,
			wantSafety: 0.6,
		},
		{
			name:       "clean url",
			url:        "https://example.com/newsletter",
			wantRisk:   model.RiskLow,
			wantSafety: 1.0,
		},
		{
			name:       "unparseable url",
			url:        "http://%zz",
			wantRisk:   model.RiskHigh,
			wantSafety: 0.1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			record := AssessURL(tt.url)
			if record.RiskLevel != tt.wantRisk {
				t.Errorf("RiskLevel = %v, want %v", record.RiskLevel, tt.wantRisk)
			}
			if record.SafetyScore != tt.wantSafety {
				t.Errorf("SafetyScore = %v, want %v", record.SafetyScore, tt.wantSafety)
			}
		})
	}
}

func TestURLAnalyzer(t *testing.T) {
	t.Parallel()

	email := &model.Email{
		Body: "verify at http://10.0.0.1/login or https://bit.ly/x or https://deal.tk/win",
	}
	report := model.NewAnalysisReport("test")
	data := &AnalysisData{
		Email:  email,
		URLs:   ExtractURLs(email.Body),
		Report: report,
	}

	analyzer := NewURLAnalyzer()
	indicators, err := analyzer.Analyze(context.Background(), data)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	got := indicatorTypes(indicators)
	for _, want := range []string{"url_ip_address", "url_shortened", "url_suspicious_tld"} {
		if !got[want] {
			t.Errorf("missing indicator type %q", want)
		}
	}
	if len(report.ExtractedURLs) != 3 {
		t.Errorf("ExtractedURLs = %d, want 3", len(report.ExtractedURLs))
	}
}

func TestURLAnalyzerLinkTextMismatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		htmlBody string
		want     bool
	}{
		{
			name:     "anchor text names a different domain",
			htmlBody: `<html><body><a href="http://evil.net/login">www.mybank.com</a></body></html>`,
			want:     true,
		},
		{
			name:     "anchor text matches href domain",
			htmlBody: `<html><body><a href="http://www.mybank.com/login">www.mybank.com</a></body></html>`,
			want:     false,
		},
		{
			name:     "anchor text has no domain",
			htmlBody: `<html><body><a href="http://evil.net/login">click here</a></body></html>`,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			email := &model.Email{
				HTMLBody: tt.htmlBody,
				HasHTML:  true,
			}

			analyzer := NewURLAnalyzer()
			indicators, err := analyzer.Analyze(context.Background(), &AnalysisData{Email: email})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if got := indicatorTypes(indicators)["url_text_mismatch"]; got != tt.want {
				t.Errorf("url_text_mismatch = %v, want %v (indicators: %v)", got, tt.want, indicators)
			}
		})
	}
}

func TestContentAnalyzer(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		email    *model.Email
		wantType string
	}{
		{
			name:     "urgent subject",
			email:    &model.Email{Subject: "URGENT: action required"},
			wantType: "subject_urgency",
		},
		{
			name:     "urgency phrase in body",
			email:    &model.Email{Body: "You must act now or lose access."},
			wantType: "body_urgency",
		},
		{
			name:     "credential request",
			email:    &model.Email{Body: "Please confirm your password and PIN."},
			wantType: "sensitive_data_request",
		},
		{
			name:     "lottery claim",
			email:    &model.Email{Body: "Congratulations, you are our lucky winner!"},
			wantType: "suspicious_claims",
		},
		{
			name:     "template grammar",
			email:    &model.Email{Body: "Dear costumer, kindly respond."},
			wantType: "poor_grammar",
		},
		{
			name:     "account threat",
			email:    &model.Email{Body: "Your account has been suspended due to suspicious activity."},
			wantType: "threatening_language",
		},
		{
			name:     "attachment prompt",
			email:    &model.Email{Body: "See the attached invoice for details."},
			wantType: "attachment_mention",
		},
		{
			name:     "payment language",
			email:    &model.Email{Body: "A wire transfer of $500 is pending."},
			wantType: "financial_terms",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			analyzer := NewContentAnalyzer()
			indicators, err := analyzer.Analyze(context.Background(), &AnalysisData{Email: tt.email})
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}
			if !indicatorTypes(indicators)[tt.wantType] {
				t.Errorf("missing indicator type %q, got %v", tt.wantType, indicators)
			}
		})
	}
}

func TestPatternAnalyzer(t *testing.T) {
	t.Parallel()

	patterns := &config.File{
		Patterns: []config.SpecialPattern{
			{
				Name:            "fake invoice campaign",
				SubjectKeywords: []string{"invoice"},
				Domains:         []string{"evil.net"},
			},
		},
	}

	t.Run("match forces override flag", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("test")
		data := &AnalysisData{
			Email: &model.Email{
				Subject: "Your Invoice #42",
				From:    "billing@evil.net",
			},
			Patterns: patterns,
			Report:   report,
		}

		analyzer := NewPatternAnalyzer()
		indicators, err := analyzer.Analyze(context.Background(), data)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if !indicatorTypes(indicators)["special_pattern_match"] {
			t.Fatalf("expected special_pattern_match, got %v", indicators)
		}
		if !report.PatternOverride {
			t.Error("PatternOverride not set on report")
		}
		if indicators[0].Value != "fake invoice campaign" {
			t.Errorf("Value = %q, want pattern name", indicators[0].Value)
		}
	})

	t.Run("partial match does not trigger", func(t *testing.T) {
		t.Parallel()

		report := model.NewAnalysisReport("test")
		data := &AnalysisData{
			Email: &model.Email{
				Subject: "Your Invoice #42",
				From:    "billing@example.com",
			},
			Patterns: patterns,
			Report:   report,
		}

		analyzer := NewPatternAnalyzer()
		indicators, err := analyzer.Analyze(context.Background(), data)
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}
		if len(indicators) != 0 {
			t.Errorf("expected no indicators, got %v", indicators)
		}
		if report.PatternOverride {
			t.Error("PatternOverride set without full match")
		}
	})
}

func TestAnalyzerCoordinator(t *testing.T) {
	t.Parallel()

	t.Run("aggregates across analyzers", func(t *testing.T) {
		t.Parallel()

		email := &model.Email{
			From:    "PayPal Security <alert1234@mailer.xyz>",
			Subject: "Urgent: verify your account",
			Body:    "Act now and confirm your password at http://203.0.113.9/verify",
		}
		report := model.NewAnalysisReport("test")

		analyzer := NewAnalyzer()
		indicators, err := analyzer.Analyze(context.Background(), &AnalysisData{
			Email:  email,
			Report: report,
		})
		if err != nil {
			t.Fatalf("Analyze() error = %v", err)
		}

		got := indicatorTypes(indicators)
		for _, want := range []string{
			"display_name_spoofing", "subject_urgency",
			"sensitive_data_request", "url_ip_address",
		} {
			if !got[want] {
				t.Errorf("missing indicator type %q", want)
			}
		}
	})

	t.Run("cancelled context stops analysis", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		analyzer := NewAnalyzer()
		_, err := analyzer.Analyze(ctx, &AnalysisData{Email: &model.Email{}})
		if err == nil {
			t.Error("expected context error")
		}
	})
}

func TestDeduplicateIndicators(t *testing.T) {
	t.Parallel()

	indicators := []model.Indicator{
		{Type: "url_shortened", Value: "https://bit.ly/x", Severity: model.SeverityMedium},
		{Type: "url_shortened", Value: "https://bit.ly/x", Severity: model.SeverityHigh},
		{Type: "url_shortened", Value: "https://bit.ly/y", Severity: model.SeverityMedium},
	}

	result := deduplicateIndicators(indicators)
	if len(result) != 2 {
		t.Fatalf("len = %d, want 2", len(result))
	}
	if result[0].Severity != model.SeverityHigh {
		t.Errorf("duplicate should keep highest severity, got %v", result[0].Severity)
	}
}

func TestShortenedURLList(t *testing.T) {
	t.Parallel()

	for _, domain := range shortenerDomains {
		if strings.Contains(domain, "://") {
			t.Errorf("shortener entry %q should be a bare domain", domain)
		}
		if !isShortened(domain) {
			t.Errorf("isShortened(%q) = false", domain)
		}
	}
}
