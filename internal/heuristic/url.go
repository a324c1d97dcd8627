package heuristic

import (
	"context"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/Sharawey74/PhishSniffer/internal/mail"
	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// urlRegex matches http/https URLs in plain text. Percent-encoded
// octets are allowed in the host portion so obfuscated links are
// still captured.
var urlRegex = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+[/\w.\-]*(?:\?[/\w.\-=%&+]*)?`)

// ipURLRegex matches URLs whose host is a literal IPv4 address.
var ipURLRegex = regexp.MustCompile(`^https?://\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)

// shortenerDomains are link-shortening services. Shorteners hide the
// real destination, which legitimate transactional mail rarely needs.
var shortenerDomains = []string{
	"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly",
	"tiny.cc", "is.gd", "buff.ly", "rebrand.ly", "cutt.ly",
	"shorturl.at", "clck.ru", "bitly.com",
}

// urlSuspiciousTLDs extends the sender TLD list with free registries
// (.tk, .ml, ...) that host a disproportionate share of phishing pages.
var urlSuspiciousTLDs = []string{
	"xyz", "top", "club", "online", "site", "cyou", "icu",
	"work", "live", "click", "link", "bid", "party", "tk",
	"ml", "ga", "cf", "gq", "pw",
}

// URLAnalyzer inspects the links extracted from a message.
//
// Design decision: URL checks are separate from content checks because:
//  1. They operate on parsed URLs, not raw text
//  2. Each URL gets an individual risk assessment for the URL store
//  3. The link text/destination comparison needs the HTML body,
//     which text checks never touch
type URLAnalyzer struct{}

// NewURLAnalyzer creates a new URLAnalyzer.
func NewURLAnalyzer() *URLAnalyzer {
	return &URLAnalyzer{}
}

// Name returns the analyzer name.
func (a *URLAnalyzer) Name() string {
	return "url"
}

// Category returns the analyzer category.
func (a *URLAnalyzer) Category() string {
	return CategoryURL
}

// Analyze assesses every extracted URL and checks link text mismatches.
func (a *URLAnalyzer) Analyze(ctx context.Context, data *AnalysisData) ([]model.Indicator, error) {
	indicators := make([]model.Indicator, 0)
	if data.Email == nil {
		return indicators, nil
	}

	for _, raw := range data.URLs {
		select {
		case <-ctx.Done():
			return indicators, ctx.Err()
		default:
		}

		record := AssessURL(raw)
		record.Source = "email"
		if data.Report != nil {
			data.Report.AddURL(record)
		}

		switch {
		case ipURLRegex.MatchString(raw):
			indicators = append(indicators, model.Indicator{
				Type:     "url_ip_address",
				Value:    raw,
				Location: "body",
			})
		case isShortened(record.Domain):
			indicators = append(indicators, model.Indicator{
				Type:     "url_shortened",
				Value:    raw,
				Location: "body",
			})
		case hasSuspiciousURLTLD(record.Domain):
			indicators = append(indicators, model.Indicator{
				Type:     "url_suspicious_tld",
				Value:    raw,
				Location: "body",
			})
		}
	}

	if mismatch, value := a.linkTextMismatch(data.Email); mismatch {
		indicators = append(indicators, model.Indicator{
			Type:     "url_text_mismatch",
			Value:    value,
			Location: "body",
		})
	}

	return indicators, nil
}

// linkTextMismatch reports whether any anchor's visible text names a
// different domain than its href destination.
func (a *URLAnalyzer) linkTextMismatch(email *model.Email) (bool, string) {
	source := email.Body
	if email.HasHTML {
		source = email.HTMLBody
	}
	if !strings.Contains(source, "<a") && !strings.Contains(source, "<A") {
		return false, ""
	}

	anchors := mail.ExtractAnchors(source)

	domainPattern := regexp.MustCompile(`[\w-]+\.[\w-]+(?:\.[\w-]+)*`)
	for _, anchor := range anchors {
		hrefDomain := urlDomain(anchor.Href)
		if hrefDomain == "" {
			continue
		}
		for _, textDomain := range domainPattern.FindAllString(strings.ToLower(anchor.Text), -1) {
			if !strings.Contains(textDomain, ".") || textDomain == hrefDomain {
				continue
			}
			return true, textDomain + " -> " + hrefDomain
		}
	}
	return false, ""
}

// ExtractURLs finds all http/https URLs in text, deduplicated in order
// of first appearance.
func ExtractURLs(text string) []string {
	matches := urlRegex.FindAllString(text, -1)
	if len(matches) == 0 {
		return nil
	}

	seen := make(map[string]bool, len(matches))
	urls := make([]string, 0, len(matches))
	for _, m := range matches {
		if seen[m] {
			continue
		}
		seen[m] = true
		urls = append(urls, m)
	}
	return urls
}

// AssessURL produces a standalone risk assessment for a single URL.
// It is used both during email analysis and by the URL check endpoint.
//
// Risk tiers:
//   - IP-hosted or unparseable URLs are high risk
//   - shorteners and suspicious TLDs are medium risk
//   - everything else is low risk with full safety score
func AssessURL(raw string) model.URLRecord {
	record := model.URLRecord{
		URL:       raw,
		DateAdded: time.Now().UTC(),
		RiskLevel: model.RiskLow,
	}

	parsed, err := url.Parse(raw)
	if err != nil || parsed.Host == "" {
		record.RiskLevel = model.RiskHigh
		record.SafetyScore = 0.1
		record.RiskFactors = append(record.RiskFactors, "URL could not be parsed")
		return record
	}
	record.Domain = strings.ToLower(parsed.Hostname())

	switch {
	case ipURLRegex.MatchString(raw):
		record.RiskLevel = model.RiskHigh
		record.SafetyScore = 0.2
		record.RiskFactors = append(record.RiskFactors, "URL uses a raw IP address instead of a domain")
	case isShortened(record.Domain):
		record.RiskLevel = model.RiskMedium
		record.SafetyScore = 0.4
		record.RiskFactors = append(record.RiskFactors, "URL uses a link-shortening service")
	case hasSuspiciousURLTLD(record.Domain):
		record.RiskLevel = model.RiskMedium
		record.SafetyScore = 0.6
		record.RiskFactors = append(record.RiskFactors, "URL uses a top-level domain common in phishing")
	default:
		record.SafetyScore = 1.0
	}

	return record
}

// isShortened reports whether domain belongs to a shortening service.
func isShortened(domain string) bool {
	for _, s := range shortenerDomains {
		if domain == s {
			return true
		}
	}
	return false
}

// hasSuspiciousURLTLD reports whether domain ends in an abused TLD.
func hasSuspiciousURLTLD(domain string) bool {
	tld := domainTLD(domain)
	if tld == "" {
		return false
	}
	for _, s := range urlSuspiciousTLDs {
		if tld == s {
			return true
		}
	}
	return false
}

// urlDomain returns the lowercased host of a URL, or "" if unparseable.
func urlDomain(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.ToLower(parsed.Hostname())
}
