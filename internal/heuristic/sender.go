package heuristic

import (
	"context"
	"regexp"
	"strings"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// SenderAnalyzer detects suspicious traits in message headers.
// Forged or throwaway sender addresses are the strongest phishing
// signals because legitimate bulk senders keep From, Reply-To, and
// Return-Path aligned on the same domain.
//
// Design decision: We implement a separate analyzer for sender checks
// rather than combining them with content checks because:
//  1. Header parsing has unique regex requirements
//  2. Sender traits have special handling needs (domain comparison, brand lists)
//  3. Severity varies based on which header combination is inconsistent
type SenderAnalyzer struct {
	// emailRegex matches email addresses in header text.
	emailRegex *regexp.Regexp

	// digitsRegex matches runs of three or more digits in a local part.
	digitsRegex *regexp.Regexp

	// domainRegex matches domain-like tokens inside a display name.
	domainRegex *regexp.Regexp

	// brands are company names commonly impersonated in display names.
	brands []string
}

// freeProviders are email domains anyone can register on. A free
// provider claiming to be a corporate sender is noteworthy but common,
// so it only rates as a low-severity indicator on its own.
var freeProviders = []string{
	"gmail.com", "yahoo.com", "hotmail.com", "aol.com", "outlook.com",
	"mail.com", "zoho.com", "protonmail.com", "icloud.com", "yandex.com",
	"gmx.com", "tutanota.com",
}

// senderSuspiciousTLDs are top-level domains with near-zero legitimate
// email traffic and heavy abuse history.
var senderSuspiciousTLDs = []string{
	"xyz", "top", "club", "online", "site", "cyou", "icu",
	"work", "live", "click", "link", "bid", "party",
}

// senderSuspiciousWords are terms phishers put in sender addresses to
// look official ("security-team@...", "billing-update@...").
var senderSuspiciousWords = []string{
	"security", "verify", "update", "support", "team", "alert",
	"notification", "account", "confirm", "secure", "service",
	"admin", "billing", "payment", "official", "helpdesk",
}

// impersonatedBrands are companies that phishing campaigns most often
// name in the display name while sending from an unrelated domain.
var impersonatedBrands = []string{
	"paypal", "amazon", "apple", "microsoft", "google", "facebook",
	"netflix", "bank", "chase", "wells fargo", "citibank", "amex",
	"american express",
}

// NewSenderAnalyzer creates a new SenderAnalyzer. Extra brand names can
// be supplied to extend the display-name spoofing check.
func NewSenderAnalyzer(extraBrands ...string) *SenderAnalyzer {
	brands := make([]string, 0, len(impersonatedBrands)+len(extraBrands))
	brands = append(brands, impersonatedBrands...)
	for _, b := range extraBrands {
		brands = append(brands, strings.ToLower(b))
	}

	return &SenderAnalyzer{
		emailRegex:  regexp.MustCompile(`[\w.\-]+@[\w.\-]+\.\w+`),
		digitsRegex: regexp.MustCompile(`\d{3,}`),
		domainRegex: regexp.MustCompile(`\b[a-z0-9-]+\.[a-z0-9-]+(?:\.[a-z0-9-]+)*\b`),
		brands:      brands,
	}
}

// Name returns the analyzer name.
func (a *SenderAnalyzer) Name() string {
	return "sender"
}

// Category returns the analyzer category.
func (a *SenderAnalyzer) Category() string {
	return CategorySender
}

// Analyze inspects the From, Reply-To, and Return-Path headers.
func (a *SenderAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Indicator, error) {
	indicators := make([]model.Indicator, 0)
	if data.Email == nil {
		return indicators, nil
	}

	email := data.Email
	fromAddr := a.extractAddress(email.From)
	replyAddr := a.extractAddress(email.ReplyTo)
	returnAddr := a.extractAddress(email.ReturnPath)
	fromDomain := addressDomain(fromAddr)

	// Trusted domains bypass sender checks entirely. The content and
	// URL analyzers still run so a compromised legitimate sender is
	// not given a free pass on the message itself.
	if data.Patterns.IsTrustedDomain(fromDomain) {
		return indicators, nil
	}

	if mismatched, other := a.domainMismatch(fromDomain, replyAddr, returnAddr); mismatched {
		indicators = append(indicators, model.Indicator{
			Type:     "sender_domain_mismatch",
			Value:    fromDomain + " vs " + other,
			Location: "headers",
		})
	}

	if spoofed, brand := a.displayNameSpoofing(email.From, fromAddr, fromDomain); spoofed {
		indicators = append(indicators, model.Indicator{
			Type:     "display_name_spoofing",
			Value:    brand,
			Location: "From header",
		})
	}

	if a.digitsRegex.MatchString(localPart(fromAddr)) {
		indicators = append(indicators, model.Indicator{
			Type:     "sender_numeric_localpart",
			Value:    fromAddr,
			Location: "From header",
		})
	}

	for _, provider := range freeProviders {
		if fromDomain == provider {
			indicators = append(indicators, model.Indicator{
				Type:     "sender_free_email",
				Value:    fromDomain,
				Location: "From header",
			})
			break
		}
	}

	if tld := domainTLD(fromDomain); tld != "" {
		for _, suspicious := range senderSuspiciousTLDs {
			if tld == suspicious {
				indicators = append(indicators, model.Indicator{
					Type:     "sender_suspicious_tld",
					Value:    "." + tld,
					Location: "From header",
				})
				break
			}
		}
	}

	lowerFrom := strings.ToLower(email.From)
	for _, word := range senderSuspiciousWords {
		if strings.Contains(lowerFrom, word) {
			indicators = append(indicators, model.Indicator{
				Type:     "sender_suspicious_words",
				Value:    word,
				Location: "From header",
			})
			break
		}
	}

	return indicators, nil
}

// extractAddress pulls the bare email address out of a header value.
func (a *SenderAnalyzer) extractAddress(header string) string {
	return strings.ToLower(a.emailRegex.FindString(header))
}

// domainMismatch reports whether Reply-To or Return-Path resolves to a
// different domain than From. It returns the first mismatching domain.
func (a *SenderAnalyzer) domainMismatch(fromDomain, replyAddr, returnAddr string) (bool, string) {
	if fromDomain == "" {
		return false, ""
	}
	if d := addressDomain(replyAddr); d != "" && d != fromDomain {
		return true, d
	}
	if d := addressDomain(returnAddr); d != "" && d != fromDomain {
		return true, d
	}
	return false, ""
}

// displayNameSpoofing reports whether the display name claims a
// different domain or a known brand not backed by the sender domain.
func (a *SenderAnalyzer) displayNameSpoofing(fromHeader, fromAddr, fromDomain string) (bool, string) {
	display := displayName(fromHeader)
	if display == "" || fromAddr == "" {
		return false, ""
	}
	display = strings.ToLower(display)

	// Domain-shaped tokens in the display name that do not match the
	// actual sender domain: "bank.com Support <x@evil.net>".
	for _, domain := range a.domainRegex.FindAllString(display, -1) {
		if len(strings.Split(domain, ".")) < 2 || domain == fromDomain {
			continue
		}
		if !strings.Contains(fromDomain, domain) && !strings.Contains(domain, fromDomain) {
			return true, domain
		}
	}

	for _, brand := range a.brands {
		if strings.Contains(display, brand) && !strings.Contains(fromDomain, brand) {
			return true, brand
		}
	}

	return false, ""
}

// displayName extracts the display name from "Name <addr>" form.
func displayName(fromHeader string) string {
	idx := strings.Index(fromHeader, "<")
	if idx <= 0 {
		return ""
	}
	return strings.TrimSpace(fromHeader[:idx])
}

// addressDomain returns the lowercased domain of an email address.
func addressDomain(addr string) string {
	idx := strings.LastIndex(addr, "@")
	if idx < 0 || idx == len(addr)-1 {
		return ""
	}
	return strings.ToLower(addr[idx+1:])
}

// localPart returns the part of an address before the @.
func localPart(addr string) string {
	idx := strings.LastIndex(addr, "@")
	if idx < 0 {
		return addr
	}
	return addr[:idx]
}

// domainTLD returns the last label of a domain.
func domainTLD(domain string) string {
	idx := strings.LastIndex(domain, ".")
	if idx < 0 || idx == len(domain)-1 {
		return ""
	}
	return strings.ToLower(domain[idx+1:])
}
