package heuristic

import (
	"context"
	"strings"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// subjectUrgencyWords are terms that pressure the reader from the
// subject line alone.
var subjectUrgencyWords = []string{
	"urgent", "alert", "verify", "update", "security", "account",
	"suspended", "unusual", "confirm", "important",
	"password", "login", "immediately", "attention", "required",
}

// bodyUrgencyPhrases are time-pressure phrases in the message body.
var bodyUrgencyPhrases = []string{
	"act now", "urgent action", "immediate action", "expires soon",
	"limited time", "24 hours", "immediately", "as soon as possible",
	"failure to comply", "account will be", "before it's too late",
	"right away", "time sensitive",
}

// sensitiveRequests are asks for credentials or payment data. No
// legitimate organization requests these over email.
var sensitiveRequests = []string{
	"password", "credit card", "account number", "credentials",
	"social security", "ssn", "banking details", "personal details",
	"pin", "security question", "mother's maiden name", "login",
	"username and password",
}

// suspiciousClaims are prize/lottery/inheritance hooks.
var suspiciousClaims = []string{
	"won", "winner", "lottery", "selected", "prize", "million",
	"reward", "inheritance", "claim your", "you have been chosen",
	"congratulations", "exclusive offer", "free gift", "jackpot",
}

// grammarIndicators are awkward phrasings typical of template phishing
// ("dear costumer", "verify you account").
var grammarIndicators = []string{
	"kindly", "dear valued", "dear costumer", "dear customer",
	"your account will closed", "verify you account", "your are",
	"we detected unusual", "we detected suspicious",
}

// threateningPhrases warn of account loss or legal consequences.
var threateningPhrases = []string{
	"suspended", "terminated", "closed", "deleted", "unauthorized",
	"suspicious activity", "unusual activity", "breach",
	"compromised", "locked", "restricted", "limitation",
}

// attachmentWords suggest the reader should open a document.
var attachmentWords = []string{
	"attach", "document", "file", "pdf", "doc", "invoice",
	"receipt", "statement",
}

// financialTerms reference money or payment flows.
var financialTerms = []string{
	"$", "dollar", "payment", "transfer", "transaction", "wire",
	"money", "credit", "debit", "cash", "fund", "tax", "refund",
	"gift card",
}

// ContentAnalyzer scans subject and body text for phishing language.
//
// Design decision: Content checks use flat substring lists rather than
// tokenization or stemming because:
//  1. The phrase lists match what the classifier was fitted against
//  2. Substring matching catches obfuscated variants ("verify-now")
//  3. Phishing text is short; per-message cost is negligible
type ContentAnalyzer struct{}

// NewContentAnalyzer creates a new ContentAnalyzer.
func NewContentAnalyzer() *ContentAnalyzer {
	return &ContentAnalyzer{}
}

// Name returns the analyzer name.
func (a *ContentAnalyzer) Name() string {
	return "content"
}

// Category returns the analyzer category.
func (a *ContentAnalyzer) Category() string {
	return CategoryContent
}

// Analyze scans the subject and body for suspicious language.
func (a *ContentAnalyzer) Analyze(_ context.Context, data *AnalysisData) ([]model.Indicator, error) {
	indicators := make([]model.Indicator, 0)
	if data.Email == nil {
		return indicators, nil
	}

	subject := strings.ToLower(data.Email.Subject)
	body := strings.ToLower(data.Email.Body)

	checks := []struct {
		indicatorType string
		text          string
		location      string
		phrases       []string
	}{
		{"subject_urgency", subject, "subject", subjectUrgencyWords},
		{"body_urgency", body, "body", bodyUrgencyPhrases},
		{"sensitive_data_request", body, "body", sensitiveRequests},
		{"suspicious_claims", body, "body", suspiciousClaims},
		{"poor_grammar", body, "body", grammarIndicators},
		{"threatening_language", body, "body", threateningPhrases},
		{"attachment_mention", body, "body", attachmentWords},
		{"financial_terms", body, "body", financialTerms},
	}

	for _, check := range checks {
		if phrase, ok := firstPhrase(check.text, check.phrases); ok {
			indicators = append(indicators, model.Indicator{
				Type:     check.indicatorType,
				Value:    phrase,
				Location: check.location,
			})
		}
	}

	return indicators, nil
}

// firstPhrase returns the first phrase found in text.
func firstPhrase(text string, phrases []string) (string, bool) {
	for _, phrase := range phrases {
		if strings.Contains(text, phrase) {
			return phrase, true
		}
	}
	return "", false
}
