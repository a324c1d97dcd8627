package model

// Severity represents the risk level of a suspicious indicator.
// This allows categorizing indicators by how strongly they suggest phishing.
//
// Design decision: We use iota-based constants rather than string constants
// for efficiency in comparisons and sorting. The String() method provides
// human-readable output when needed.
type Severity int

const (
	// SeverityInfo indicates informational indicators with little weight on their own.
	// Examples: poor grammar, mention of attachments, financial vocabulary.
	SeverityInfo Severity = iota

	// SeverityLow indicates minor issues with limited impact.
	// Examples: free email provider senders, generic marketing language.
	SeverityLow

	// SeverityMedium indicates moderate issues that warrant attention.
	// Examples: urgency language, threatening language, suspicious TLDs.
	SeverityMedium

	// SeverityHigh indicates serious issues strongly associated with phishing.
	// Examples: suspicious sender words, lottery/prize claims, known-bad URL patterns.
	SeverityHigh

	// SeverityCritical indicates issues that on their own mark a message as phishing.
	// Examples: sender domain mismatch, display-name spoofing, IP-based URLs,
	// links whose visible text differs from their destination.
	SeverityCritical
)

// String returns a human-readable representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "INFO"
	case SeverityLow:
		return "LOW"
	case SeverityMedium:
		return "MEDIUM"
	case SeverityHigh:
		return "HIGH"
	case SeverityCritical:
		return "CRITICAL"
	default:
		return "UNKNOWN"
	}
}

// IndicatorInfo contains metadata about an indicator type including severity,
// impact description, and remediation recommendation.
type IndicatorInfo struct {
	Severity       Severity
	Impact         string
	Recommendation string
}

// indicatorInfoMapping maps indicator types to their metadata.
// This centralized mapping ensures consistent risk assessment across the application.
//
// Design decision: We use a map rather than embedding severity in each indicator
// because:
// 1. It allows updating risk assessments without modifying type definitions
// 2. It provides a single source of truth for risk levels
// 3. It makes it easy to generate severity documentation
var indicatorInfoMapping = map[string]IndicatorInfo{
	// CRITICAL - Strong phishing markers
	"sender_domain_mismatch": {
		Severity:       SeverityCritical,
		Impact:         "The email's From, Reply-To, or Return-Path addresses use different domains, which is a common phishing tactic.",
		Recommendation: "Do not reply. Verify the sender through a known contact channel before taking any action.",
	},
	"display_name_spoofing": {
		Severity:       SeverityCritical,
		Impact:         "The sender's display name tries to impersonate a trusted organization that doesn't match the actual email domain.",
		Recommendation: "Check the real sender address, not the display name, before trusting the message.",
	},
	"url_shortened": {
		Severity:       SeverityCritical,
		Impact:         "The email contains shortened URLs that hide the actual destination, a common phishing tactic.",
		Recommendation: "Never click shortened links in unsolicited email. Expand the URL first or navigate to the site manually.",
	},
	"url_ip_address": {
		Severity:       SeverityCritical,
		Impact:         "The email contains links with raw IP addresses instead of domain names, which is highly suspicious.",
		Recommendation: "Do not follow IP-based links. Legitimate organizations use their own domain names.",
	},
	"url_text_mismatch": {
		Severity:       SeverityCritical,
		Impact:         "The email contains links where the visible text differs from the actual URL destination.",
		Recommendation: "Hover over links to inspect the real destination before clicking.",
	},
	"sensitive_data_request": {
		Severity:       SeverityCritical,
		Impact:         "The email asks for passwords, account details, or other sensitive personal information.",
		Recommendation: "Legitimate organizations never request credentials by email. Do not respond with any personal data.",
	},
	"special_pattern_match": {
		Severity:       SeverityCritical,
		Impact:         "The email matches a known phishing campaign pattern from the local pattern database.",
		Recommendation: "Treat the message as confirmed phishing and report it to your security team.",
	},

	// HIGH - Significant phishing risk
	"sender_suspicious_words": {
		Severity:       SeverityHigh,
		Impact:         "The sender's name contains terms commonly used in phishing attempts, like 'security', 'support', or 'admin'.",
		Recommendation: "Verify the sender's identity through official channels before trusting the message.",
	},
	"suspicious_claims": {
		Severity:       SeverityHigh,
		Impact:         "The email contains claims about prizes, rewards, or offers that are likely fraudulent.",
		Recommendation: "Unsolicited prize notifications are almost always scams. Delete the message.",
	},
	"url_suspicious_tld": {
		Severity:       SeverityHigh,
		Impact:         "The email contains URLs with suspicious or uncommon top-level domains often used in phishing.",
		Recommendation: "Be wary of links to cheap or disposable TLDs like .xyz, .top, or .tk.",
	},
	"sender_suspicious_tld": {
		Severity:       SeverityHigh,
		Impact:         "The sender's domain uses a top-level domain frequently abused by phishing campaigns.",
		Recommendation: "Cross-check the sender against previous legitimate correspondence.",
	},

	// MEDIUM - Moderate phishing risk
	"subject_urgency": {
		Severity:       SeverityMedium,
		Impact:         "The subject line creates a false sense of urgency to pressure you into acting without thinking.",
		Recommendation: "Slow down. Urgency is a manipulation tactic; verify the claim independently.",
	},
	"body_urgency": {
		Severity:       SeverityMedium,
		Impact:         "The email body creates a false sense of urgency to pressure you into taking immediate action.",
		Recommendation: "Legitimate deadlines are communicated through official channels, not threats in email.",
	},
	"threatening_language": {
		Severity:       SeverityMedium,
		Impact:         "The email threatens negative consequences (account suspension, termination) if you don't act immediately.",
		Recommendation: "Contact the organization directly using a known phone number or website to verify.",
	},
	"sender_numeric_localpart": {
		Severity:       SeverityMedium,
		Impact:         "The sender address contains long digit runs, typical of bulk-generated throwaway accounts.",
		Recommendation: "Treat mail from machine-generated addresses with additional suspicion.",
	},

	// LOW - Minor phishing risk
	"sender_free_email": {
		Severity:       SeverityLow,
		Impact:         "The sender uses a free email provider while claiming to represent an organization.",
		Recommendation: "Businesses rarely send official mail from free providers. Verify via the organization's domain.",
	},

	// INFO - Context only
	"poor_grammar": {
		Severity:       SeverityInfo,
		Impact:         "The email contains grammatical errors or unusual phrasing often seen in phishing attempts.",
		Recommendation: "Grammar alone is weak evidence; weigh it together with other indicators.",
	},
	"attachment_mention": {
		Severity:       SeverityInfo,
		Impact:         "The email references attachments or documents, a common lure for malware delivery.",
		Recommendation: "Do not open unexpected attachments, even from known senders.",
	},
	"financial_terms": {
		Severity:       SeverityInfo,
		Impact:         "The email contains financial vocabulary (payments, transfers, refunds) used in many scams.",
		Recommendation: "Confirm financial requests out-of-band before acting on them.",
	},
}

// GetSeverity returns the severity level for an indicator type.
// Returns SeverityInfo if the indicator type is not in the mapping.
func GetSeverity(indicatorType string) Severity {
	if info, ok := indicatorInfoMapping[indicatorType]; ok {
		return info.Severity
	}
	return SeverityInfo
}

// GetIndicatorInfo returns the full indicator information for an indicator type.
// Returns a default IndicatorInfo with SeverityInfo if the type is not in the mapping.
func GetIndicatorInfo(indicatorType string) IndicatorInfo {
	if info, ok := indicatorInfoMapping[indicatorType]; ok {
		return info
	}
	return IndicatorInfo{
		Severity:       SeverityInfo,
		Impact:         "Unknown indicator type. Review manually.",
		Recommendation: "Investigate the indicator and assess risk.",
	}
}
