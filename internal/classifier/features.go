package classifier

import (
	"regexp"
	"strings"
)

// FeatureCount is the width of the feature vector the models expect.
const FeatureCount = 10

// FeatureNames describes each position in the feature vector, in order.
var FeatureNames = [FeatureCount]string{
	"suspicious_sender",
	"contains_urls",
	"shortened_urls",
	"ip_urls",
	"urgency_words",
	"sensitive_requests",
	"attachment_mentions",
	"financial_terms",
	"threatening_language",
	"suspicious_offers",
}

var (
	featureURLRegex   = regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`)
	featureIPURLRegex = regexp.MustCompile(`https?://\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}`)
	featureEmailRegex = regexp.MustCompile(`[\w.\-]+@[\w.\-]+`)
)

// Keyword groups behind each feature dimension. The exact terms and
// weights must stay aligned with the corpus the models were fitted on,
// so changes here require refitting every stored model.
var (
	featureSuspiciousSenders = []string{
		"paypal", "bank", "account", "security", "update", "verify", "amazon",
	}
	featureShortDomains = []string{
		"bit.ly", "tinyurl.com", "goo.gl", "t.co", "ow.ly", "is.gd",
	}
	featureUrgencyWords = []string{
		"urgent", "immediately", "alert", "verify", "suspend", "restrict",
		"limited", "expires", "validate", "confirm", "act now", "before",
		"offer expires",
	}
	featureSensitiveRequests = []string{
		"password", "credit card", "ssn", "social security", "credentials",
		"login", "username", "pin", "bank account", "billing",
	}
	featureAttachmentWords = []string{
		"attach", "document", "file", "pdf", "doc", "invoice", "receipt",
		"statement",
	}
	featureMoneyTerms = []string{
		"$", "dollar", "payment", "transfer", "transaction", "wire", "money",
		"credit", "debit", "cash", "fund", "tax", "refund", "gift card",
	}
	featureThreatTerms = []string{
		"suspended", "terminated", "unauthorized", "closed", "limited",
		"suspicious activity", "unusual", "breach", "compromised", "fraud",
	}
	featureOfferTerms = []string{
		"won", "winner", "prize", "million", "free", "discount", "offer",
		"reward", "gift", "claim", "congratulations", "selected",
		"amazon gift card",
	}
)

// ExtractFeatures converts email text into the weighted feature vector
// the models were trained on. Critical phishing markers (shorteners,
// IP URLs, sensitive-data requests, prize offers) carry extra weight.
func ExtractFeatures(text string) []float64 {
	features := make([]float64, FeatureCount)
	text = strings.ToLower(text)

	// Sender terms are only meaningful near the top of the message,
	// where the headers and salutation live.
	head := text
	if len(head) > 500 {
		head = head[:500]
	}
	features[0] = boolFeature(containsAny(head, featureSuspiciousSenders))

	features[1] = boolFeature(featureURLRegex.MatchString(text))
	features[2] = boolFeature(containsAny(text, featureShortDomains)) * 2
	features[3] = boolFeature(featureIPURLRegex.MatchString(text)) * 2
	features[4] = boolFeature(containsAny(text, featureUrgencyWords))
	features[5] = boolFeature(containsAny(text, featureSensitiveRequests)) * 1.5
	features[6] = boolFeature(containsAny(text, featureAttachmentWords))
	features[7] = boolFeature(containsAny(text, featureMoneyTerms))
	features[8] = boolFeature(containsAny(text, featureThreatTerms))
	features[9] = boolFeature(containsAny(text, featureOfferTerms)) * 2

	// Multiple distinct domains across the addresses in the text is a
	// strong forgery signal, promoted onto the sender dimension.
	if strings.Contains(text, "@") {
		domains := make(map[string]bool)
		for _, addr := range featureEmailRegex.FindAllString(text, -1) {
			idx := strings.LastIndex(addr, "@")
			if idx < 0 || idx == len(addr)-1 {
				continue
			}
			domains[strings.ToLower(addr[idx+1:])] = true
		}
		if len(domains) > 1 {
			features[0] = 2
		}
	}

	return features
}

func boolFeature(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

func containsAny(text string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}
