package config

import "strings"

// SpecialPattern describes one known phishing campaign.
// When a message matches a pattern, the verdict is forced to phishing
// regardless of the model output.
//
// Matching semantics: every NON-EMPTY group must match (AND across groups),
// and within a group any single entry matching is enough (OR within a group).
// An empty group is ignored. This mirrors how the original pattern file
// was evaluated, so existing pattern sets keep their meaning.
type SpecialPattern struct {
	// Name identifies the pattern in reports and logs.
	Name string `yaml:"name,omitempty"`

	// SubjectKeywords are substrings matched case-insensitively against
	// the message subject.
	SubjectKeywords []string `yaml:"subjectKeywords,omitempty"`

	// Domains are substrings matched case-insensitively against the From
	// header and the message body.
	Domains []string `yaml:"domains,omitempty"`

	// URLs are substrings matched case-insensitively against every URL
	// extracted from the message.
	URLs []string `yaml:"urls,omitempty"`
}

// Matches reports whether the pattern matches the given message fields.
// subject, from, and body must already be lowercased by the caller;
// extracted URLs are lowercased here because they come from the extractor
// in original form.
func (p *SpecialPattern) Matches(subject, from, body string, urls []string) bool {
	if len(p.SubjectKeywords) == 0 && len(p.Domains) == 0 && len(p.URLs) == 0 {
		// A pattern with no groups would match everything; treat it as inert.
		return false
	}

	if len(p.SubjectKeywords) > 0 {
		if !anySubstring(subject, p.SubjectKeywords) {
			return false
		}
	}

	if len(p.Domains) > 0 {
		matched := false
		for _, domain := range p.Domains {
			d := strings.ToLower(domain)
			if strings.Contains(from, d) || strings.Contains(body, d) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	if len(p.URLs) > 0 {
		if len(urls) == 0 {
			return false
		}
		matched := false
		for _, patternURL := range p.URLs {
			pu := strings.ToLower(patternURL)
			for _, u := range urls {
				if strings.Contains(strings.ToLower(u), pu) {
					matched = true
					break
				}
			}
			if matched {
				break
			}
		}
		if !matched {
			return false
		}
	}

	return true
}

// anySubstring reports whether any needle appears in haystack.
// Needles are lowercased before comparison.
func anySubstring(haystack string, needles []string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, strings.ToLower(needle)) {
			return true
		}
	}
	return false
}

// File represents the structure of the .phishsniffer configuration file.
type File struct {
	// Patterns are special known-phishing patterns that override the model.
	Patterns []SpecialPattern `yaml:"patterns,omitempty"`

	// TrustedDomains are sender domains the user considers legitimate.
	// Heuristics use them to suppress free-email and TLD warnings for
	// known correspondents.
	TrustedDomains []string `yaml:"trustedDomains,omitempty"`
}

// IsTrustedDomain reports whether the given domain is in the trusted list.
// Comparison is case-insensitive.
func (f *File) IsTrustedDomain(domain string) bool {
	if f == nil {
		return false
	}
	domain = strings.ToLower(domain)
	for _, trusted := range f.TrustedDomains {
		if strings.ToLower(trusted) == domain {
			return true
		}
	}
	return false
}

// MatchPattern returns the first pattern matching the message fields,
// or nil if none match. subject, from, and body are lowercased internally.
func (f *File) MatchPattern(subject, from, body string, urls []string) *SpecialPattern {
	if f == nil {
		return nil
	}

	subject = strings.ToLower(subject)
	from = strings.ToLower(from)
	body = strings.ToLower(body)

	for i := range f.Patterns {
		if f.Patterns[i].Matches(subject, from, body, urls) {
			return &f.Patterns[i]
		}
	}
	return nil
}
