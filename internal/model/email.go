package model

// Email represents a parsed email message ready for analysis.
// It is produced by the mail package from either a full RFC 5322 message
// or from raw pasted text with best-effort header extraction.
//
// Design decision: We keep both the structured header fields and the flat
// Headers map because:
//  1. The sender heuristics need From/Reply-To/Return-Path specifically
//  2. Special pattern matching and reporting want access to everything
//  3. Raw pasted text may only yield a subset of headers
type Email struct {
	// From is the raw From header value, including any display name.
	From string `json:"from,omitempty"`

	// To is the raw To header value.
	To string `json:"to,omitempty"`

	// Subject is the message subject.
	Subject string `json:"subject,omitempty"`

	// Date is the raw Date header value.
	Date string `json:"date,omitempty"`

	// ReplyTo is the raw Reply-To header value.
	ReplyTo string `json:"reply_to,omitempty"`

	// ReturnPath is the raw Return-Path header value.
	ReturnPath string `json:"return_path,omitempty"`

	// Headers contains all message headers for comprehensive analysis.
	Headers map[string]string `json:"headers,omitempty"`

	// Body is the plain-text body. When only HTML was present, this holds
	// the tag-stripped text extracted from the HTML part.
	Body string `json:"body,omitempty"`

	// HTMLBody is the raw HTML body when the message carried one.
	// URL heuristics inspect it for href/anchor-text mismatches.
	HTMLBody string `json:"-"`

	// HasHTML is true if the message contained an HTML part.
	HasHTML bool `json:"has_html"`

	// HasAttachments is true if any MIME part is an attachment.
	HasAttachments bool `json:"has_attachments"`

	// AttachmentCount is the number of attachment parts.
	AttachmentCount int `json:"attachment_count"`

	// Raw is the original input text. Feature extraction runs over a
	// combination of body, subject, and From, but the raw text is kept
	// for hashing and special pattern matching.
	Raw string `json:"-"`
}

// AnalysisText returns the text the classifier's feature extraction runs over.
// Headers come first: the sender-term feature only scans the head of the text,
// so From and Subject must appear there regardless of body length.
func (e *Email) AnalysisText() string {
	return e.From + " " + e.Subject + " " + e.Body + " "
}
