package mail

import (
	"bytes"
	"io"
	"regexp"
	"strings"

	_ "github.com/emersion/go-message/charset" // Register charset decoders
	"github.com/emersion/go-message/mail"

	"github.com/Sharawey74/PhishSniffer/internal/model"
)

// Header extraction patterns for raw (non-MIME) text input.
// Pasted email text often keeps "Header: value" lines even when the MIME
// structure is lost, so we recover the interesting headers line by line.
var (
	fromPattern       = regexp.MustCompile(`(?im)^From:\s*(.*)$`)
	toPattern         = regexp.MustCompile(`(?im)^To:\s*(.*)$`)
	subjectPattern    = regexp.MustCompile(`(?im)^Subject:\s*(.*)$`)
	datePattern       = regexp.MustCompile(`(?im)^Date:\s*(.*)$`)
	replyToPattern    = regexp.MustCompile(`(?im)^Reply-To:\s*(.*)$`)
	returnPathPattern = regexp.MustCompile(`(?im)^Return-Path:\s*(.*)$`)
)

// Parse reads a full RFC 5322 / MIME message and returns the parsed email.
// Multipart messages are traversed: the first text/plain part becomes the
// body, the first text/html part is kept for link analysis (and becomes the
// body, tag-stripped, when no plain part exists), and attachment parts are
// counted but never decoded.
func Parse(r io.Reader) (*model.Email, error) {
	var raw bytes.Buffer
	tee := io.TeeReader(r, &raw)

	mr, err := mail.CreateReader(tee)
	if err != nil {
		// Drain so raw captures the full input for the caller's fallback.
		_, _ = io.Copy(io.Discard, tee)
		return nil, err
	}

	email := &model.Email{
		Headers: make(map[string]string),
	}

	header := mr.Header
	email.From = headerText(header, "From")
	email.To = headerText(header, "To")
	email.Subject = headerText(header, "Subject")
	email.Date = headerText(header, "Date")
	email.ReplyTo = headerText(header, "Reply-To")
	email.ReturnPath = headerText(header, "Return-Path")

	fields := header.Fields()
	for fields.Next() {
		if text, err := fields.Text(); err == nil {
			email.Headers[fields.Key()] = text
		} else {
			email.Headers[fields.Key()] = fields.Value()
		}
	}

	for {
		part, err := mr.NextPart()
		if err == io.EOF {
			break
		}
		if err != nil {
			// A broken part should not discard what we already have;
			// phishing mail is frequently malformed on purpose.
			break
		}

		switch h := part.Header.(type) {
		case *mail.InlineHeader:
			contentType, _, ctErr := h.ContentType()
			if ctErr != nil {
				continue
			}

			body, readErr := io.ReadAll(part.Body)
			if readErr != nil {
				continue
			}

			switch contentType {
			case "text/plain":
				if email.Body == "" {
					email.Body = string(body)
				}
			case "text/html":
				email.HasHTML = true
				if email.HTMLBody == "" {
					email.HTMLBody = string(body)
				}
			}
		case *mail.AttachmentHeader:
			email.HasAttachments = true
			email.AttachmentCount++
		}
	}

	// HTML-only messages still need a plain body for keyword matching.
	if email.Body == "" && email.HTMLBody != "" {
		email.Body = StripTags(email.HTMLBody)
	}

	email.Body = Normalize(email.Body)
	email.Raw = raw.String()

	return email, nil
}

// ParseText extracts email features from raw pasted text.
// It never fails: missing headers simply stay empty and the text after the
// first blank line (or the whole input) becomes the body.
func ParseText(text string) *model.Email {
	email := &model.Email{
		Headers: make(map[string]string),
		Raw:     text,
	}

	// Pasted text arrives with either line ending; normalize so the
	// blank-line header/body split works for both.
	normalized := strings.ReplaceAll(text, "\r\n", "\n")

	headersPart := normalized
	body := normalized
	if idx := strings.Index(normalized, "\n\n"); idx >= 0 {
		headersPart = normalized[:idx]
		body = normalized[idx+2:]
	}

	email.From = firstMatch(fromPattern, headersPart)
	email.To = firstMatch(toPattern, headersPart)
	email.Subject = firstMatch(subjectPattern, headersPart)
	email.Date = firstMatch(datePattern, headersPart)
	email.ReplyTo = firstMatch(replyToPattern, headersPart)
	email.ReturnPath = firstMatch(returnPathPattern, headersPart)

	// Without a parseable header block there is no header/body split;
	// analyze the whole text as body.
	if email.From == "" && email.Subject == "" && email.To == "" {
		body = normalized
	}

	if strings.Contains(body, "<a ") || strings.Contains(body, "<A ") ||
		strings.Contains(body, "<html") {
		email.HasHTML = true
		email.HTMLBody = body
	}

	email.Body = Normalize(body)

	return email
}

// ParseAuto parses input as a MIME message, falling back to raw-text
// extraction when MIME parsing fails. This is the entry point the analysis
// pipeline uses: it always yields an analyzable email.
func ParseAuto(data []byte) *model.Email {
	email, err := Parse(bytes.NewReader(data))
	if err != nil {
		return ParseText(string(data))
	}
	return email
}

// headerText returns the decoded value of a header field, falling back to
// the raw value when encoded-word decoding fails (common in spam).
func headerText(h mail.Header, key string) string {
	text, err := h.Text(key)
	if err != nil {
		return h.Get(key)
	}
	return text
}

// firstMatch returns the first capture group of the pattern, trimmed.
func firstMatch(pattern *regexp.Regexp, text string) string {
	match := pattern.FindStringSubmatch(text)
	if len(match) < 2 {
		return ""
	}
	return strings.TrimSpace(match[1])
}
