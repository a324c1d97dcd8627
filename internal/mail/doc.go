// Package mail parses email input into the model.Email structure.
//
// Two input shapes are supported:
//   - Full RFC 5322 / MIME messages (.eml files, raw SMTP captures),
//     parsed with github.com/emersion/go-message including multipart
//     traversal, charset decoding, and attachment detection.
//   - Raw pasted text, where headers are recovered best-effort with
//     line regexes and everything after the first blank line is the body.
//
// Parsing never fails hard for the analysis path: ParseAuto falls back to
// raw-text extraction whenever MIME parsing rejects the input, because a
// malformed message is itself worth analyzing.
package mail
