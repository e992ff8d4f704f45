package mailscan

import (
	"encoding/base64"
	"strings"

	"golang.org/x/net/html"
	"google.golang.org/api/gmail/v1"
)

const (
	// bodyCharBudget caps decoded body text handed to the extractor.
	bodyCharBudget = 8000
	// minPlainTextLen guards against near-empty text/plain parts that some
	// senders pair with a full HTML body.
	minPlainTextLen = 50
)

// DecodeMessage flattens a Gmail message into a candidate: headers from the
// payload, body decoded per the part-preference rules, snippet appended as a
// fallback/supplement.
func DecodeMessage(msg *gmail.Message) CandidateEmail {
	cand := CandidateEmail{ID: msg.Id}
	if msg.Payload == nil {
		cand.Body = truncate(msg.Snippet, bodyCharBudget)
		return cand
	}

	cand.Subject = headerValue(msg.Payload, "Subject")
	cand.From = headerValue(msg.Payload, "From")

	text := decodeData(msg.Payload.Body)
	if text == "" {
		plain := findPartText(msg.Payload, "text/plain")
		if len(plain) > minPlainTextLen {
			text = plain
		} else if rawHTML := findPartText(msg.Payload, "text/html"); rawHTML != "" {
			text = htmlToText(rawHTML)
		} else {
			text = plain
		}
	}

	if msg.Snippet != "" {
		text = strings.TrimSpace(text + "\n\n" + msg.Snippet)
	}
	cand.Body = truncate(text, bodyCharBudget)
	return cand
}

func headerValue(part *gmail.MessagePart, name string) string {
	for _, h := range part.Headers {
		if strings.EqualFold(h.Name, name) {
			return h.Value
		}
	}
	return ""
}

// findPartText walks the part tree depth-first and returns the first decoded
// part of the wanted MIME type.
func findPartText(part *gmail.MessagePart, mimeType string) string {
	if part.MimeType == mimeType {
		if text := decodeData(part.Body); text != "" {
			return text
		}
	}
	for _, p := range part.Parts {
		if text := findPartText(p, mimeType); text != "" {
			return text
		}
	}
	return ""
}

// decodeData decodes Gmail's web-safe base64 body data, tolerating both
// padded and unpadded forms.
func decodeData(body *gmail.MessagePartBody) string {
	if body == nil || body.Data == "" {
		return ""
	}
	raw, err := base64.URLEncoding.DecodeString(body.Data)
	if err != nil {
		raw, err = base64.RawURLEncoding.DecodeString(body.Data)
		if err != nil {
			return ""
		}
	}
	return strings.TrimSpace(string(raw))
}

// blockTags get a newline so table-heavy billing mail keeps line structure
// after tag stripping.
var blockTags = map[string]bool{
	"p": true, "br": true, "div": true, "tr": true, "li": true, "table": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
}

// htmlToText strips tags, drops script/style content and inserts structural
// newlines. Entity decoding comes with the tokenizer.
func htmlToText(rawHTML string) string {
	tok := html.NewTokenizer(strings.NewReader(rawHTML))
	var b strings.Builder
	skipDepth := 0

	for {
		tt := tok.Next()
		switch tt {
		case html.ErrorToken:
			return collapseBlankLines(b.String())
		case html.StartTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if tag == "script" || tag == "style" {
				skipDepth++
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.EndTagToken:
			name, _ := tok.TagName()
			tag := string(name)
			if (tag == "script" || tag == "style") && skipDepth > 0 {
				skipDepth--
			}
			if blockTags[tag] {
				b.WriteByte('\n')
			}
		case html.SelfClosingTagToken:
			name, _ := tok.TagName()
			if blockTags[string(name)] {
				b.WriteByte('\n')
			}
		case html.TextToken:
			if skipDepth == 0 {
				b.WriteString(string(tok.Text()))
			}
		}
	}
}

func collapseBlankLines(s string) string {
	lines := strings.Split(s, "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return strings.Join(out, "\n")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
