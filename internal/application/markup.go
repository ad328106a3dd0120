package application

import (
	"html"
	"strings"

	nethtml "golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// StripMarkup removes every tag from status content and keeps the text
// between them verbatim. Character entities are left escaped.
func StripMarkup(content string) string {
	return renderText(content, false)
}

// TransformContent converts the HTML body of a direct message into the plain
// text of a new public status:
//  1. line breaks become "\n" and paragraph boundaries a blank line,
//  2. all other tags are dropped,
//  3. every "@"+username self-mention is removed,
//  4. character entities are unescaped.
//
// Entities are decoded last so an escaped "&lt;b&gt;" can never be mistaken
// for a tag. Surrounding whitespace is trimmed.
func TransformContent(content, username string) string {
	text := renderText(content, true)
	text = removeMention(text, "@"+username)
	text = html.UnescapeString(text)
	return strings.TrimSpace(text)
}

// renderText walks the markup with the x/net/html tokenizer. Text tokens are
// copied raw so entities survive until the caller decides to decode them.
// The tokenizer never fails on malformed input: broken tags end up as text or
// are skipped, and an unterminated tag at the end is dropped.
func renderText(content string, breaks bool) string {
	if !strings.ContainsAny(content, "<&") {
		return content
	}

	z := nethtml.NewTokenizer(strings.NewReader(content))
	var b strings.Builder
	b.Grow(len(content))

	for {
		switch z.Next() {
		case nethtml.ErrorToken:
			return b.String()
		case nethtml.TextToken:
			b.Write(z.Raw())
		case nethtml.StartTagToken, nethtml.SelfClosingTagToken:
			if !breaks {
				continue
			}
			name, _ := z.TagName()
			switch atom.Lookup(name) {
			case atom.Br:
				b.WriteByte('\n')
			case atom.P:
				if b.Len() > 0 {
					b.WriteString("\n\n")
				}
			}
		}
	}
}

// removeMention deletes every occurrence of mention, repeating until none is
// left so that the result is stable under a second pass.
func removeMention(text, mention string) string {
	if mention == "@" {
		return text
	}
	for strings.Contains(text, mention) {
		text = strings.ReplaceAll(text, mention, "")
	}
	return text
}
