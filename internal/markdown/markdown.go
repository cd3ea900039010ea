package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const mdV2SpecialChars = `._[](){}#|!+-=*~>` + "`"

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2Lookup = func() [256]bool {
	var m [256]bool
	for i := range len(mdV2SpecialChars) {
		m[mdV2SpecialChars[i]] = true
	}
	m['\\'] = true
	return m
}()

//nolint:gochecknoglobals // Lookup table meant to be immutable.
var mdV2URLLookup = func() [256]bool {
	var m [256]bool
	m[')'] = true
	m['\\'] = true
	return m
}()

// EscapeV2 escapes text for use outside entities in a MarkdownV2 message.
func EscapeV2(input string) string {
	return escape(input, &mdV2Lookup)
}

// EscapeURL escapes the URL part of an inline link.
func EscapeURL(input string) string {
	return escape(input, &mdV2URLLookup)
}

// Link renders an inline MarkdownV2 link.
func Link(text, url string) string {
	return "[" + EscapeV2(text) + "](" + EscapeURL(url) + ")"
}

func escape(input string, lookup *[256]bool) string {
	charsToEscape := 0

	for i := range len(input) {
		if lookup[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if lookup[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}
