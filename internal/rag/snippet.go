package rag

import (
	"strings"
	"unicode/utf8"
)

// DefaultSnippetContext is the number of bytes kept on each side of a match.
const DefaultSnippetContext = 500

// ExtractSnippet returns the part of content around the first case-insensitive
// occurrence of query, with contextChars bytes on each side widened to rune
// boundaries. A snippet that does not start at the beginning of content is
// prefixed with "...". Without a match the first 2*contextChars runes are
// returned.
func ExtractSnippet(content, query string, contextChars int) string {
	if contextChars < 0 {
		contextChars = 0
	}

	pos, matchLen := indexFold(content, query)
	if pos < 0 {
		return firstRunes(content, 2*contextChars)
	}

	start := max(pos-contextChars, 0)
	end := min(pos+matchLen+contextChars, len(content))

	for start > 0 && !utf8.RuneStart(content[start]) {
		start--
	}
	for end < len(content) && !utf8.RuneStart(content[end]) {
		end++
	}

	snippet := strings.TrimSpace(content[start:end])
	if start > 0 {
		return "..." + snippet
	}
	return snippet
}

// indexFold finds query in s ignoring case. It returns the byte offset and
// byte length of the match in s, or -1.
func indexFold(s, query string) (int, int) {
	if query == "" {
		return -1, 0
	}

	lowerS, lowerQ := strings.ToLower(s), strings.ToLower(query)
	if len(lowerS) == len(s) {
		if i := strings.Index(lowerS, lowerQ); i >= 0 {
			return i, len(lowerQ)
		}
		return -1, 0
	}

	// Lowercasing changed byte lengths; compare rune by rune instead.
	qRunes := utf8.RuneCountInString(query)
	for i := range s {
		end, n := i, 0
		for end < len(s) && n < qRunes {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
			n++
		}
		if n < qRunes {
			break
		}
		if strings.EqualFold(s[i:end], query) {
			return i, end - i
		}
	}
	return -1, 0
}

func firstRunes(s string, n int) string {
	if n <= 0 {
		return ""
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
