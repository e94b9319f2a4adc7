package parser

import (
	"strings"
	"unicode"
)

func isCJKTerminal(r rune) bool {
	return r == '。' || r == '！' || r == '？'
}

func isLatinTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

// splitSentences breaks prose into sentences. CJK terminators end a sentence
// unconditionally; Latin terminators only when followed by whitespace or end
// of input, so "v1.2" and "e.g." survive intact.
func splitSentences(text string) []string {
	runes := []rune(text)
	var out []string
	var cur []rune
	flush := func() {
		s := strings.TrimSpace(string(cur))
		if s != "" && !onlyTerminals(s) {
			out = append(out, s)
		}
		cur = cur[:0]
	}
	for i, r := range runes {
		cur = append(cur, r)
		if isCJKTerminal(r) {
			flush()
			continue
		}
		if isLatinTerminal(r) && (i+1 >= len(runes) || unicode.IsSpace(runes[i+1])) {
			flush()
		}
	}
	flush()
	return out
}

func onlyTerminals(s string) bool {
	for _, r := range s {
		if !isLatinTerminal(r) && !isCJKTerminal(r) {
			return false
		}
	}
	return true
}

func wordCount(text string) int {
	return len(strings.Fields(text))
}

// truncateRunes clamps s to limit runes, appending an ellipsis when clipped.
func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	if limit <= 1 {
		return string(r[:limit])
	}
	return strings.TrimSpace(string(r[:limit-1])) + "…"
}

func collapseWS(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
