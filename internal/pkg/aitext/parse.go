// Package aitext parses free-text model output into the narrow shapes the
// pipeline expects. Model responses are untrusted text: every parser here
// line-filters and length-bounds, and callers keep an explicit fallback for
// the empty result.
package aitext

import (
	"regexp"
	"strings"
)

var bulletRe = regexp.MustCompile(`^[-•*]\s*`)

// Bullets extracts bullet-prefixed lines, stripped of their marker and
// trimmed. Lines longer than maxLen runes are dropped, which collapses the
// "explanation" sentences models emit despite instructions. maxLen <= 0
// disables the length filter.
func Bullets(text string, maxLen int) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if !bulletRe.MatchString(line) {
			continue
		}
		item := strings.TrimSpace(bulletRe.ReplaceAllString(line, ""))
		if item == "" {
			continue
		}
		if maxLen > 0 && len([]rune(item)) >= maxLen {
			continue
		}
		out = append(out, item)
	}
	return out
}

// Cap returns at most n leading items.
func Cap(items []string, n int) []string {
	if n >= 0 && len(items) > n {
		return items[:n]
	}
	return items
}

// FirstJSONObject returns the first balanced-brace {...} block in text, or
// "" when none exists. Models asked for JSON routinely wrap it in prose or
// code fences; callers still json.Unmarshal the result and must tolerate
// failure.
func FirstJSONObject(text string) string {
	start := strings.IndexByte(text, '{')
	if start < 0 {
		return ""
	}
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(text); i++ {
		c := text[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inString = false
			}
			continue
		}
		switch c {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return text[start : i+1]
			}
		}
	}
	return ""
}

// Sentence trims a prose response to a single trimmed line, bounded to
// maxLen runes. Used for blurbs where the model was asked for one short
// sentence.
func Sentence(text string, maxLen int) string {
	s := strings.TrimSpace(text)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = strings.TrimSpace(s[:i])
	}
	s = strings.Trim(s, `"'`)
	if maxLen > 0 {
		if r := []rune(s); len(r) > maxLen {
			s = string(r[:maxLen])
		}
	}
	return s
}
