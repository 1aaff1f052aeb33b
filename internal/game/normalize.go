package game

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const (
	// MaxMoveTextBytes caps the tag body before any parsing.
	MaxMoveTextBytes = 8192
	// DefaultMaxTokens matches the longest recorded games with room to spare.
	DefaultMaxTokens = 300
	// DefaultMaxIDLength caps sanitized game identifiers (in runes).
	DefaultMaxIDLength = 64

	idExtraChars = "-_.() "
)

// NormalizeMoveText bounds raw move text and collapses it to single-space separated tokens.
func NormalizeMoveText(raw string, maxTokens int) string {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	if len(raw) > MaxMoveTextBytes {
		cut := MaxMoveTextBytes
		// never split a multi-byte rune
		for cut > 0 && !utf8.RuneStart(raw[cut]) {
			cut--
		}
		raw = raw[:cut]
	}
	raw = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ").Replace(raw)
	tokens := strings.Fields(raw)
	if len(tokens) > maxTokens {
		tokens = tokens[:maxTokens]
	}
	return strings.Join(tokens, " ")
}

// SanitizeID keeps letters, digits and "-_.() " then trims and truncates to maxLen runes.
func SanitizeID(raw string, maxLen int) string {
	if maxLen <= 0 {
		maxLen = DefaultMaxIDLength
	}
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || strings.ContainsRune(idExtraChars, r) {
			b.WriteRune(r)
		}
	}
	cleaned := strings.TrimSpace(b.String())
	runes := []rune(cleaned)
	if len(runes) > maxLen {
		cleaned = strings.TrimSpace(string(runes[:maxLen]))
	}
	return cleaned
}
