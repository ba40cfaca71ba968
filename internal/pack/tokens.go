package pack

import "unicode/utf8"

const charsPerToken = 4

// Token caps applied to the packs before they reach the oracle.
const (
	CorePackTokenLimit      = 1500
	RelevancePackTokenLimit = 1000
)

// EstimateTokenCount is the crude 4-characters-per-token heuristic used to
// cap pack size before sending to the oracle.
func EstimateTokenCount(text string) int {
	return (len(text) + charsPerToken - 1) / charsPerToken
}

// TruncateToTokenLimit cuts text to roughly maxTokens, appending an ellipsis.
// The cut is a hard cut, not sentence-aware, but never splits a rune.
func TruncateToTokenLimit(text string, maxTokens int) string {
	if maxTokens <= 0 {
		return ""
	}
	if EstimateTokenCount(text) <= maxTokens {
		return text
	}
	return cutAtRuneBoundary(text, maxTokens*charsPerToken) + "..."
}

// cutAtRuneBoundary cuts s to at most maxBytes bytes, backing off so a
// multibyte rune is never split.
func cutAtRuneBoundary(s string, maxBytes int) string {
	if len(s) <= maxBytes {
		return s
	}
	for maxBytes > 0 && !utf8.RuneStart(s[maxBytes]) {
		maxBytes--
	}
	return s[:maxBytes]
}
