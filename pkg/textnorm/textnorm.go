// Package textnorm provides locale-insensitive text normalization used by
// the matching heuristics and the response cache fingerprint.
package textnorm

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var stripMarks = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Normalize lowercases the text and strips diacritic marks, so that
// "Versão" and "versao" compare equal. Pattern vocabularies are stored
// in this normalized form.
func Normalize(s string) string {
	out, _, err := transform.String(stripMarks, s)
	if err != nil {
		// Non-transformable input falls back to plain case folding.
		out = s
	}
	return strings.ToLower(out)
}

// Fingerprint returns the cache key for a piece of user input: an md5 of
// the trimmed, lowercased text, truncated to 12 hex characters. Inputs that
// differ only in case or surrounding whitespace share a fingerprint.
func Fingerprint(s string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(s))))
	return hex.EncodeToString(sum[:])[:12]
}

// Truncate shortens s to at most maxLen bytes, appending "..." when the
// text was cut. The cut never splits a UTF-8 sequence.
func Truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		return "..."
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
