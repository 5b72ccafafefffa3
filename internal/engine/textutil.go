package engine

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
)

// TruncateRunes caps s at limit runes, appending suffix if truncated.
// Pass suffix="" for no suffix. Safe for UTF-8 (Cyrillic, CJK, emoji).
func TruncateRunes(s string, limit int, suffix string) string {
	return strutil.TruncateWith(s, limit, suffix)
}

// SafeFileToken maps s onto [a-z0-9._-] so it can be embedded in a file name.
// Runs of other characters collapse into a single '-'.
func SafeFileToken(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') || r == '.' || r == '_':
			b.WriteRune(r)
			dash = false
		case !dash && b.Len() > 0:
			b.WriteByte('-')
			dash = true
		}
	}
	out := strings.Trim(b.String(), "-.")
	if out == "" {
		return "asset"
	}
	return out
}

// UniqueFileToken is SafeFileToken made injective: when sanitizing changes
// s, a hash of the raw string is appended so distinct inputs never share a
// token.
func UniqueFileToken(s string) string {
	tok := SafeFileToken(s)
	if tok == s {
		return tok
	}
	sum := sha256.Sum256([]byte(s))
	return tok + "-" + hex.EncodeToString(sum[:8])
}
