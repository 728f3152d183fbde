package service

import (
	"crypto/rand"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const slugSuffixCharset = "abcdefghijklmnopqrstuvwxyz0123456789"

// GenerateSlug derives a URL-safe slug from an organization name: lowercase,
// diacritics stripped, non-alphanumeric runs collapsed to a single hyphen,
// leading/trailing hyphens trimmed, plus a short random suffix so uniqueness
// holds without a retry loop.
func GenerateSlug(name string) string {
	lowered := strings.ToLower(name)

	stripper := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	ascii, _, err := transform.String(stripper, lowered)
	if err != nil {
		ascii = lowered
	}

	var b strings.Builder
	lastHyphen := true // suppresses a leading hyphen
	for _, r := range ascii {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
			lastHyphen = false
		} else if !lastHyphen {
			b.WriteByte('-')
			lastHyphen = true
		}
	}

	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		slug = "org"
	}

	return slug + "-" + randomSuffix(4)
}

func randomSuffix(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms; fall back anyway
		for i := range buf {
			buf[i] = byte(i)
		}
	}
	out := make([]byte, n)
	for i, b := range buf {
		out[i] = slugSuffixCharset[int(b)%len(slugSuffixCharset)]
	}
	return string(out)
}
