package utils

import (
	"crypto/rand"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlugChars = regexp.MustCompile(`[^a-z0-9]+`)
	dashRuns     = regexp.MustCompile(`-+`)
)

// Slugify lowercases s and collapses every run of non-alphanumerics into a
// single dash.
func Slugify(s string) string {
	slug := strings.ToLower(strings.TrimSpace(s))
	slug = nonSlugChars.ReplaceAllString(slug, "-")
	slug = dashRuns.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

// Unambiguous upper-case alphabet for human facing codes.
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomCode returns n characters from codeAlphabet using crypto/rand.
func RandomCode(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		panic(err)
	}
	for i, b := range buf {
		buf[i] = codeAlphabet[int(b)%len(codeAlphabet)]
	}
	return string(buf)
}

// GenerateOrderNumber returns ORD-YYYYMMDDHHMMSS-XXXXXX in UTC.
func GenerateOrderNumber(now time.Time) string {
	return "ORD-" + now.UTC().Format("20060102150405") + "-" + RandomCode(6)
}

// GenerateSKU derives a SKU from the product name plus a random suffix.
func GenerateSKU(name string) string {
	prefix := strings.ToUpper(strings.ReplaceAll(Slugify(name), "-", ""))
	if len(prefix) > 6 {
		prefix = prefix[:6]
	}
	if prefix == "" {
		prefix = "SKU"
	}
	return prefix + "-" + RandomCode(6)
}
