package sanitizer

import (
	"regexp"
	"strings"
)

var (
	dotRegex        = regexp.MustCompile(`\.{2,}`)
	whitespaceRegex = regexp.MustCompile(`\s+`)
)

// Trim removes leading and trailing whitespace.
func Trim(s string) string {
	return strings.TrimSpace(s)
}

// SingleLine collapses any run of whitespace (including newlines) into a
// single space. Used for user-controlled display names that must never span
// multiple lines.
func SingleLine(s string) string {
	return whitespaceRegex.ReplaceAllString(strings.TrimSpace(s), " ")
}

// NormalizeEmail lowercases and trims an email address so it can be used as a
// case-insensitive lookup key. Consecutive dots in the local part are
// consolidated to prevent delivery failures. Malformed input is returned
// lowercased as-is; validation rejects it later.
func NormalizeEmail(email string) string {
	email = strings.ToLower(strings.TrimSpace(email))

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}

	local := dotRegex.ReplaceAllString(parts[0], ".")
	local = strings.Trim(local, ".")

	return local + "@" + parts[1]
}

// EmailLocalPart returns the part of the address before the "@", or the whole
// string when no "@" is present. Used to derive display names and slugs for
// users created from provider claims.
func EmailLocalPart(email string) string {
	email = strings.TrimSpace(email)
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
