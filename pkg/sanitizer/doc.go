// Package sanitizer normalizes untrusted string input before it reaches
// validation or storage.
//
// Sanitization is intentionally separate from validation: sanitizers make a
// best effort to clean the value, validators decide whether the cleaned value
// is acceptable. Every email address entering the auth subsystem goes through
// NormalizeEmail so that lookups and uniqueness checks are case-insensitive.
//
// # Usage
//
//	email := sanitizer.NormalizeEmail(raw)
//	name := sanitizer.SingleLine(sanitizer.Trim(rawName))
package sanitizer
