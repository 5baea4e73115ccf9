// Package slug generates URL-safe slugs from arbitrary display names.
//
// Non-alphanumeric runs collapse into a single separator, the result is
// lowercased, and length can be capped without splitting the final word off
// mid-separator. Uniqueness is the caller's concern: the auth service probes
// the user repository and appends a numeric suffix on collision.
//
// # Usage
//
//	slug.Make("Jane Doe")                      // "jane-doe"
//	slug.Make("Ünicode Name!", slug.MaxLength(8))
package slug
