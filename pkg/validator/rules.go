package validator

import (
	"fmt"
	"regexp"
	"slices"
	"strings"
)

var (
	emailRegex       = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	uppercaseRegex   = regexp.MustCompile(`[A-Z]`)
	lowercaseRegex   = regexp.MustCompile(`[a-z]`)
	digitRegex       = regexp.MustCompile(`[0-9]`)
	specialCharRegex = regexp.MustCompile(`[^a-zA-Z0-9]`)
)

// Required fails on empty or whitespace-only values.
func Required(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return strings.TrimSpace(value) != ""
		},
		Error: ValidationError{
			Field:   field,
			Message: "is required",
		},
	}
}

// MaxLen fails when the value exceeds max bytes.
func MaxLen(field, value string, max int) Rule {
	return Rule{
		Check: func() bool {
			return len(value) <= max
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be at most %d characters", max),
		},
	}
}

// ValidEmail checks basic email shape. It does not attempt full RFC 5322
// conformance; deliverability is proven by the verification email.
func ValidEmail(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return emailRegex.MatchString(value)
		},
		Error: ValidationError{
			Field:   field,
			Message: "must be a valid email address",
		},
	}
}

// OneOf fails when value is not in the allowed set.
func OneOf(field, value string, allowed []string) Rule {
	return Rule{
		Check: func() bool {
			return slices.Contains(allowed, value)
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")),
		},
	}
}

// PasswordStrengthConfig controls StrongPassword requirements.
type PasswordStrengthConfig struct {
	MinLength      int
	MaxLength      int
	MinCharClasses int // minimum number of distinct character classes (upper, lower, digit, special)
}

// DefaultPasswordStrength returns the baseline policy: 8-128 chars, at least
// two character classes. Deliberately lenient on composition per NIST
// guidance; length does most of the work.
func DefaultPasswordStrength() PasswordStrengthConfig {
	return PasswordStrengthConfig{
		MinLength:      8,
		MaxLength:      128,
		MinCharClasses: 2,
	}
}

// StrongPassword validates length and character class diversity.
func StrongPassword(field, value string, config PasswordStrengthConfig) Rule {
	return Rule{
		Check: func() bool {
			if len(value) < config.MinLength || len(value) > config.MaxLength {
				return false
			}

			charClasses := 0
			if uppercaseRegex.MatchString(value) {
				charClasses++
			}
			if lowercaseRegex.MatchString(value) {
				charClasses++
			}
			if digitRegex.MatchString(value) {
				charClasses++
			}
			if specialCharRegex.MatchString(value) {
				charClasses++
			}

			return charClasses >= config.MinCharClasses
		},
		Error: ValidationError{
			Field:   field,
			Message: fmt.Sprintf("must be %d-%d characters with at least %d character classes", config.MinLength, config.MaxLength, config.MinCharClasses),
		},
	}
}

// commonPasswords is a short deny-list of passwords seen at the top of every
// breach corpus. Length rules already reject most trivial choices; this
// catches the ones that slip through.
var commonPasswords = map[string]bool{
	"password":    true,
	"password1":   true,
	"password123": true,
	"qwerty123":   true,
	"12345678":    true,
	"123456789":   true,
	"1234567890":  true,
	"letmein123":  true,
	"iloveyou1":   true,
	"admin123":    true,
	"welcome1":    true,
	"sunshine1":   true,
}

// NotCommonPassword rejects passwords from the deny-list regardless of how
// many character classes they contain.
func NotCommonPassword(field, value string) Rule {
	return Rule{
		Check: func() bool {
			return !commonPasswords[strings.ToLower(value)]
		},
		Error: ValidationError{
			Field:   field,
			Message: "password is too common, please choose a different one",
		},
	}
}
