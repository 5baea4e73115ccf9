package slug

import (
	"strings"
	"unicode"
)

// Option configures slug generation.
type Option func(*config)

type config struct {
	maxLength int
	separator string
}

func defaultConfig() *config {
	return &config{
		maxLength: 0, // no limit
		separator: "-",
	}
}

// MaxLength caps the slug at n runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) {
		c.maxLength = n
	}
}

// Separator sets the separator string. Default is "-".
func Separator(s string) Option {
	return func(c *config) {
		c.separator = s
	}
}

// Make creates a lowercase URL-safe slug from the input string. Runs of
// non-alphanumeric characters become a single separator; leading and trailing
// separators are stripped. Returns "" when the input contains no usable
// characters, leaving the fallback choice to the caller.
func Make(s string, opts ...Option) string {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))

	lastWasSep := true // true at start to suppress a leading separator
	runeCount := 0

	for _, r := range s {
		if cfg.maxLength > 0 && runeCount >= cfg.maxLength {
			break
		}

		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(unicode.ToLower(r))
			runeCount++
			lastWasSep = false
		case !lastWasSep:
			if cfg.maxLength > 0 && runeCount+len(cfg.separator) > cfg.maxLength {
				lastWasSep = true
				continue
			}
			b.WriteString(cfg.separator)
			runeCount += len(cfg.separator)
			lastWasSep = true
		}
	}

	return strings.Trim(b.String(), cfg.separator)
}
