package sanitizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/authkit/pkg/sanitizer"
)

func TestNormalizeEmail(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"lowercases", "User@Example.COM", "user@example.com"},
		{"trims whitespace", "  user@example.com \n", "user@example.com"},
		{"consolidates dots in local part", "first..last@example.com", "first.last@example.com"},
		{"strips boundary dots in local part", ".user.@example.com", "user@example.com"},
		{"leaves malformed input lowercased", "not-an-email", "not-an-email"},
		{"leaves multiple at signs alone", "a@b@c", "a@b@c"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, sanitizer.NormalizeEmail(tt.input))
		})
	}
}

func TestSingleLine(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "Jane Doe", sanitizer.SingleLine("  Jane\n\tDoe  "))
	assert.Equal(t, "", sanitizer.SingleLine("   "))
}

func TestEmailLocalPart(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "jane.doe", sanitizer.EmailLocalPart("jane.doe@example.com"))
	assert.Equal(t, "jane", sanitizer.EmailLocalPart("jane"))
}
