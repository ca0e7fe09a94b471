package security

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateFilter(t *testing.T) {
	tests := []struct {
		name        string
		value       string
		expectError bool
		expected    string
	}{
		{
			name:     "plain city name",
			value:    "Boston",
			expected: "Boston",
		},
		{
			name:     "substring fragment",
			value:    "bos",
			expected: "bos",
		},
		{
			name:     "city containing a SQL keyword",
			value:    "Union City",
			expected: "Union City",
		},
		{
			name:     "surrounding whitespace trimmed",
			value:    "  Denver  ",
			expected: "Denver",
		},
		{
			name:        "empty value",
			value:       "",
			expectError: true,
		},
		{
			name:        "whitespace only",
			value:       "   ",
			expectError: true,
		},
		{
			name:        "too long",
			value:       strings.Repeat("a", MaxFilterLength+1),
			expectError: true,
		},
		{
			name:        "control characters",
			value:       "Bos\x00ton",
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateFilter(tt.value)
			if tt.expectError {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}
