package security

import (
	"errors"
	"strings"
	"unicode"
)

// MaxFilterLength defines the maximum allowed length for filter values
// taken from URL path segments.
const MaxFilterLength = 100

// ValidateFilter checks a user-supplied filter value (such as a city
// substring) before it reaches the query layer. Filters are always bound as
// query parameters, so the check is limited to size and printability; it
// must not reject legitimate data values.
func ValidateFilter(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return "", errors.New("filter value is empty")
	}
	if len(value) > MaxFilterLength {
		return "", errors.New("filter value too long")
	}

	for _, r := range value {
		if unicode.IsControl(r) {
			return "", errors.New("filter value contains control characters")
		}
	}

	return value, nil
}
