package util

import (
	"strings"

	"github.com/google/uuid"
)

// CanonicalUUID reports whether value is a UUID and returns it in canonical
// lowercase hyphenated form.
func CanonicalUUID(value string) (string, bool) {
	parsed, err := uuid.Parse(strings.TrimSpace(value))
	if err != nil {
		return "", false
	}
	return parsed.String(), true
}
