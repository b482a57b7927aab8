package utils

import (
	"strings"

	"github.com/google/uuid"
)

// GeneratePlanID creates a human-readable plan ID.
// Format: plan-{slugOfName}-{8charHexUUID}
//
// Example:
//   - Input: name="Circuit Line #2"
//   - Output: "plan-circuit-line-2-a3f8e2b1"
//
// An empty or symbol-only name yields "plan-{8charHexUUID}".
func GeneratePlanID(name string) string {
	slug := Slugify(name)
	if slug == "" {
		return "plan-" + generateShortUUID()
	}
	return "plan-" + slug + "-" + generateShortUUID()
}

// Slugify lowercases a name and collapses every run of non-alphanumeric
// characters into a single hyphen.
//   - "Circuit Line #2" -> "circuit-line-2"
//   - "  --Steel--  " -> "steel"
func Slugify(name string) string {
	var b strings.Builder
	pendingHyphen := false
	for _, r := range strings.ToLower(name) {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if !isAlnum {
			pendingHyphen = b.Len() > 0
			continue
		}
		if pendingHyphen {
			b.WriteByte('-')
			pendingHyphen = false
		}
		b.WriteRune(r)
	}
	return b.String()
}

// generateShortUUID creates an 8-character hex string from a UUID.
func generateShortUUID() string {
	id := uuid.New()
	return strings.ReplaceAll(id.String(), "-", "")[:8]
}
