package domain

import (
	"sort"
	"strings"
)

const RedactedMarker = "[REDACTED]"

var sensitiveKeyFragments = []string{"email", "phone", "ssn", "license", "payment", "card"}

// IsSensitiveKey matches case-insensitively on any fragment contained in the key.
func IsSensitiveKey(key string) bool {
	k := strings.ToLower(key)
	for _, frag := range sensitiveKeyFragments {
		if strings.Contains(k, frag) {
			return true
		}
	}
	return false
}

// RedactData returns a shallow copy of data with sensitive top-level values
// replaced by RedactedMarker. Nested values are copied as-is.
func RedactData(data map[string]any) map[string]any {
	out := make(map[string]any, len(data))
	for k, v := range data {
		if IsSensitiveKey(k) {
			out[k] = RedactedMarker
			continue
		}
		out[k] = v
	}
	return out
}

// DataKeys returns the sorted top-level keys of data.
func DataKeys(data map[string]any) []string {
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
