package models

import (
	"strconv"
	"strings"
)

// ParseID normalizes a client-supplied identifier to the store's canonical uint form.
// Surrounding whitespace is ignored; zero, negative and non-numeric values are rejected.
func ParseID(raw string) (uint, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// FormatID renders a canonical id the way clients send it back.
func FormatID(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}
