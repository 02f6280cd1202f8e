package http

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	maxRoomIDLen = 128
	maxNameLen   = 256
)

var (
	roomIDInvalid = regexp.MustCompile(`[^a-z0-9-]`)
	nameInvalid   = regexp.MustCompile(`[^\p{L}\p{M}\p{Z}\p{N}]+`)
)

// NormalizeRoomID trims, truncates and lowercases raw, then drops every
// character outside [a-z0-9-]. An empty result means no usable room.
func NormalizeRoomID(raw string) string {
	id := truncate(strings.TrimSpace(raw), maxRoomIDLen)
	// Casers are stateful, so each call gets its own.
	id = cases.Lower(language.Und).String(id)
	return roomIDInvalid.ReplaceAllString(id, "")
}

// SanitizeName keeps letters, marks, separators and digits of a display name.
func SanitizeName(raw string) string {
	name := truncate(strings.TrimSpace(raw), maxNameLen)
	return nameInvalid.ReplaceAllString(name, "")
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
