package core

import (
	"regexp"
	"strings"
)

// EscapeStep replaces every match of Pattern with Replacement.
type EscapeStep struct {
	Name        string
	Pattern     *regexp.Regexp
	Replacement string
}

// Apply runs the step on s. Strings without a match are returned unchanged.
func (st EscapeStep) Apply(s string) string {
	if !st.Pattern.MatchString(s) {
		return s
	}
	return st.Pattern.ReplaceAllLiteralString(s, st.Replacement)
}

// EscapeSteps is the ordered sanitization table. Ampersands must be escaped
// first, otherwise the entities produced by later steps get double-encoded.
// Line breaks are rewritten after the slash step so "<br/>" survives intact.
var EscapeSteps = []EscapeStep{
	{Name: "amp", Pattern: regexp.MustCompile(`&`), Replacement: "&amp"},
	{Name: "lt", Pattern: regexp.MustCompile(`<`), Replacement: "&lt"},
	{Name: "gt", Pattern: regexp.MustCompile(`>`), Replacement: "&gt"},
	{Name: "quot", Pattern: regexp.MustCompile(`"`), Replacement: "&quot"},
	{Name: "apos", Pattern: regexp.MustCompile(`'`), Replacement: "&#39"},
	{Name: "slash", Pattern: regexp.MustCompile(`/`), Replacement: "&#x2F"},
	{Name: "newline", Pattern: regexp.MustCompile(`\n+`), Replacement: "<br/>"},
	{Name: "carriage-return", Pattern: regexp.MustCompile(`\r+`), Replacement: ""},
	{Name: "tab", Pattern: regexp.MustCompile(`\t+`), Replacement: ""},
}

// Sanitize trims s and runs it through EscapeSteps in order. Invalid UTF-8
// sequences become U+FFFD first, so the stored text is exactly what the JSON
// snapshot reproduces.
func Sanitize(s string) string {
	s = strings.TrimSpace(strings.ToValidUTF8(s, "\uFFFD"))
	for _, step := range EscapeSteps {
		s = step.Apply(s)
	}
	return s
}
