package digest

import (
	"regexp"
	"strings"
)

// Control characters that break json.Unmarshal when they appear unescaped
// inside string values. Ordinary whitespace (tab, newline) survives.
var controlChars = regexp.MustCompile(`[\x00-\x08\x0B\x0C\x0E-\x1F\x7F]`)

// Sanitize normalizes line endings to \n and strips disallowed control
// characters. Invalid UTF-8 sequences are dropped silently. Idempotent.
func Sanitize(text string) string {
	text = strings.ToValidUTF8(text, "")
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return controlChars.ReplaceAllString(text, "")
}
