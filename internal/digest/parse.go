package digest

import (
	"encoding/json"
	"strings"
)

// tryParse attempts exact deserialization of a candidate span. It either
// yields the parsed digest untouched or reports failure; it never repairs
// malformed input and never escalates the decode error.
func tryParse(spanText string) (Digest, bool) {
	spanText = strings.TrimSpace(spanText)
	if spanText == "" {
		return Digest{}, false
	}
	var d Digest
	if err := json.Unmarshal([]byte(spanText), &d); err != nil {
		return Digest{}, false
	}
	return d, true
}
