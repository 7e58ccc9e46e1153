package digest

import "strings"

type spanKind int

const (
	bareBrace spanKind = iota
	fenced
)

// span marks a substring of the sanitized text suspected to hold the
// structured object. Offsets are half-open byte positions.
type span struct {
	kind  spanKind
	start int
	end   int
}

func (s span) slice(text string) string {
	return text[s.start:s.end]
}

const fenceMarker = "```"

// locate returns candidate spans in priority order: the greedy outermost
// bare-brace span first, then the first fenced code block. The bare span runs
// from the first '{' to the last '}' rather than using balanced matching, so
// trailing narration after the object is tolerated while braces inside
// narration before the object defeat it. An empty result is not an error; it
// signals that only heuristic recovery remains.
func locate(text string) []span {
	var spans []span
	if start := strings.Index(text, "{"); start >= 0 {
		if end := strings.LastIndex(text, "}"); end > start {
			spans = append(spans, span{kind: bareBrace, start: start, end: end + 1})
		}
	}
	if s, ok := locateFence(text); ok {
		spans = append(spans, s)
	}
	return spans
}

func locateFence(text string) (span, bool) {
	open := strings.Index(text, fenceMarker)
	if open < 0 {
		return span{}, false
	}
	start := open + len(fenceMarker)
	off := strings.Index(text[start:], fenceMarker)
	if off < 0 {
		return span{}, false
	}
	end := start + off
	// Skip an optional language tag on the opening fence line.
	if nl := strings.IndexByte(text[start:end], '\n'); nl >= 0 {
		tag := strings.TrimSpace(text[start : start+nl])
		if tag == "" || strings.EqualFold(tag, "json") {
			start += nl + 1
		}
	}
	return span{kind: fenced, start: start, end: end}, true
}
