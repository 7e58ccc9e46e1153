// Package digest turns free-form generative-model output into a validated
// executive digest with four guaranteed non-empty fields. Recovery is a
// cascade of stages: sanitize, exact parse of the outermost brace span, exact
// parse of the first fenced block, regex section recovery, and deterministic
// defaulting. No input is fatal; the cascade always terminates in a complete
// digest.
package digest

// Stage names the cascade stage that produced a digest.
type Stage string

const (
	// StageSpanParse means the outermost brace span parsed exactly.
	StageSpanParse Stage = "span_parse"
	// StageFenceParse means the first fenced code block parsed exactly.
	StageFenceParse Stage = "fence_parse"
	// StageHeuristic means at least one field was recovered by regex.
	StageHeuristic Stage = "heuristic"
	// StageDefaulted means the output is entirely canned defaults and
	// backfill.
	StageDefaulted Stage = "defaulted"
)

// Degraded reports whether the digest was produced without an exact parse.
func (s Stage) Degraded() bool {
	return s == StageHeuristic || s == StageDefaulted
}

// Internal machine states. One handler per state; transitions only move
// forward and every terminal path passes through validateAndDefault.
type state int

const (
	stateReceived state = iota
	stateSpanParse
	stateFenceParse
	stateHeuristic
	stateComplete
)

// Extract reduces raw model output to a schema-complete digest. It is a pure,
// synchronous function of its inputs; sources supply backfill material only
// and are never mutated. Empty or adversarial input degrades to defaults
// rather than failing.
func Extract(raw string, sources []ArticleSummary) Digest {
	d, _ := ExtractWithStage(raw, sources)
	return d
}

// ExtractWithStage is Extract plus the cascade stage that produced the
// result, for callers that log or store recovery quality.
func ExtractWithStage(raw string, sources []ArticleSummary) (Digest, Stage) {
	var (
		text  string
		spans []span
	)
	current := stateReceived
	for current != stateComplete {
		switch current {
		case stateReceived:
			text = Sanitize(raw)
			spans = locate(text)
			current = stateSpanParse
		case stateSpanParse:
			if d, ok := parseSpanKind(text, spans, bareBrace); ok {
				return validateAndDefault(d, sources), StageSpanParse
			}
			current = stateFenceParse
		case stateFenceParse:
			if d, ok := parseSpanKind(text, spans, fenced); ok {
				return validateAndDefault(d, sources), StageFenceParse
			}
			current = stateHeuristic
		case stateHeuristic:
			partial := recoverSections(text)
			produced := StageHeuristic
			if partial.empty() {
				produced = StageDefaulted
			}
			return validateAndDefault(partial, sources), produced
		}
	}
	// Unreachable: the heuristic state always returns.
	return validateAndDefault(Digest{}, sources), StageDefaulted
}

func parseSpanKind(text string, spans []span, kind spanKind) (Digest, bool) {
	for _, s := range spans {
		if s.kind != kind {
			continue
		}
		if d, ok := tryParse(s.slice(text)); ok {
			return d, true
		}
	}
	return Digest{}, false
}
