package digest

import (
	"regexp"
	"strings"
)

// Section labels are matched loosely (underscore or whitespace, irregular
// quoting) because by the time this stage runs the text has already failed
// every exact parse. The character classes stop captures at structural
// delimiters, which also keeps schema field names from leaking into values.
var (
	narrativeRe = regexp.MustCompile(`(?is)executive[_\s]*summary["\s]*:?\s*["\s]*([^"}\]]+)`)
	actorsRe    = regexp.MustCompile(`(?is)key[_\s]*actors["\s]*:?\s*\[(.*?)\]`)
	actorPairRe = regexp.MustCompile(`(?is)["\s]*name["\s]*:?\s*["\s]*([^"}\],]+)["\s]*.*?["\s]*description["\s]*:?\s*["\s]*([^"}\]]+)`)
	iocsRe      = regexp.MustCompile(`(?is)critical[_\s]*iocs["\s]*:?\s*\[(.*?)\]`)
	iocTripleRe = regexp.MustCompile(`(?is)["\s]*type["\s]*:?\s*["\s]*([^"}\],]+)["\s]*.*?["\s]*value["\s]*:?\s*["\s]*([^"}\],]+)["\s]*.*?["\s]*description["\s]*:?\s*["\s]*([^"}\]]+)`)
	recsRe      = regexp.MustCompile(`(?is)recommendations["\s]*:?\s*\[(.*?)\]`)
	recItemRe   = regexp.MustCompile(`[^"}\],]+`)

	trailingJunkRe = regexp.MustCompile(`[,\]}\s]+$`)
)

const (
	// Narratives at or below this length are parsing debris, not prose.
	minNarrativeLen = 50
	// Recommendation fragments at or below this length are discarded.
	minRecommendationLen = 10
)

// recoverSections performs field-by-field regex recovery over the full
// sanitized text. The four extractors are independent: one failing leaves its
// field empty for the defaulting stage without affecting the others.
func recoverSections(text string) Digest {
	var d Digest
	if narrative, ok := extractNarrative(text); ok {
		d.ExecutiveSummary = narrative
	}
	d.KeyActors = extractActors(text)
	d.CriticalIOCs = extractIndicators(text)
	d.Recommendations = extractRecommendations(text)
	return d
}

func extractNarrative(text string) (string, bool) {
	m := narrativeRe.FindStringSubmatch(text)
	if m == nil {
		return "", false
	}
	narrative := strings.Join(strings.Fields(m[1]), " ")
	narrative = trailingJunkRe.ReplaceAllString(narrative, "")
	if len(narrative) <= minNarrativeLen {
		return "", false
	}
	return narrative, true
}

func extractActors(text string) []Actor {
	section := actorsRe.FindStringSubmatch(text)
	if section == nil {
		return nil
	}
	var actors []Actor
	for _, m := range actorPairRe.FindAllStringSubmatch(section[1], -1) {
		name := cleanFragment(m[1])
		description := cleanFragment(m[2])
		if name == "" || description == "" {
			continue
		}
		actors = append(actors, Actor{Name: name, Description: description})
	}
	return actors
}

func extractIndicators(text string) []Indicator {
	section := iocsRe.FindStringSubmatch(text)
	if section == nil {
		return nil
	}
	var indicators []Indicator
	for _, m := range iocTripleRe.FindAllStringSubmatch(section[1], -1) {
		iocType := cleanFragment(m[1])
		value := cleanFragment(m[2])
		description := cleanFragment(m[3])
		if iocType == "" || value == "" {
			continue
		}
		indicators = append(indicators, Indicator{Type: iocType, Value: value, Description: description})
	}
	return indicators
}

func extractRecommendations(text string) []string {
	section := recsRe.FindStringSubmatch(text)
	if section == nil {
		return nil
	}
	var recs []string
	for _, fragment := range recItemRe.FindAllString(section[1], -1) {
		rec := cleanFragment(fragment)
		if len(rec) > minRecommendationLen {
			recs = append(recs, rec)
		}
	}
	return recs
}

func cleanFragment(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	return strings.TrimSpace(s)
}
