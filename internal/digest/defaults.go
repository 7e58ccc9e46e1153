package digest

import "strings"

// DefaultsVersion identifies the generation of the canned fallback content,
// so degraded digests can be audited against the constants that produced
// them.
const DefaultsVersion = 1

// FallbackNarrative replaces an executive summary no stage could recover.
const FallbackNarrative = "Based on the analyzed threat intelligence, several key cybersecurity threats " +
	"have emerged that require immediate attention. These include sophisticated ransomware operations, " +
	"targeted attacks on critical infrastructure, exploitation of zero-day vulnerabilities, and advanced " +
	"persistent threats from state-sponsored actors. Organizations should implement robust security " +
	"measures including multi-factor authentication, regular patching, threat hunting, and comprehensive " +
	"security awareness training to mitigate these evolving threats."

// PlaceholderActor stands in when no attribution could be recovered.
var PlaceholderActor = Actor{
	Name:        "Unknown Threat Actor",
	Description: "No specific threat actors were identified in the analyzed reports.",
}

// PlaceholderIndicator stands in when neither the model output nor the source
// articles yielded any indicators.
var PlaceholderIndicator = Indicator{
	Type:        "various",
	Value:       "See individual reports",
	Description: "Various IOCs were identified in the individual reports.",
}

// DefaultRecommendations is the fixed guidance emitted when none could be
// recovered.
var DefaultRecommendations = []string{
	"Maintain regular security patches and updates for all systems",
	"Implement multi-factor authentication for critical services",
	"Conduct regular security awareness training for employees",
	"Review and update incident response plans",
	"Maintain offline backups of critical data",
}

const maxBackfillIndicators = 3

// validateAndDefault fills every empty digest field with deterministic
// defaults, backfilling indicators from the source articles when possible.
// Populated fields pass through untouched. It never fails and always returns
// a schema-complete digest, whatever stage the partial came from.
func validateAndDefault(d Digest, sources []ArticleSummary) Digest {
	if strings.TrimSpace(d.ExecutiveSummary) == "" {
		d.ExecutiveSummary = FallbackNarrative
	}
	if len(d.KeyActors) == 0 {
		d.KeyActors = []Actor{PlaceholderActor}
	}
	if len(d.CriticalIOCs) == 0 {
		if backfilled := backfillIndicators(sources); len(backfilled) > 0 {
			d.CriticalIOCs = backfilled
		} else {
			d.CriticalIOCs = []Indicator{PlaceholderIndicator}
		}
	}
	if len(d.Recommendations) == 0 {
		d.Recommendations = append([]string(nil), DefaultRecommendations...)
	}
	return d
}

// backfillIndicators takes up to three indicators from the source articles in
// order, preferring one per distinct type, each description naming the
// article it came from.
func backfillIndicators(sources []ArticleSummary) []Indicator {
	var out []Indicator
	typesSeen := make(map[string]struct{})
	used := make(map[string]struct{})

	add := func(article ArticleSummary, group IndicatorGroup, entry SourceIndicator) {
		used[group.Type+"\x00"+entry.Value] = struct{}{}
		out = append(out, Indicator{
			Type:        group.Type,
			Value:       entry.Value,
			Description: "Found in " + article.Title,
		})
	}

	// First pass: one indicator per type not yet represented.
	for _, article := range sources {
		for _, group := range article.Indicators {
			if len(out) >= maxBackfillIndicators {
				return out
			}
			if len(group.Entries) == 0 {
				continue
			}
			if _, ok := typesSeen[group.Type]; ok {
				continue
			}
			typesSeen[group.Type] = struct{}{}
			add(article, group, group.Entries[0])
		}
	}

	// Second pass: top up from the remaining entries regardless of type.
	for _, article := range sources {
		for _, group := range article.Indicators {
			for _, entry := range group.Entries {
				if len(out) >= maxBackfillIndicators {
					return out
				}
				if _, ok := used[group.Type+"\x00"+entry.Value]; ok {
					continue
				}
				add(article, group, entry)
			}
		}
	}
	return out
}
