package digest

import "testing"

// Section recovery input with no parseable object at all: labels and bracket
// regions only, irregular quoting.
const sectionText = `Here is what I found this week.

"executive_summary": "Multiple state-aligned espionage campaigns resurfaced this week, alongside a wave of ransomware intrusions targeting logistics firms."

"key_actors": ["name": "APT29", "description": "Russian state-aligned espionage group", "name": "FIN7", "description": "Financially motivated intrusion crew"]

"critical_iocs": ["type": "domain", "value": "bad-cdn.net", "description": "Staging server", "type": "sha256", "value": "9f2c41d86b2357aa", "description": "Loader sample"]

"recommendations": ["Rotate credentials exposed to the staging server", ",", "Block bad-cdn.net at the proxy"]
`

func TestRecoverSectionsNarrative(t *testing.T) {
	d := recoverSections(sectionText)
	want := "Multiple state-aligned espionage campaigns resurfaced this week, alongside a wave of ransomware intrusions targeting logistics firms."
	if d.ExecutiveSummary != want {
		t.Fatalf("expected narrative %q got %q", want, d.ExecutiveSummary)
	}
}

func TestRecoverSectionsActors(t *testing.T) {
	d := recoverSections(sectionText)
	if len(d.KeyActors) != 2 {
		t.Fatalf("expected 2 actors got %d: %v", len(d.KeyActors), d.KeyActors)
	}
	if d.KeyActors[0].Name != "APT29" || d.KeyActors[0].Description != "Russian state-aligned espionage group" {
		t.Fatalf("unexpected first actor %+v", d.KeyActors[0])
	}
	if d.KeyActors[1].Name != "FIN7" {
		t.Fatalf("unexpected second actor %+v", d.KeyActors[1])
	}
}

func TestRecoverSectionsIndicators(t *testing.T) {
	d := recoverSections(sectionText)
	if len(d.CriticalIOCs) != 2 {
		t.Fatalf("expected 2 indicators got %d: %v", len(d.CriticalIOCs), d.CriticalIOCs)
	}
	first := d.CriticalIOCs[0]
	if first.Type != "domain" || first.Value != "bad-cdn.net" || first.Description != "Staging server" {
		t.Fatalf("unexpected first indicator %+v", first)
	}
	if d.CriticalIOCs[1].Type != "sha256" || d.CriticalIOCs[1].Value != "9f2c41d86b2357aa" {
		t.Fatalf("unexpected second indicator %+v", d.CriticalIOCs[1])
	}
}

func TestRecoverSectionsRecommendationFiltering(t *testing.T) {
	d := recoverSections(sectionText)
	// The stray "," artifact must be excluded alongside anything else at or
	// under the length threshold.
	if len(d.Recommendations) != 2 {
		t.Fatalf("expected 2 recommendations got %d: %v", len(d.Recommendations), d.Recommendations)
	}
	if d.Recommendations[0] != "Rotate credentials exposed to the staging server" {
		t.Fatalf("unexpected first recommendation %q", d.Recommendations[0])
	}
	for _, rec := range d.Recommendations {
		if len(rec) <= minRecommendationLen {
			t.Fatalf("recommendation %q under length threshold survived", rec)
		}
	}
}

func TestRecoverSectionsShortNarrativeRejected(t *testing.T) {
	d := recoverSections(`"executive_summary": "Too short to count."`)
	if d.ExecutiveSummary != "" {
		t.Fatalf("expected short narrative rejected, got %q", d.ExecutiveSummary)
	}
}

func TestRecoverSectionsIndependence(t *testing.T) {
	// Only a recommendations section exists; the other extractors must fail
	// quietly without blocking it.
	text := `"recommendations": ["Segment the management network from user VLANs"]`
	d := recoverSections(text)
	if d.ExecutiveSummary != "" || len(d.KeyActors) != 0 || len(d.CriticalIOCs) != 0 {
		t.Fatalf("expected only recommendations populated, got %+v", d)
	}
	if len(d.Recommendations) != 1 {
		t.Fatalf("expected 1 recommendation got %v", d.Recommendations)
	}
}

func TestRecoverSectionsNothingFound(t *testing.T) {
	d := recoverSections("completely unrelated prose with no labels")
	if !d.empty() {
		t.Fatalf("expected empty partial, got %+v", d)
	}
}
