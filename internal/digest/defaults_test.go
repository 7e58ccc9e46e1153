package digest

import (
	"reflect"
	"testing"
)

func TestValidateAndDefaultPreservesPopulatedFields(t *testing.T) {
	in := Digest{
		ExecutiveSummary: "A complete narrative that needs no defaulting at all.",
		KeyActors:        []Actor{{Name: "Scattered Spider", Description: "Social-engineering led intrusion group"}},
		CriticalIOCs:     []Indicator{{Type: "ip", Value: "198.51.100.4", Description: "Exfil endpoint"}},
		Recommendations:  []string{"Harden help-desk identity verification procedures"},
	}
	out := validateAndDefault(in, nil)
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("populated digest altered:\nin  %+v\nout %+v", in, out)
	}
}

func TestValidateAndDefaultWhitespaceNarrative(t *testing.T) {
	out := validateAndDefault(Digest{ExecutiveSummary: "   \n\t "}, nil)
	if out.ExecutiveSummary != FallbackNarrative {
		t.Fatalf("whitespace narrative not replaced, got %q", out.ExecutiveSummary)
	}
}

func TestBackfillPrefersDistinctTypes(t *testing.T) {
	sources := []ArticleSummary{
		{
			Title: "First report",
			Indicators: []IndicatorGroup{
				{Type: "domain", Entries: []SourceIndicator{{Value: "a.example.net"}, {Value: "b.example.net"}}},
			},
		},
		{
			Title: "Second report",
			Indicators: []IndicatorGroup{
				{Type: "hash", Entries: []SourceIndicator{{Value: "feedfacefeedface"}}},
				{Type: "ip", Entries: []SourceIndicator{{Value: "203.0.113.77"}}},
			},
		},
	}
	out := backfillIndicators(sources)
	if len(out) != 3 {
		t.Fatalf("expected 3 indicators got %v", out)
	}
	// One per distinct type before any repeats.
	want := []string{"domain", "hash", "ip"}
	for i, ioc := range out {
		if ioc.Type != want[i] {
			t.Fatalf("expected types %v got %+v", want, out)
		}
	}
}

func TestBackfillCapsAtThree(t *testing.T) {
	sources := []ArticleSummary{
		{
			Title: "Busy report",
			Indicators: []IndicatorGroup{
				{Type: "domain", Entries: []SourceIndicator{
					{Value: "one.test"}, {Value: "two.test"}, {Value: "three.test"}, {Value: "four.test"},
				}},
			},
		},
	}
	out := backfillIndicators(sources)
	if len(out) != maxBackfillIndicators {
		t.Fatalf("expected cap of %d got %d", maxBackfillIndicators, len(out))
	}
}

func TestBackfillNoSources(t *testing.T) {
	if out := backfillIndicators(nil); len(out) != 0 {
		t.Fatalf("expected no backfill got %v", out)
	}
	d := validateAndDefault(Digest{}, nil)
	if len(d.CriticalIOCs) != 1 || d.CriticalIOCs[0] != PlaceholderIndicator {
		t.Fatalf("expected placeholder indicator got %v", d.CriticalIOCs)
	}
}
