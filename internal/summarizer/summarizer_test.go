package summarizer

import (
	"context"
	"errors"
	"strings"
	"testing"

	"prism-cti/internal/digest"
)

func TestNewClientRequiresAPIKey(t *testing.T) {
	if _, err := NewClient(Config{APIKey: "  "}); !errors.Is(err, ErrDisabled) {
		t.Fatalf("expected ErrDisabled, got %v", err)
	}
	client, err := NewClient(Config{APIKey: "sk-test"})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if !client.Enabled() {
		t.Error("client with key should be enabled")
	}
}

func TestBuildArticlePromptGeneral(t *testing.T) {
	indicators := []digest.IndicatorGroup{
		{Type: "domain", Entries: []digest.SourceIndicator{
			{Value: "evil.example.com", Context: "beacons to [evil.example.com] daily"},
		}},
		{Type: "sha256", Entries: []digest.SourceIndicator{
			{Value: strings.Repeat("ab", 32)},
		}},
	}
	prompt := buildArticlePrompt("New stealer campaign", "Full article body.", indicators)

	for _, want := range []string{
		"Title: New stealer campaign",
		"Full article body.",
		"Extracted Indicators of Compromise (IOCs):",
		"DOMAIN:",
		"- evil.example.com (Context: beacons to [evil.example.com] daily)",
		"SHA256:",
		"250-350 words",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(prompt, "Volexity") {
		t.Error("general prompt should not mention Volexity")
	}
}

func TestBuildArticlePromptVolexityVariant(t *testing.T) {
	prompt := buildArticlePrompt("Volexity tracks new APT activity", "Body.", nil)
	if !strings.Contains(prompt, "Volexity is known for detailed threat actor attribution") {
		t.Error("expected Volexity-specific instructions")
	}
	if !strings.Contains(prompt, "MITRE ATT&CK") {
		t.Error("Volexity prompt should ask for ATT&CK mappings")
	}
	if strings.Contains(prompt, "Extracted Indicators") {
		t.Error("no indicator section expected without indicators")
	}
}

func TestBuildExecutivePrompt(t *testing.T) {
	articles := []digest.ArticleSummary{
		{
			Title:   "Campaign A",
			Summary: "Summary A.",
			Source:  "Feed One",
			URL:     "https://one.example/a",
			Indicators: []digest.IndicatorGroup{
				{Type: "ip", Entries: []digest.SourceIndicator{
					{Value: "203.0.113.1"}, {Value: "203.0.113.2"}, {Value: "203.0.113.3"},
					{Value: "203.0.113.4"}, {Value: "203.0.113.5"}, {Value: "203.0.113.6"},
				}},
			},
		},
		{Title: "Campaign B", Summary: "Summary B.", Source: "Feed Two", URL: "https://two.example/b", PublishedDate: "2026-08-20"},
	}

	prompt, err := buildExecutivePrompt(articles)
	if err != nil {
		t.Fatalf("buildExecutivePrompt: %v", err)
	}
	for _, want := range []string{
		`"title": "Campaign A"`,
		`"published_date": "Unknown"`,
		`"published_date": "2026-08-20"`,
		`"203.0.113.5"`,
		"executive_summary",
		"critical_iocs",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	// Only five indicators of a type make it into the prompt.
	if strings.Contains(prompt, "203.0.113.6") {
		t.Error("expected sixth ip indicator to be dropped")
	}
}

func TestCreateSummaryDisabledFallsBackToDefaults(t *testing.T) {
	e := NewExecutiveSummarizer(nil)
	articles := []digest.ArticleSummary{
		{
			Title: "Campaign A",
			Indicators: []digest.IndicatorGroup{
				{Type: "domain", Entries: []digest.SourceIndicator{{Value: "evil.example.com"}}},
			},
		},
	}

	result := e.CreateSummary(context.Background(), articles)
	if result.Stage != digest.StageDefaulted {
		t.Fatalf("expected defaulted stage, got %q", result.Stage)
	}
	if result.RawResponse != "" {
		t.Errorf("expected empty raw response, got %q", result.RawResponse)
	}
	d := result.Digest
	if d.ExecutiveSummary == "" || len(d.KeyActors) == 0 || len(d.Recommendations) == 0 {
		t.Fatal("defaulted digest must be schema complete")
	}
	// Source indicators backfill critical IOCs instead of the placeholder.
	if len(d.CriticalIOCs) != 1 || d.CriticalIOCs[0].Value != "evil.example.com" {
		t.Errorf("expected backfilled indicator, got %+v", d.CriticalIOCs)
	}
}
