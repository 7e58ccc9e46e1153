package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"prism-cti/internal/digest"
)

func testDigest() digest.Digest {
	return digest.Digest{
		ExecutiveSummary: "Ransomware activity surged this period.\n\nSeveral sectors saw targeted intrusions.",
		KeyActors: []digest.Actor{
			{Name: "APT29", Description: "Russian state-sponsored group targeting government sectors"},
		},
		CriticalIOCs: []digest.Indicator{
			{Type: "domain", Value: "c2.example.net", Description: "C2 server for active campaign"},
		},
		Recommendations: []string{
			"Implement MFA across all remote access services",
			"Patch internet-facing systems immediately",
		},
	}
}

func testArticles() []Article {
	return []Article{
		{
			ID:            7,
			Title:         "New ransomware <wave> hits healthcare",
			URL:           "https://blog.example/wave",
			Source:        "Vendor Blog",
			PublishedDate: "2026-08-21",
			Summary:       "Operators encrypted hospital systems within hours of access.",
			IOCs:          []ArticleIOC{{Type: "domain", Value: "c2.example.net"}},
		},
	}
}

func newTestGenerator(t *testing.T) *Generator {
	t.Helper()
	g, err := NewGenerator(t.TempDir())
	if err != nil {
		t.Fatalf("NewGenerator: %v", err)
	}
	g.now = func() time.Time {
		return time.Date(2026, 8, 25, 9, 30, 0, 0, time.UTC)
	}
	return g
}

func TestGenerateHTMLReport(t *testing.T) {
	g := newTestGenerator(t)

	path, err := g.Generate(testDigest(), testArticles(), "html")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if filepath.Base(path) != "prism_report_20260825_093000.html" {
		t.Errorf("unexpected filename %q", filepath.Base(path))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(data)
	for _, want := range []string{
		"PRISM Intelligence Executive Summary - August 25, 2026",
		"<p>Ransomware activity surged this period.</p>",
		"<p>Several sectors saw targeted intrusions.</p>",
		"APT29",
		"c2.example.net",
		"Implement MFA across all remote access services",
		"https://blog.example/wave",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("html report missing %q", want)
		}
	}
	// Title markup must be escaped, not injected.
	if strings.Contains(html, "<wave>") {
		t.Error("article title was not escaped")
	}
	if !strings.Contains(html, "&lt;wave&gt;") {
		t.Error("expected escaped article title")
	}
}

func TestGenerateMarkdownReport(t *testing.T) {
	g := newTestGenerator(t)

	path, err := g.Generate(testDigest(), testArticles(), "markdown")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasSuffix(path, ".md") {
		t.Errorf("unexpected path %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	md := string(data)
	for _, want := range []string{
		"# PRISM Intelligence Executive Summary",
		"### APT29",
		"| domain | `c2.example.net` | C2 server for active campaign |",
		"1. Implement MFA across all remote access services",
		"### [New ransomware <wave> hits healthcare](https://blog.example/wave)",
		"Confidential - For internal use only",
	} {
		if !strings.Contains(md, want) {
			t.Errorf("markdown report missing %q", want)
		}
	}
}

func TestGenerateJSONReport(t *testing.T) {
	g := newTestGenerator(t)

	path, err := g.Generate(testDigest(), testArticles(), "json")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded struct {
		Title            string        `json:"title"`
		GeneratedDate    string        `json:"generated_date"`
		ExecutiveSummary digest.Digest `json:"executive_summary"`
		Articles         []Article     `json:"articles"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.ExecutiveSummary.KeyActors[0].Name != "APT29" {
		t.Errorf("unexpected actors %+v", decoded.ExecutiveSummary.KeyActors)
	}
	if len(decoded.Articles) != 1 || decoded.Articles[0].ID != 7 {
		t.Errorf("unexpected articles %+v", decoded.Articles)
	}
}

func TestGenerateUnknownFormatDefaultsToHTML(t *testing.T) {
	g := newTestGenerator(t)

	path, err := g.Generate(testDigest(), nil, "docx")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if !strings.HasSuffix(path, ".html") {
		t.Errorf("expected html fallback, got %q", path)
	}
	data, _ := os.ReadFile(path)
	if !strings.Contains(string(data), "No recent articles available.") {
		t.Error("expected empty-appendix placeholder")
	}
}
