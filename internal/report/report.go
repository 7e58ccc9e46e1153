// Package report renders executive digests into HTML, Markdown, and JSON
// reports on disk.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"prism-cti/internal/digest"
)

// Article is the per-article appendix material for a report.
type Article struct {
	ID            uint         `json:"id"`
	Title         string       `json:"title"`
	URL           string       `json:"url"`
	Source        string       `json:"source"`
	PublishedDate string       `json:"published_date"`
	Summary       string       `json:"summary"`
	IOCs          []ArticleIOC `json:"iocs,omitempty"`
}

// ArticleIOC is one indicator attached to an appendix article.
type ArticleIOC struct {
	Type    string `json:"type"`
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

// Generator writes reports into an output directory.
type Generator struct {
	outputDir string
	now       func() time.Time
}

// NewGenerator creates the output directory if needed and returns a
// generator writing into it.
func NewGenerator(outputDir string) (*Generator, error) {
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}
	return &Generator{outputDir: outputDir, now: time.Now}, nil
}

// Generate renders the digest and article appendix in the requested format
// and returns the path of the written report. Unknown formats fall back to
// HTML.
func (g *Generator) Generate(d digest.Digest, articles []Article, format string) (string, error) {
	timestamp := g.now().Format("20060102_150405")
	switch strings.ToLower(format) {
	case "", "html":
		return g.generateHTML(d, articles, timestamp)
	case "markdown", "md":
		return g.generateMarkdown(d, articles, timestamp)
	case "json":
		return g.generateJSON(d, articles, timestamp)
	default:
		logrus.WithField("format", format).Warn("unsupported report format, defaulting to html")
		return g.generateHTML(d, articles, timestamp)
	}
}

type templateData struct {
	Title        string
	Date         string
	Summary      digest.Digest
	SummaryParas []string
	Articles     []Article
}

func (g *Generator) generateHTML(d digest.Digest, articles []Article, timestamp string) (string, error) {
	now := g.now()
	data := templateData{
		Title:        fmt.Sprintf("PRISM Intelligence Executive Summary - %s", now.Format("January 2, 2006")),
		Date:         now.Format("January 2, 2006 15:04"),
		Summary:      d,
		SummaryParas: splitParagraphs(d.ExecutiveSummary),
		Articles:     articles,
	}

	path := filepath.Join(g.outputDir, fmt.Sprintf("prism_report_%s.html", timestamp))
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := reportTemplate.Execute(f, data); err != nil {
		return "", fmt.Errorf("render report: %w", err)
	}
	logrus.WithField("path", path).Info("generated html report")
	return path, nil
}

func (g *Generator) generateMarkdown(d digest.Digest, articles []Article, timestamp string) (string, error) {
	b := &strings.Builder{}
	b.WriteString("# PRISM Intelligence Executive Summary\n\n")
	fmt.Fprintf(b, "Generated: %s\n\n", g.now().Format("January 2, 2006 15:04"))

	b.WriteString("## Executive Summary\n\n")
	b.WriteString(d.ExecutiveSummary + "\n\n")

	b.WriteString("## Key Threat Actors\n\n")
	for _, actor := range d.KeyActors {
		fmt.Fprintf(b, "### %s\n\n%s\n\n", actor.Name, actor.Description)
	}

	b.WriteString("## Critical Indicators of Compromise\n\n")
	b.WriteString("| Type | Value | Description |\n")
	b.WriteString("|------|-------|-------------|\n")
	for _, ioc := range d.CriticalIOCs {
		fmt.Fprintf(b, "| %s | `%s` | %s |\n", ioc.Type, ioc.Value, ioc.Description)
	}
	b.WriteString("\n")

	b.WriteString("## Strategic Recommendations\n\n")
	for i, rec := range d.Recommendations {
		fmt.Fprintf(b, "%d. %s\n", i+1, rec)
	}
	b.WriteString("\n")

	b.WriteString("## Recent Threat Intelligence\n\n")
	if len(articles) == 0 {
		b.WriteString("No recent articles available.\n\n")
	}
	for _, article := range articles {
		fmt.Fprintf(b, "### [%s](%s)\n\n", article.Title, article.URL)
		fmt.Fprintf(b, "Source: %s | %s\n\n", article.Source, orUnknown(article.PublishedDate))
		b.WriteString(article.Summary + "\n\n---\n\n")
	}

	b.WriteString("*This report was automatically generated by PRISM - Predictive Reconnaissance & Intelligence Security Monitoring.*\n\n")
	b.WriteString("**Confidential - For internal use only**\n")

	path := filepath.Join(g.outputDir, fmt.Sprintf("prism_report_%s.md", timestamp))
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logrus.WithField("path", path).Info("generated markdown report")
	return path, nil
}

func (g *Generator) generateJSON(d digest.Digest, articles []Article, timestamp string) (string, error) {
	now := g.now()
	payload := struct {
		Title            string        `json:"title"`
		GeneratedDate    string        `json:"generated_date"`
		ExecutiveSummary digest.Digest `json:"executive_summary"`
		Articles         []Article     `json:"articles"`
	}{
		Title:            fmt.Sprintf("PRISM Intelligence Executive Summary - %s", now.Format("January 2, 2006")),
		GeneratedDate:    now.Format(time.RFC3339),
		ExecutiveSummary: d,
		Articles:         articles,
	}

	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal report: %w", err)
	}
	path := filepath.Join(g.outputDir, fmt.Sprintf("prism_report_%s.json", timestamp))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write report: %w", err)
	}
	logrus.WithField("path", path).Info("generated json report")
	return path, nil
}

func splitParagraphs(text string) []string {
	var paras []string
	for _, p := range strings.Split(text, "\n\n") {
		p = strings.TrimSpace(p)
		if p != "" {
			paras = append(paras, p)
		}
	}
	return paras
}

func orUnknown(s string) string {
	if strings.TrimSpace(s) == "" {
		return "Unknown date"
	}
	return s
}
