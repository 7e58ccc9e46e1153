package summarizer

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"prism-cti/internal/digest"
)

const articleSystemPrompt = "You are a cybersecurity threat intelligence analyst assistant. Provide accurate, concise, technical summaries of threat intelligence."

// ArticleSummarizer produces a technical summary for one article. A failed
// call returns an error; the failure is recorded by the caller and never
// written into summary content.
type ArticleSummarizer struct {
	client *Client
}

// NewArticleSummarizer wraps an API client.
func NewArticleSummarizer(client *Client) *ArticleSummarizer {
	return &ArticleSummarizer{client: client}
}

// Enabled reports whether summaries can be generated.
func (a *ArticleSummarizer) Enabled() bool {
	return a != nil && a.client.Enabled()
}

// Summarize generates a 250-350 word technical summary of the article,
// feeding the extracted indicators into the prompt.
func (a *ArticleSummarizer) Summarize(ctx context.Context, title, content string, indicators []digest.IndicatorGroup) (string, error) {
	if !a.Enabled() {
		return "", ErrDisabled
	}
	prompt := buildArticlePrompt(title, content, indicators)
	summary, err := a.client.complete(ctx, articleSystemPrompt, prompt, 2000)
	if err != nil {
		return "", err
	}
	if summary == "" {
		return "", fmt.Errorf("empty summary for %q", title)
	}
	logrus.WithField("title", title).Info("generated article summary")
	return summary, nil
}

func buildArticlePrompt(title, content string, indicators []digest.IndicatorGroup) string {
	b := &strings.Builder{}
	b.WriteString("You are a cybersecurity threat intelligence analyst. You need to create a concise, technical summary of the following ")
	volexity := strings.Contains(strings.ToLower(title), "volexity")
	if volexity {
		b.WriteString("Volexity threat intelligence article.\n\n")
	} else {
		b.WriteString("threat intelligence article.\n\n")
	}
	fmt.Fprintf(b, "Title: %s\n\nContent:\n%s\n\n", title, content)
	if text := formatIndicators(indicators); text != "" {
		b.WriteString(text)
		b.WriteString("\n")
	}
	if volexity {
		b.WriteString(`Volexity is known for detailed threat actor attribution and technical analysis of advanced threats. Please provide a summary that:
1. Identifies the key threat actors mentioned (including any APT group names or attributions)
2. Extracts the specific TTPs (Tactics, Techniques, and Procedures)
3. Summarizes the technical details of the attack, malware, or vulnerability
4. Highlights the most significant IOCs and any MITRE ATT&CK mappings
5. Notes the industries, sectors, or geographic regions targeted
6. Explains the potential impact, severity, and recommended mitigations

Your summary should be technical but clear, aimed at cybersecurity professionals. Keep the summary concise (250-350 words) and emphasize attribution details and actionable intelligence.
`)
	} else {
		b.WriteString(`Please provide a summary that:
1. Identifies the key threat actors, malware, or attack vectors
2. Summarizes the technical details of the attack or vulnerability
3. Highlights the most significant IOCs
4. Notes the industries or sectors targeted
5. Explains the potential impact and severity
6. Provides any recommended mitigations or defensive measures

Your summary should be technical but clear, aimed at cybersecurity professionals. Keep the summary concise (250-350 words) and focus on actionable intelligence.
`)
	}
	return b.String()
}

func formatIndicators(groups []digest.IndicatorGroup) string {
	if len(groups) == 0 {
		return ""
	}
	b := &strings.Builder{}
	b.WriteString("Extracted Indicators of Compromise (IOCs):\n")
	for _, group := range groups {
		if len(group.Entries) == 0 {
			continue
		}
		fmt.Fprintf(b, "\n%s:\n", strings.ToUpper(group.Type))
		for _, entry := range group.Entries {
			fmt.Fprintf(b, "- %s", entry.Value)
			if entry.Context != "" {
				fmt.Fprintf(b, " (Context: %s)", entry.Context)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}
