package summarizer

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"prism-cti/internal/digest"
)

const (
	// Articles beyond this cap are dropped from the prompt to stay inside
	// the model's context window.
	maxDigestArticles = 20
	// At most this many indicators of each type ride along per article.
	maxIndicatorsPerType = 5
)

const executiveSystemPrompt = `You are a senior cybersecurity threat intelligence analyst assistant. Distill complex technical information into clear, business-focused executive summaries.

Always provide structured output in valid JSON format when requested. Be concise and direct in your summaries.

For the executive_summary field:
1. Include ONLY the actual summary text
2. Do NOT include phrases like "Here is the executive summary" or "Based on the analyzed intelligence"
3. Do NOT include references to the JSON structure or other sections
4. Do NOT include the words "executive_summary", "key_actors", "critical_iocs", or "recommendations" in your summary text
5. Write in a clear, professional style appropriate for business executives

For the key_actors, critical_iocs, and recommendations fields:
1. Follow the exact format requested
2. Be specific and detailed for each entry
3. Ensure information is accurate and actionable`

// ExecutiveSummarizer rolls individual article summaries into one executive
// digest. The model reply goes through the extraction cascade, so the result
// is always schema complete regardless of what came back over the wire.
type ExecutiveSummarizer struct {
	client *Client
}

// NewExecutiveSummarizer wraps an API client.
func NewExecutiveSummarizer(client *Client) *ExecutiveSummarizer {
	return &ExecutiveSummarizer{client: client}
}

// Result carries the recovered digest plus the raw reply and the cascade
// stage that produced it, for persistence and degradation visibility.
type Result struct {
	Digest      digest.Digest
	Stage       digest.Stage
	RawResponse string
}

// CreateSummary builds the executive digest from the supplied article
// summaries. It never fails: an API error degrades to the deterministic
// defaults via the cascade.
func (e *ExecutiveSummarizer) CreateSummary(ctx context.Context, articles []digest.ArticleSummary) Result {
	if len(articles) > maxDigestArticles {
		articles = articles[:maxDigestArticles]
	}

	raw := ""
	if e != nil && e.client.Enabled() {
		prompt, err := buildExecutivePrompt(articles)
		if err != nil {
			logrus.WithError(err).Error("build executive prompt")
		} else {
			raw, err = e.client.complete(ctx, executiveSystemPrompt, prompt, 4000)
			if err != nil {
				logrus.WithError(err).Error("executive summary request")
				raw = ""
			}
		}
	} else {
		logrus.Warn("executive summarizer disabled, using defaults")
	}

	d, stage := digest.ExtractWithStage(raw, articles)
	if stage.Degraded() {
		logrus.WithField("stage", string(stage)).Warn("executive digest recovered through degraded path")
	} else {
		logrus.Info("generated executive summary")
	}
	return Result{Digest: d, Stage: stage, RawResponse: raw}
}

// promptArticle is the per-article record serialized into the prompt.
type promptArticle struct {
	Title         string                       `json:"title"`
	Summary       string                       `json:"summary"`
	Source        string                       `json:"source"`
	URL           string                       `json:"url"`
	PublishedDate string                       `json:"published_date"`
	IOCs          map[string][]promptIndicator `json:"iocs,omitempty"`
}

type promptIndicator struct {
	Value   string `json:"value"`
	Context string `json:"context,omitempty"`
}

func buildExecutivePrompt(articles []digest.ArticleSummary) (string, error) {
	records := make([]promptArticle, 0, len(articles))
	for _, a := range articles {
		record := promptArticle{
			Title:         a.Title,
			Summary:       a.Summary,
			Source:        a.Source,
			URL:           a.URL,
			PublishedDate: a.PublishedDate,
		}
		if record.PublishedDate == "" {
			record.PublishedDate = "Unknown"
		}
		for _, group := range a.Indicators {
			if len(group.Entries) == 0 {
				continue
			}
			entries := group.Entries
			if len(entries) > maxIndicatorsPerType {
				entries = entries[:maxIndicatorsPerType]
			}
			if record.IOCs == nil {
				record.IOCs = make(map[string][]promptIndicator)
			}
			for _, entry := range entries {
				record.IOCs[group.Type] = append(record.IOCs[group.Type], promptIndicator{
					Value:   entry.Value,
					Context: entry.Context,
				})
			}
		}
		records = append(records, record)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal article data: %w", err)
	}

	b := &strings.Builder{}
	b.WriteString("You are a senior cybersecurity threat intelligence analyst preparing an executive summary for C-level executives and board members. You have the following summaries of recent threat intelligence articles:\n\n")
	b.Write(data)
	b.WriteString(`

Please create an executive summary that:

1. Identifies the 3-5 most significant cybersecurity threats from these articles
2. Focuses on business impact rather than technical details
3. Highlights industry trends and emerging threats
4. Identifies the most critical threat actors and their targets
5. Provides clear, actionable recommendations for organizational security

Format your response as a structured JSON object with the following keys:
- executive_summary: The main executive summary text (400-600 words) - this should be ONLY the summary text, not references to other sections
- key_actors: Array of objects with "name" and "description" fields for each key threat actor
- critical_iocs: Array of objects with "type", "value", and "description" fields for the most important IOCs
- recommendations: Array of strategic recommendation strings (3-5 bullet points)

Example format:
{
  "executive_summary": "Text of the executive summary...",
  "key_actors": [
    {
      "name": "APT29",
      "description": "Russian state-sponsored group targeting government and defense sectors"
    }
  ],
  "critical_iocs": [
    {
      "type": "domain",
      "value": "malicious-domain.com",
      "description": "C2 server for Emotet campaign"
    }
  ],
  "recommendations": [
    "Implement MFA across all remote access services",
    "Patch vulnerable systems immediately"
  ]
}

Keep the executive summary non-technical and easily understandable by executives without cybersecurity background.
`)
	return b.String(), nil
}
