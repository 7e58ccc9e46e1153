package api

import (
	"time"

	"prism-cti/internal/digest"
	"prism-cti/internal/store"
)

// ArticleDTO is the list-view article representation.
type ArticleDTO struct {
	ID            uint   `json:"id"`
	Source        string `json:"source"`
	Title         string `json:"title"`
	URL           string `json:"url"`
	Author        string `json:"author,omitempty"`
	PublishedDate string `json:"published_date,omitempty"`
	Summarized    bool   `json:"summarized"`
	SummaryError  string `json:"summary_error,omitempty"`
	ScrapedAt     string `json:"scraped_at"`
}

// ArticleDetailDTO adds the full content, summary, indicators, and tags.
type ArticleDetailDTO struct {
	ArticleDTO
	Content string   `json:"content"`
	Summary string   `json:"summary,omitempty"`
	IOCs    []IOCDTO `json:"iocs"`
	Tags    []string `json:"tags"`
}

// IOCDTO is one stored indicator.
type IOCDTO struct {
	ID        uint   `json:"id"`
	ArticleID uint   `json:"article_id"`
	Type      string `json:"type"`
	Value     string `json:"value"`
	Context   string `json:"context,omitempty"`
}

// DigestDTO is a stored executive digest plus its provenance.
type DigestDTO struct {
	ID              uint          `json:"id"`
	Digest          digest.Digest `json:"digest"`
	Stage           string        `json:"stage"`
	Degraded        bool          `json:"degraded"`
	DefaultsVersion int           `json:"defaults_version"`
	ArticleCount    int           `json:"article_count"`
	CreatedAt       string        `json:"created_at"`
}

// ArticlesResponse is the paged article list payload.
type ArticlesResponse struct {
	Items []ArticleDTO `json:"items"`
	Total int64        `json:"total"`
}

// IOCsResponse is the paged indicator list payload.
type IOCsResponse struct {
	Items []IOCDTO `json:"items"`
	Total int64    `json:"total"`
}

// DigestsResponse is the paged digest list payload.
type DigestsResponse struct {
	Items []DigestDTO `json:"items"`
	Total int64       `json:"total"`
}

// ArticleFromModel maps a stored article to its list representation.
func ArticleFromModel(row store.Article) ArticleDTO {
	return ArticleDTO{
		ID:            row.ID,
		Source:        row.Source,
		Title:         row.Title,
		URL:           row.URL,
		Author:        row.Author,
		PublishedDate: row.PublishedDate,
		Summarized:    row.Summary != "",
		SummaryError:  row.SummaryError,
		ScrapedAt:     row.ScrapedAt.Format(time.RFC3339),
	}
}

// IOCFromModel maps a stored indicator.
func IOCFromModel(row store.IOC) IOCDTO {
	return IOCDTO{
		ID:        row.ID,
		ArticleID: row.ArticleID,
		Type:      row.Type,
		Value:     row.Value,
		Context:   row.Context,
	}
}

// DigestFromModel maps a stored digest record.
func DigestFromModel(row store.DigestRecord) DigestDTO {
	stage := digest.Stage(row.Stage)
	return DigestDTO{
		ID:              row.ID,
		Digest:          row.Digest(),
		Stage:           row.Stage,
		Degraded:        stage.Degraded(),
		DefaultsVersion: row.DefaultsVersion,
		ArticleCount:    row.ArticleCount,
		CreatedAt:       row.CreatedAt.Format(time.RFC3339),
	}
}
