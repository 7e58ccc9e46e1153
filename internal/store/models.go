package store

import (
	"encoding/json"
	"strings"
	"time"

	"prism-cti/internal/digest"
)

// Article is a scraped threat intelligence article. URL is the natural key;
// re-scraping the same source updates rather than duplicates.
type Article struct {
	ID            uint   `gorm:"primaryKey"`
	Source        string `gorm:"size:128;index"`
	Title         string `gorm:"size:512"`
	URL           string `gorm:"size:512;uniqueIndex"`
	Author        string `gorm:"size:256"`
	PublishedDate string `gorm:"size:64"`
	Content       string `gorm:"type:text"`
	Summary       string `gorm:"type:text"`
	SummaryError  string `gorm:"size:512"`
	ScrapedAt     time.Time
	AnalyzedAt    *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// IOC is one extracted indicator tied to an article.
type IOC struct {
	ID        uint   `gorm:"primaryKey"`
	ArticleID uint   `gorm:"uniqueIndex:idx_iocs_article_type_value"`
	Type      string `gorm:"size:32;uniqueIndex:idx_iocs_article_type_value"`
	Value     string `gorm:"size:512;uniqueIndex:idx_iocs_article_type_value"`
	Context   string `gorm:"type:text"`
	CreatedAt time.Time
}

// TableName pins the table name; the default pluralizer mangles the
// initialism.
func (IOC) TableName() string {
	return "iocs"
}

// Tag is free-form article metadata.
type Tag struct {
	ID        uint   `gorm:"primaryKey"`
	ArticleID uint   `gorm:"uniqueIndex:idx_tags_article_tag"`
	Tag       string `gorm:"size:128;uniqueIndex:idx_tags_article_tag"`
	CreatedAt time.Time
}

// DigestRecord persists a generated executive digest along with the raw
// model response and the cascade stage that produced it, so degraded output
// stays auditable.
type DigestRecord struct {
	ID                  uint   `gorm:"primaryKey"`
	ExecutiveSummary    string `gorm:"type:text"`
	KeyActorsJSON       string `gorm:"type:text"`
	CriticalIOCsJSON    string `gorm:"type:text"`
	RecommendationsJSON string `gorm:"type:text"`
	Stage               string `gorm:"size:32;index"`
	DefaultsVersion     int
	RawResponse         string `gorm:"type:text"`
	ArticleCount        int
	CreatedAt           time.Time `gorm:"autoCreateTime;index"`
}

// SetDigest stores the digest fields, serializing the list fields as JSON.
func (r *DigestRecord) SetDigest(d digest.Digest) {
	r.ExecutiveSummary = d.ExecutiveSummary
	r.KeyActorsJSON = toJSON(d.KeyActors)
	r.CriticalIOCsJSON = toJSON(d.CriticalIOCs)
	r.RecommendationsJSON = toJSON(d.Recommendations)
	r.DefaultsVersion = digest.DefaultsVersion
}

// Digest reconstructs the stored digest.
func (r *DigestRecord) Digest() digest.Digest {
	d := digest.Digest{ExecutiveSummary: r.ExecutiveSummary}
	fromJSON(r.KeyActorsJSON, &d.KeyActors)
	fromJSON(r.CriticalIOCsJSON, &d.CriticalIOCs)
	fromJSON(r.RecommendationsJSON, &d.Recommendations)
	return d
}

func toJSON(v any) string {
	payload, _ := json.Marshal(v)
	return string(payload)
}

func fromJSON(raw string, out any) {
	if strings.TrimSpace(raw) == "" {
		return
	}
	_ = json.Unmarshal([]byte(raw), out)
}
