package store

import (
	"path/filepath"
	"testing"
	"time"

	"prism-cti/internal/digest"
)

func openTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "test.db"), true)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestUpsertArticleDeduplicatesByURL(t *testing.T) {
	db := openTestDB(t)

	first := &Article{Source: "Feed", Title: "Original title", URL: "https://x.example/a", ScrapedAt: time.Now()}
	if err := db.UpsertArticle(first); err != nil {
		t.Fatalf("UpsertArticle: %v", err)
	}
	second := &Article{Source: "Feed", Title: "Updated title", URL: "https://x.example/a", ScrapedAt: time.Now()}
	if err := db.UpsertArticle(second); err != nil {
		t.Fatalf("UpsertArticle again: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("expected same id after upsert, got %d and %d", first.ID, second.ID)
	}

	var total int64
	if err := db.GORM().Model(&Article{}).Count(&total).Error; err != nil {
		t.Fatal(err)
	}
	if total != 1 {
		t.Errorf("expected 1 article, got %d", total)
	}
	got, err := db.GetArticle(first.ID)
	if err != nil {
		t.Fatalf("GetArticle: %v", err)
	}
	if got.Title != "Updated title" {
		t.Errorf("expected updated title, got %q", got.Title)
	}
}

func TestSummaryFailureNeverTouchesSummary(t *testing.T) {
	db := openTestDB(t)

	article := &Article{Source: "Feed", Title: "A", URL: "https://x.example/a", ScrapedAt: time.Now()}
	if err := db.UpsertArticle(article); err != nil {
		t.Fatal(err)
	}

	if err := db.RecordSummaryFailure(article.ID, "anthropic request: overloaded"); err != nil {
		t.Fatalf("RecordSummaryFailure: %v", err)
	}
	got, _ := db.GetArticle(article.ID)
	if got.Summary != "" {
		t.Errorf("failure must not write into summary, got %q", got.Summary)
	}
	if got.SummaryError == "" {
		t.Error("expected failure reason recorded")
	}
	if got.AnalyzedAt != nil {
		t.Error("failed article must stay unanalyzed")
	}

	// The article still shows up for retry.
	pending, err := db.ArticlesWithoutSummary()
	if err != nil {
		t.Fatal(err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected article to remain pending, got %d", len(pending))
	}

	// A later success clears the recorded failure.
	if err := db.UpdateArticleSummary(article.ID, "Actual analyst summary."); err != nil {
		t.Fatalf("UpdateArticleSummary: %v", err)
	}
	got, _ = db.GetArticle(article.ID)
	if got.Summary != "Actual analyst summary." || got.SummaryError != "" {
		t.Errorf("unexpected state after success: summary=%q error=%q", got.Summary, got.SummaryError)
	}
	if got.AnalyzedAt == nil {
		t.Error("expected analyzed_at set")
	}
}

func TestSaveIOCsIgnoresDuplicates(t *testing.T) {
	db := openTestDB(t)

	article := &Article{Source: "Feed", Title: "A", URL: "https://x.example/a", ScrapedAt: time.Now()}
	if err := db.UpsertArticle(article); err != nil {
		t.Fatal(err)
	}
	rows := []IOC{
		{ArticleID: article.ID, Type: "domain", Value: "c2.example.net"},
		{ArticleID: article.ID, Type: "ip", Value: "203.0.113.9"},
	}
	if err := db.SaveIOCs(article.ID, rows); err != nil {
		t.Fatalf("SaveIOCs: %v", err)
	}
	// Re-scraping stores the same indicators again without duplicating.
	if err := db.SaveIOCs(article.ID, rows); err != nil {
		t.Fatalf("SaveIOCs again: %v", err)
	}

	stored, err := db.IOCsForArticle(article.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(stored) != 2 {
		t.Errorf("expected 2 iocs, got %d", len(stored))
	}
}

func TestRecentArticlesWithSummaryWindow(t *testing.T) {
	db := openTestDB(t)

	recent := &Article{Source: "Feed", Title: "Recent", URL: "https://x.example/recent", Summary: "S", ScrapedAt: time.Now()}
	old := &Article{Source: "Feed", Title: "Old", URL: "https://x.example/old", Summary: "S", ScrapedAt: time.Now().AddDate(0, 0, -60)}
	unsummarized := &Article{Source: "Feed", Title: "Pending", URL: "https://x.example/pending", ScrapedAt: time.Now()}
	for _, a := range []*Article{recent, old, unsummarized} {
		if err := db.UpsertArticle(a); err != nil {
			t.Fatal(err)
		}
	}

	got, err := db.RecentArticlesWithSummary(30)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 1 || got[0].Title != "Recent" {
		t.Fatalf("unexpected window result %+v", got)
	}
}

func TestDigestRecordRoundTrip(t *testing.T) {
	db := openTestDB(t)

	d := digest.Digest{
		ExecutiveSummary: "Narrative.",
		KeyActors:        []digest.Actor{{Name: "FIN7", Description: "Financially motivated"}},
		CriticalIOCs:     []digest.Indicator{{Type: "ip", Value: "203.0.113.9", Description: "Scanner"}},
		Recommendations:  []string{"Patch now"},
	}
	record := &DigestRecord{Stage: string(digest.StageSpanParse), RawResponse: "{...}", ArticleCount: 4}
	record.SetDigest(d)
	if err := db.SaveDigest(record); err != nil {
		t.Fatalf("SaveDigest: %v", err)
	}
	if record.DefaultsVersion != digest.DefaultsVersion {
		t.Errorf("defaults version not stamped, got %d", record.DefaultsVersion)
	}

	latest, err := db.LatestDigest()
	if err != nil {
		t.Fatalf("LatestDigest: %v", err)
	}
	got := latest.Digest()
	if got.KeyActors[0].Name != "FIN7" || got.CriticalIOCs[0].Value != "203.0.113.9" {
		t.Errorf("round trip mismatch: %+v", got)
	}
	if latest.ArticleCount != 4 {
		t.Errorf("unexpected article count %d", latest.ArticleCount)
	}
}
