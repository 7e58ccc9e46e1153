// PRISM: Predictive Reconnaissance & Intelligence Security Monitoring.
//
// Scrapes threat intelligence sources, extracts IOCs, stores everything in
// SQLite, and generates executive summary reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"prism-cti/internal/config"
	"prism-cti/internal/digest"
	"prism-cti/internal/ioc"
	"prism-cti/internal/report"
	"prism-cti/internal/scraper"
	"prism-cti/internal/store"
	"prism-cti/internal/summarizer"
	"prism-cti/internal/util"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to configuration file")
	initConfig := flag.Bool("init-config", false, "write a starter configuration file and exit")
	runScrape := flag.Bool("scrape", false, "scrape new intelligence from sources")
	runAnalyze := flag.Bool("analyze", false, "analyze and summarize scraped intelligence")
	runReport := flag.Bool("report", false, "generate executive summary report")
	fullRun := flag.Bool("full-run", false, "run complete workflow (scrape, analyze, report)")
	flag.Parse()

	setupLogging()

	if *initConfig {
		if err := config.WriteDefault(*configPath); err != nil {
			logrus.Fatalf("write default config: %v", err)
		}
		logrus.Infof("wrote starter configuration to %s", *configPath)
		return
	}

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logrus.WithError(err).Warn("load .env")
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("load configuration: %v", err)
	}
	logrus.Infof("configuration loaded from %s", *configPath)

	db, err := store.Open(cfg.Database.Path, false)
	if err != nil {
		logrus.Fatalf("open database: %v", err)
	}
	defer db.Close()

	doScrape := *runScrape || *fullRun
	doAnalyze := *runAnalyze || *fullRun
	doReport := *runReport || *fullRun
	if !doScrape && !doAnalyze && !doReport {
		fmt.Println("No operation specified. Use -scrape, -analyze, -report, or -full-run")
		return
	}

	ctx := context.Background()

	if doScrape {
		if err := scrapeSources(ctx, cfg, db); err != nil {
			logrus.Fatalf("scrape: %v", err)
		}
	}
	if doAnalyze {
		if err := analyzeArticles(ctx, cfg, db); err != nil {
			logrus.Fatalf("analyze: %v", err)
		}
	}
	if doReport {
		if err := generateReport(ctx, cfg, db); err != nil {
			logrus.Fatalf("report: %v", err)
		}
	}
}

func setupLogging() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	file, err := os.OpenFile("prism.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		logrus.WithError(err).Warn("open log file, logging to stdout only")
		return
	}
	logrus.SetOutput(io.MultiWriter(os.Stdout, file))
}

func scrapeSources(ctx context.Context, cfg *config.Config, db *store.Database) error {
	timer := util.StartTimer()
	logrus.Info("starting scraping operation")

	sources := make([]scraper.Source, 0, len(cfg.Sources))
	for _, s := range cfg.Sources {
		sources = append(sources, scraper.Source{
			Name:               s.Name,
			URL:                s.URL,
			Type:               s.Type,
			FeedURL:            s.FeedURL,
			URLIncludePatterns: s.URLIncludePatterns,
			URLExcludePatterns: s.URLExcludePatterns,
		})
	}

	extractor := ioc.NewExtractor()
	stored := 0
	for sourceName, articles := range scraper.New(sources).ScrapeAll(ctx) {
		logrus.WithFields(logrus.Fields{
			"source":   sourceName,
			"articles": len(articles),
		}).Info("scraped source")

		for _, a := range articles {
			article := &store.Article{
				Source:        a.Source,
				Title:         a.Title,
				URL:           a.URL,
				Author:        a.Author,
				PublishedDate: a.PublishedDate,
				Content:       a.Content,
				ScrapedAt:     time.Now(),
			}
			if err := db.UpsertArticle(article); err != nil {
				logrus.WithError(err).WithField("url", a.URL).Error("store article")
				continue
			}

			groups := extractor.Extract(a.Content)
			rows := make([]store.IOC, 0)
			for _, group := range groups {
				for _, match := range group.Matches {
					rows = append(rows, store.IOC{
						ArticleID: article.ID,
						Type:      group.Type,
						Value:     match.Value,
						Context:   match.Context,
					})
				}
			}
			if err := db.SaveIOCs(article.ID, rows); err != nil {
				logrus.WithError(err).WithField("url", a.URL).Error("store iocs")
			}
			if err := db.SaveTags(article.ID, a.Tags); err != nil {
				logrus.WithError(err).WithField("url", a.URL).Error("store tags")
			}
			stored++
		}
	}

	logrus.WithFields(logrus.Fields{
		"articles":    stored,
		"duration_ms": timer.ElapsedMs(),
	}).Info("scraping operation completed")
	return nil
}

func analyzeArticles(ctx context.Context, cfg *config.Config, db *store.Database) error {
	timer := util.StartTimer()
	logrus.Info("starting analysis operation")

	articles, err := db.ArticlesWithoutSummary()
	if err != nil {
		return fmt.Errorf("list unanalyzed articles: %w", err)
	}
	logrus.WithField("articles", len(articles)).Info("articles to analyze")
	if len(articles) == 0 {
		return nil
	}

	articleSummarizer, err := buildArticleSummarizer(cfg)
	if err != nil {
		return err
	}

	for _, article := range articles {
		iocs, err := db.IOCsForArticle(article.ID)
		if err != nil {
			logrus.WithError(err).WithField("article", article.ID).Error("load iocs")
			iocs = nil
		}

		summary, err := articleSummarizer.Summarize(ctx, article.Title, article.Content, groupStoredIOCs(iocs))
		if err != nil {
			logrus.WithError(err).WithField("article", article.ID).Error("summarize article")
			if dbErr := db.RecordSummaryFailure(article.ID, err.Error()); dbErr != nil {
				logrus.WithError(dbErr).WithField("article", article.ID).Error("record summary failure")
			}
			continue
		}
		if err := db.UpdateArticleSummary(article.ID, summary); err != nil {
			logrus.WithError(err).WithField("article", article.ID).Error("store summary")
		}
	}

	logrus.WithField("duration_ms", timer.ElapsedMs()).Info("analysis operation completed")
	return nil
}

func generateReport(ctx context.Context, cfg *config.Config, db *store.Database) error {
	timer := util.StartTimer()
	logrus.Info("starting report generation")

	articles, err := db.RecentArticlesWithSummary(cfg.Reporting.TimeWindowDays)
	if err != nil {
		return fmt.Errorf("list recent articles: %w", err)
	}
	if len(articles) == 0 {
		logrus.Info("no recent articles with summaries available for reporting")
		return nil
	}

	summaries := make([]digest.ArticleSummary, 0, len(articles))
	reportArticles := make([]report.Article, 0, len(articles))
	for _, article := range articles {
		iocs, err := db.IOCsForArticle(article.ID)
		if err != nil {
			logrus.WithError(err).WithField("article", article.ID).Error("load iocs")
			iocs = nil
		}
		summaries = append(summaries, digest.ArticleSummary{
			Title:         article.Title,
			Summary:       article.Summary,
			Source:        article.Source,
			URL:           article.URL,
			PublishedDate: article.PublishedDate,
			Indicators:    groupStoredIOCs(iocs),
		})

		appendix := report.Article{
			ID:            article.ID,
			Title:         article.Title,
			URL:           article.URL,
			Source:        article.Source,
			PublishedDate: article.PublishedDate,
			Summary:       article.Summary,
		}
		for _, row := range iocs {
			appendix.IOCs = append(appendix.IOCs, report.ArticleIOC{
				Type:    row.Type,
				Value:   row.Value,
				Context: row.Context,
			})
		}
		reportArticles = append(reportArticles, appendix)
	}

	client, err := summarizer.NewClient(summarizer.Config{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil && !errors.Is(err, summarizer.ErrDisabled) {
		return fmt.Errorf("summarizer client: %w", err)
	}

	result := summarizer.NewExecutiveSummarizer(client).CreateSummary(ctx, summaries)

	record := &store.DigestRecord{
		Stage:        string(result.Stage),
		RawResponse:  result.RawResponse,
		ArticleCount: len(summaries),
	}
	record.SetDigest(result.Digest)
	if err := db.SaveDigest(record); err != nil {
		logrus.WithError(err).Error("persist digest")
	}

	generator, err := report.NewGenerator(cfg.Reporting.OutputDirectory)
	if err != nil {
		return err
	}
	path, err := generator.Generate(result.Digest, reportArticles, cfg.Reporting.Format)
	if err != nil {
		return fmt.Errorf("generate report: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"path":        path,
		"stage":       string(result.Stage),
		"duration_ms": timer.ElapsedMs(),
	}).Info("report generated")
	return nil
}

func buildArticleSummarizer(cfg *config.Config) (summarizer.Summarizer, error) {
	primaryClient, err := summarizer.NewClient(summarizer.Config{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.Model,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("summarizer client: %w", err)
	}
	primary := summarizer.NewArticleSummarizer(primaryClient)
	if cfg.AI.FallbackModel == "" {
		return primary, nil
	}

	fallbackClient, err := summarizer.NewClient(summarizer.Config{
		APIKey:    cfg.AI.APIKey,
		Model:     cfg.AI.FallbackModel,
		MaxTokens: cfg.AI.MaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("fallback summarizer client: %w", err)
	}
	return summarizer.WithFallback(primary, summarizer.NewArticleSummarizer(fallbackClient)), nil
}

// groupStoredIOCs converts stored rows into ordered indicator groups,
// keeping first-seen type order so prompts and backfill stay deterministic.
func groupStoredIOCs(rows []store.IOC) []digest.IndicatorGroup {
	var groups []digest.IndicatorGroup
	index := make(map[string]int)
	for _, row := range rows {
		i, ok := index[row.Type]
		if !ok {
			i = len(groups)
			index[row.Type] = i
			groups = append(groups, digest.IndicatorGroup{Type: row.Type})
		}
		groups[i].Entries = append(groups[i].Entries, digest.SourceIndicator{
			Value:   row.Value,
			Context: row.Context,
		})
	}
	return groups
}
