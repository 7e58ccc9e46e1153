package store

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"
)

// Database wraps the GORM DB handle and exposes repository helpers.
type Database struct {
	gorm *gorm.DB
	mu   sync.Mutex
}

// Open initializes the SQLite-backed database at the provided path.
func Open(path string, silent bool) (*Database, error) {
	cfg := &gorm.Config{}
	if silent {
		cfg.Logger = logger.Default.LogMode(logger.Silent)
	}
	db, err := gorm.Open(sqlite.Open(path), cfg)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.AutoMigrate(&Article{}, &IOC{}, &Tag{}, &DigestRecord{}); err != nil {
		return nil, fmt.Errorf("auto migrate: %w", err)
	}
	if err := db.Exec("PRAGMA journal_mode=WAL").Error; err != nil {
		logrus.WithError(err).Warn("enable WAL mode")
	}
	if err := db.Exec("PRAGMA synchronous=NORMAL").Error; err != nil {
		logrus.WithError(err).Warn("set synchronous pragma")
	}
	if err := applyIndexes(db); err != nil {
		return nil, fmt.Errorf("apply indexes: %w", err)
	}
	return &Database{gorm: db}, nil
}

// GORM exposes the raw gorm.DB handle.
func (d *Database) GORM() *gorm.DB {
	return d.gorm
}

// Close closes the underlying database connection.
func (d *Database) Close() error {
	if d == nil {
		return nil
	}
	sqlDB, err := d.gorm.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func applyIndexes(db *gorm.DB) error {
	stmts := []string{
		"CREATE INDEX IF NOT EXISTS idx_iocs_value ON iocs (value)",
		"CREATE INDEX IF NOT EXISTS idx_iocs_type ON iocs (type)",
		"CREATE INDEX IF NOT EXISTS idx_articles_analyzed_at ON articles (analyzed_at)",
		"CREATE INDEX IF NOT EXISTS idx_articles_scraped_at ON articles (scraped_at)",
	}
	for _, stmt := range stmts {
		if err := db.Exec(stmt).Error; err != nil {
			return err
		}
	}
	return nil
}

// UpsertArticle inserts the article or refreshes the existing row keyed by
// URL. The stored ID is written back into the argument.
func (d *Database) UpsertArticle(article *Article) error {
	if article == nil {
		return errors.New("article is nil")
	}
	article.URL = strings.TrimSpace(article.URL)
	if article.URL == "" {
		return errors.New("article url required")
	}
	if article.ScrapedAt.IsZero() {
		article.ScrapedAt = time.Now()
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if err := d.gorm.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "url"}},
		DoUpdates: clause.AssignmentColumns([]string{"source", "title", "author", "published_date", "content", "scraped_at", "updated_at"}),
	}).Create(article).Error; err != nil {
		return err
	}
	if article.ID == 0 {
		var existing Article
		if err := d.gorm.Where("url = ?", article.URL).First(&existing).Error; err != nil {
			return err
		}
		article.ID = existing.ID
	}
	return nil
}

// SaveIOCs persists extracted indicators for an article, ignoring duplicates.
func (d *Database) SaveIOCs(articleID uint, iocs []IOC) error {
	if len(iocs) == 0 {
		return nil
	}
	for i := range iocs {
		iocs[i].ArticleID = articleID
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{DoNothing: true}).CreateInBatches(iocs, 250).Error
}

// SaveTags persists article tags, ignoring duplicates.
func (d *Database) SaveTags(articleID uint, tags []string) error {
	if len(tags) == 0 {
		return nil
	}
	rows := make([]Tag, 0, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		rows = append(rows, Tag{ArticleID: articleID, Tag: tag})
	}
	if len(rows) == 0 {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Clauses(clause.OnConflict{DoNothing: true}).Create(&rows).Error
}

// ArticlesWithoutSummary returns articles that still need analysis, oldest
// first. Articles with a recorded summary failure are included so they get
// retried on the next run.
func (d *Database) ArticlesWithoutSummary() ([]Article, error) {
	var articles []Article
	err := d.gorm.
		Where("summary IS NULL OR summary = ''").
		Order("id ASC").
		Find(&articles).Error
	return articles, err
}

// UpdateArticleSummary stores a successful summary and clears any previous
// failure reason.
func (d *Database) UpdateArticleSummary(articleID uint, summary string) error {
	now := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Model(&Article{}).Where("id = ?", articleID).Updates(map[string]any{
		"summary":       summary,
		"summary_error": "",
		"analyzed_at":   &now,
	}).Error
}

// RecordSummaryFailure keeps the failure reason out of the summary field so
// it is never rendered as analyst narrative, and leaves the summary empty so
// the article is retried.
func (d *Database) RecordSummaryFailure(articleID uint, reason string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Model(&Article{}).Where("id = ?", articleID).Updates(map[string]any{
		"summary_error": reason,
	}).Error
}

// RecentArticlesWithSummary returns summarized articles scraped within the
// window, newest first.
func (d *Database) RecentArticlesWithSummary(days int) ([]Article, error) {
	if days <= 0 {
		days = 30
	}
	cutoff := time.Now().AddDate(0, 0, -days)
	var articles []Article
	err := d.gorm.
		Where("summary IS NOT NULL AND summary <> ''").
		Where("scraped_at >= ?", cutoff).
		Order("scraped_at DESC").
		Find(&articles).Error
	return articles, err
}

// IOCsForArticle returns the stored indicators for one article in insertion
// order.
func (d *Database) IOCsForArticle(articleID uint) ([]IOC, error) {
	var iocs []IOC
	err := d.gorm.Where("article_id = ?", articleID).Order("id ASC").Find(&iocs).Error
	return iocs, err
}

// TagsForArticle returns the stored tags for one article.
func (d *Database) TagsForArticle(articleID uint) ([]string, error) {
	var rows []Tag
	if err := d.gorm.Where("article_id = ?", articleID).Order("id ASC").Find(&rows).Error; err != nil {
		return nil, err
	}
	tags := make([]string, 0, len(rows))
	for _, row := range rows {
		tags = append(tags, row.Tag)
	}
	return tags, nil
}

// SaveDigest persists a generated digest record.
func (d *Database) SaveDigest(record *DigestRecord) error {
	if record == nil {
		return errors.New("digest record is nil")
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gorm.Create(record).Error
}

// LatestDigest returns the most recently generated digest, or
// gorm.ErrRecordNotFound when none exists yet.
func (d *Database) LatestDigest() (*DigestRecord, error) {
	var record DigestRecord
	if err := d.gorm.Order("id DESC").First(&record).Error; err != nil {
		return nil, err
	}
	return &record, nil
}

// ListDigests returns digests newest first with paging.
func (d *Database) ListDigests(offset, limit int) ([]DigestRecord, int64, error) {
	var total int64
	if err := d.gorm.Model(&DigestRecord{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := d.gorm.Model(&DigestRecord{}).Order("id DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var records []DigestRecord
	if err := query.Find(&records).Error; err != nil {
		return nil, 0, err
	}
	return records, total, nil
}

// ArticleQuery encapsulates filters and pagination for listing articles.
type ArticleQuery struct {
	Query      string
	Source     string
	Summarized *bool
	Offset     int
	Limit      int
}

// ListArticles returns paginated article records applying optional filters,
// newest first.
func (d *Database) ListArticles(opts ArticleQuery) ([]Article, int64, error) {
	base := d.gorm.Model(&Article{})
	if q := strings.TrimSpace(opts.Query); q != "" {
		like := fmt.Sprintf("%%%s%%", q)
		base = base.Where("title LIKE ? OR content LIKE ?", like, like)
	}
	if source := strings.TrimSpace(opts.Source); source != "" {
		base = base.Where("source = ?", source)
	}
	if opts.Summarized != nil {
		if *opts.Summarized {
			base = base.Where("summary IS NOT NULL AND summary <> ''")
		} else {
			base = base.Where("summary IS NULL OR summary = ''")
		}
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := base.Order("id DESC").Offset(opts.Offset)
	if opts.Limit > 0 {
		query = query.Limit(opts.Limit)
	}
	var articles []Article
	if err := query.Find(&articles).Error; err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// GetArticle fetches one article by ID.
func (d *Database) GetArticle(articleID uint) (*Article, error) {
	var article Article
	if err := d.gorm.First(&article, articleID).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// ListIOCs returns indicators optionally filtered by type, newest first.
func (d *Database) ListIOCs(iocType string, offset, limit int) ([]IOC, int64, error) {
	base := d.gorm.Model(&IOC{})
	if t := strings.TrimSpace(iocType); t != "" {
		base = base.Where("type = ?", t)
	}
	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	query := base.Order("id DESC").Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}
	var iocs []IOC
	if err := query.Find(&iocs).Error; err != nil {
		return nil, 0, err
	}
	return iocs, total, nil
}
