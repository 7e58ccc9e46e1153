// Package scraper collects threat intelligence articles from configured RSS
// and web sources.
package scraper

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	htmltomarkdown "github.com/JohannesKaufmann/html-to-markdown/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/html"
)

// Source describes one configured intelligence source.
type Source struct {
	Name               string
	URL                string
	Type               string // "rss" or "web"
	FeedURL            string
	URLIncludePatterns []string
	URLExcludePatterns []string
}

// Article is a scraped article before persistence.
type Article struct {
	Source        string
	Title         string
	URL           string
	Author        string
	PublishedDate string
	Content       string
	Tags          []string
}

const (
	defaultTimeout = 30 * time.Second
	// Responses larger than this are cut off rather than buffered whole.
	maxBodySize = 10 * 1024 * 1024
	// Feeds that only carry teasers get the full article fetched instead.
	minFeedContentLen = 1000
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/15.0 Safari/605.1.15",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:90.0) Gecko/20100101 Firefox/90.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10.15; rv:90.0) Gecko/20100101 Firefox/90.0",
}

// Scraper fetches articles from all configured sources.
type Scraper struct {
	sources    []Source
	httpClient *http.Client
	// Pause between sources so feeds are not hammered. Zero in tests.
	Delay   time.Duration
	uaIndex int
}

// New constructs a scraper over the provided sources.
func New(sources []Source) *Scraper {
	return &Scraper{
		sources:    sources,
		httpClient: &http.Client{Timeout: defaultTimeout},
		Delay:      time.Second,
	}
}

func (s *Scraper) nextUserAgent() string {
	ua := userAgents[s.uaIndex%len(userAgents)]
	s.uaIndex++
	return ua
}

// ScrapeAll scrapes every configured source and returns articles keyed by
// source name. Per-source failures are logged and skipped; the run itself
// never fails.
func (s *Scraper) ScrapeAll(ctx context.Context) map[string][]Article {
	results := make(map[string][]Article)
	for i, source := range s.sources {
		if i > 0 && s.Delay > 0 {
			select {
			case <-ctx.Done():
				return results
			case <-time.After(s.Delay):
			}
		}
		logrus.WithField("source", source.Name).Info("scraping source")
		var (
			articles []Article
			err      error
		)
		switch source.Type {
		case "rss":
			articles, err = s.scrapeRSS(ctx, source)
		case "web":
			articles, err = s.scrapeWeb(ctx, source)
		default:
			logrus.WithField("type", source.Type).Warn("unsupported source type")
			continue
		}
		if err != nil {
			logrus.WithError(err).WithField("source", source.Name).Error("scrape source")
			continue
		}
		results[source.Name] = articles
	}
	return results
}

func (s *Scraper) fetch(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", s.nextUserAgent())

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request %s: status %d", rawURL, resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return body, nil
}

// FetchArticleContent retrieves an article page and converts it to markdown
// text. Failures return an empty string; the caller decides whether the
// teaser content suffices.
func (s *Scraper) FetchArticleContent(ctx context.Context, articleURL string) string {
	body, err := s.fetch(ctx, articleURL)
	if err != nil {
		logrus.WithError(err).WithField("url", articleURL).Warn("fetch article content")
		return ""
	}
	markdown, err := htmltomarkdown.ConvertString(string(body))
	if err != nil {
		logrus.WithError(err).WithField("url", articleURL).Warn("convert article html")
		return ""
	}
	return strings.TrimSpace(markdown)
}

func (s *Scraper) scrapeWeb(ctx context.Context, source Source) ([]Article, error) {
	body, err := s.fetch(ctx, source.URL)
	if err != nil {
		return nil, err
	}
	base, err := url.Parse(source.URL)
	if err != nil {
		return nil, fmt.Errorf("parse source url: %w", err)
	}

	var articles []Article
	seen := make(map[string]struct{})
	for _, link := range extractLinks(body) {
		ref, err := url.Parse(strings.TrimSpace(link.href))
		if err != nil {
			continue
		}
		abs := base.ResolveReference(ref).String()
		if _, ok := seen[abs]; ok {
			continue
		}
		seen[abs] = struct{}{}
		if !isArticleURL(abs, source) {
			continue
		}
		title := strings.TrimSpace(link.text)
		if title == "" {
			title = "Unknown Title"
		}
		content := s.FetchArticleContent(ctx, abs)
		if content == "" {
			continue
		}
		articles = append(articles, Article{
			Source:  source.Name,
			Title:   title,
			URL:     abs,
			Content: content,
		})
	}
	return articles, nil
}

type anchor struct {
	href string
	text string
}

func extractLinks(body []byte) []anchor {
	root, err := html.Parse(bytes.NewReader(body))
	if err != nil {
		return nil
	}
	var anchors []anchor
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == "a" {
			var href string
			for _, attr := range n.Attr {
				if attr.Key == "href" {
					href = attr.Val
				}
			}
			if href != "" {
				anchors = append(anchors, anchor{href: href, text: nodeText(n)})
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)
	return anchors
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func isArticleURL(articleURL string, source Source) bool {
	if len(source.URLIncludePatterns) > 0 {
		for _, pattern := range source.URLIncludePatterns {
			if strings.Contains(articleURL, pattern) {
				return true
			}
		}
		return false
	}
	for _, pattern := range source.URLExcludePatterns {
		if strings.Contains(articleURL, pattern) {
			return false
		}
	}
	return true
}
