package scraper

import (
	"bytes"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// rssItem covers the RSS 2.0 fields the sources actually populate. Fields
// match by local name, so dc:creator and content:encoded decode too.
type rssItem struct {
	Title       string   `xml:"title"`
	Link        string   `xml:"link"`
	Creator     string   `xml:"creator"`
	PubDate     string   `xml:"pubDate"`
	Description string   `xml:"description"`
	Encoded     string   `xml:"encoded"`
	Categories  []string `xml:"category"`
}

// decodeFeedItems walks the feed token by token and decodes each <item>
// element as it appears, so malformed trailing markup after the items we
// care about does not sink the whole feed.
func decodeFeedItems(r io.Reader) ([]rssItem, error) {
	decoder := xml.NewDecoder(r)
	decoder.Strict = false

	var items []rssItem
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			if len(items) > 0 {
				logrus.WithError(err).Warn("feed decode stopped early")
				break
			}
			return nil, fmt.Errorf("decode feed: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "item" {
			continue
		}
		var item rssItem
		if err := decoder.DecodeElement(&item, &start); err != nil {
			logrus.WithError(err).Warn("skip malformed feed item")
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (s *Scraper) scrapeRSS(ctx context.Context, source Source) ([]Article, error) {
	feedURL := source.FeedURL
	if feedURL == "" {
		feedURL = source.URL
	}
	body, err := s.fetch(ctx, feedURL)
	if err != nil {
		return nil, err
	}
	items, err := decodeFeedItems(bytes.NewReader(body))
	if err != nil {
		return nil, err
	}

	var articles []Article
	for _, item := range items {
		link := strings.TrimSpace(item.Link)
		if link == "" {
			continue
		}
		content := strings.TrimSpace(item.Encoded)
		if content == "" {
			content = strings.TrimSpace(item.Description)
		}
		// Teaser-only feeds carry a sentence or two; fetch the page for
		// the full text when the feed body is that short.
		if len(content) < minFeedContentLen {
			if full := s.FetchArticleContent(ctx, link); full != "" {
				content = full
			}
		}
		if content == "" {
			logrus.WithField("url", link).Warn("skip article with no content")
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = "Unknown Title"
		}
		articles = append(articles, Article{
			Source:        source.Name,
			Title:         title,
			URL:           link,
			Author:        strings.TrimSpace(item.Creator),
			PublishedDate: strings.TrimSpace(item.PubDate),
			Content:       content,
			Tags:          item.Categories,
		})
	}
	return articles, nil
}
