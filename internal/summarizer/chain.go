package summarizer

import (
	"context"
	"strings"

	"prism-cti/internal/digest"
)

// Summarizer is the per-article summarization surface.
type Summarizer interface {
	Enabled() bool
	Summarize(ctx context.Context, title, content string, indicators []digest.IndicatorGroup) (string, error)
}

type summarizerChain struct {
	primary  Summarizer
	fallback Summarizer
}

// WithFallback returns a summarizer that first tries the primary model and
// falls back to the provided one when the primary is unavailable or produces
// an unusable response.
func WithFallback(primary, fallback Summarizer) Summarizer {
	if primary == nil {
		return fallback
	}
	if fallback == nil {
		return primary
	}
	return &summarizerChain{primary: primary, fallback: fallback}
}

func (c *summarizerChain) Enabled() bool {
	if c == nil {
		return false
	}
	if c.primary != nil && c.primary.Enabled() {
		return true
	}
	return c.fallback != nil && c.fallback.Enabled()
}

func (c *summarizerChain) Summarize(ctx context.Context, title, content string, indicators []digest.IndicatorGroup) (string, error) {
	if c == nil {
		return "", ErrDisabled
	}
	var lastErr error = ErrDisabled
	if c.primary != nil && c.primary.Enabled() {
		summary, err := c.primary.Summarize(ctx, title, content, indicators)
		if err == nil && strings.TrimSpace(summary) != "" {
			return summary, nil
		}
		lastErr = err
	}
	if c.fallback != nil && c.fallback.Enabled() {
		return c.fallback.Summarize(ctx, title, content, indicators)
	}
	return "", lastErr
}
