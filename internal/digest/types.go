package digest

// Digest is the schema-complete executive digest recovered from raw model
// output. Every field is guaranteed non-empty by the extraction cascade.
type Digest struct {
	ExecutiveSummary string      `json:"executive_summary"`
	KeyActors        []Actor     `json:"key_actors"`
	CriticalIOCs     []Indicator `json:"critical_iocs"`
	Recommendations  []string    `json:"recommendations"`
}

// Actor names a threat actor surfaced by the analyzed reporting.
type Actor struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// Indicator is a single indicator of compromise carried in the digest. Type
// is an uncontrolled category label (domain, hash, ip, ...).
type Indicator struct {
	Type        string `json:"type"`
	Value       string `json:"value"`
	Description string `json:"description"`
}

// SourceIndicator is one indicator value extracted upstream from an article.
type SourceIndicator struct {
	Value   string
	Context string
}

// IndicatorGroup keeps the indicators of one type in extraction order.
type IndicatorGroup struct {
	Type    string
	Entries []SourceIndicator
}

// ArticleSummary is the per-article material supplied by the caller. The
// engine reads it only for indicator backfill and never mutates it.
type ArticleSummary struct {
	Title         string
	Summary       string
	Source        string
	URL           string
	PublishedDate string
	Indicators    []IndicatorGroup
}

func (d Digest) empty() bool {
	return d.ExecutiveSummary == "" &&
		len(d.KeyActors) == 0 &&
		len(d.CriticalIOCs) == 0 &&
		len(d.Recommendations) == 0
}
