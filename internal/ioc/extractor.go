// Package ioc extracts indicators of compromise from article text with
// typed regex rules, surrounding context, and false-positive filtering.
package ioc

import (
	"net/netip"
	"regexp"
	"strings"
)

// Match is one extracted indicator value with its surrounding context.
type Match struct {
	Value   string
	Context string
}

// Group holds the matches of one indicator type. Group order follows the
// rule table, so extraction output is deterministic.
type Group struct {
	Type    string
	Matches []Match
}

type rule struct {
	name    string
	pattern *regexp.Regexp
}

// Rule order is the output order. Broad patterns (domain, file_path) sit
// where the original tooling put them so downstream consumers see stable
// type ordering.
var rules = []rule{
	{"ip", regexp.MustCompile(`\b(?:(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\.){3}(?:25[0-5]|2[0-4][0-9]|[01]?[0-9][0-9]?)\b`)},
	{"domain", regexp.MustCompile(`\b(?:[a-z0-9](?:[a-z0-9-]{0,61}[a-z0-9])?\.)+[a-z0-9][a-z0-9-]{0,61}[a-z0-9]\b`)},
	{"url", regexp.MustCompile(`https?://(?:[-\w.]|(?:%[\da-fA-F]{2}))+`)},
	{"md5", regexp.MustCompile(`\b[a-fA-F0-9]{32}\b`)},
	{"sha1", regexp.MustCompile(`\b[a-fA-F0-9]{40}\b`)},
	{"sha256", regexp.MustCompile(`\b[a-fA-F0-9]{64}\b`)},
	{"email", regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"cve", regexp.MustCompile(`CVE-\d{4}-\d{4,7}`)},
	{"registry", regexp.MustCompile(`HKEY_[A-Z_]+(?:\\[A-Za-z0-9_]+)+`)},
	{"file_path", regexp.MustCompile(`(?:[a-zA-Z]:\\(?:[^\\/:*?"<>|` + "\r\n" + `]+\\)*[^\\/:*?"<>|` + "\r\n" + `]+|/(?:[^/\x00\s]+/)+[^/\x00\s]+)`)},
	{"mitre_technique", regexp.MustCompile(`T\d{4}(?:\.\d{3})?`)},
	{"user_agent", regexp.MustCompile(`Mozilla/[0-9.]+ \([^)]+\) [^"]+`)},
	{"btc_address", regexp.MustCompile(`\b[13][a-km-zA-HJ-NP-Z1-9]{25,34}\b`)},
	{"eth_address", regexp.MustCompile(`\b0x[a-fA-F0-9]{40}\b`)},
	{"yara_rule", regexp.MustCompile(`\brule\s+[a-zA-Z0-9_]+\s*\{`)},
}

var falsePositives = map[string]map[string]struct{}{
	"ip": toSet(
		"0.0.0.0", "127.0.0.1", "255.255.255.255",
		"1.1.1.1", "8.8.8.8", "8.8.4.4",
	),
	"domain": toSet(
		"example.com", "domain.com", "website.com",
		"google.com", "microsoft.com", "apple.com",
		"facebook.com", "twitter.com", "github.com",
	),
	"md5": toSet(
		strings.Repeat("0", 32), strings.Repeat("a", 32), strings.Repeat("f", 32),
	),
	"sha1": toSet(
		strings.Repeat("0", 40), strings.Repeat("a", 40), strings.Repeat("f", 40),
	),
	"sha256": toSet(
		strings.Repeat("0", 64), strings.Repeat("a", 64), strings.Repeat("f", 64),
	),
}

func toSet(values ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

const contextWindow = 50

// Extractor applies the rule table to raw article text.
type Extractor struct{}

// NewExtractor returns a ready extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract returns all indicator groups found in the text, in rule-table
// order. Types with no surviving matches are omitted.
func (e *Extractor) Extract(text string) []Group {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	var groups []Group
	for _, r := range rules {
		matches := extractWithContext(text, r.pattern)
		var kept []Match
		for _, m := range matches {
			if isFalsePositive(r.name, m.Value) {
				continue
			}
			switch r.name {
			case "ip":
				if !isRoutableIP(m.Value) {
					continue
				}
			case "domain":
				if !strings.Contains(m.Value, ".") {
					continue
				}
			case "md5", "sha1", "sha256":
				if !isLikelyHash(m.Value) {
					continue
				}
			}
			kept = append(kept, m)
		}
		if len(kept) > 0 {
			groups = append(groups, Group{Type: r.name, Matches: kept})
		}
	}
	return groups
}

func extractWithContext(text string, pattern *regexp.Regexp) []Match {
	var out []Match
	for _, loc := range pattern.FindAllStringIndex(text, -1) {
		value := text[loc[0]:loc[1]]
		start := loc[0] - contextWindow
		if start < 0 {
			start = 0
		}
		end := loc[1] + contextWindow
		if end > len(text) {
			end = len(text)
		}
		context := text[start:loc[0]] + "[" + value + "]" + text[loc[1]:end]
		context = strings.Join(strings.Fields(strings.ToValidUTF8(context, "")), " ")
		out = append(out, Match{Value: value, Context: context})
	}
	return out
}

func isFalsePositive(iocType, value string) bool {
	set, ok := falsePositives[iocType]
	if !ok {
		return false
	}
	_, hit := set[value]
	return hit
}

// isRoutableIP rejects anything that is not a public unicast address.
func isRoutableIP(value string) bool {
	addr, err := netip.ParseAddr(value)
	if err != nil {
		return false
	}
	if addr.IsPrivate() || addr.IsLoopback() || addr.IsMulticast() || addr.IsUnspecified() || addr.IsLinkLocalUnicast() {
		return false
	}
	return true
}

// isLikelyHash rejects hex strings whose character distribution looks
// nothing like digest output.
func isLikelyHash(value string) bool {
	counts := make(map[rune]int)
	for _, c := range strings.ToLower(value) {
		if !strings.ContainsRune("0123456789abcdef", c) {
			return false
		}
		counts[c]++
	}
	for _, count := range counts {
		if count*2 > len(value) {
			return false
		}
	}
	return true
}
