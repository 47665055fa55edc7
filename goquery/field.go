package goquery

import (
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/reelscout"
)

// candidate is one parsed entry of a selector list: a CSS selector and the
// attribute to read. An empty attr reads the element text.
type candidate struct {
	css  string
	attr string
}

// parseCandidate splits "css@attr" into its parts.
func parseCandidate(raw string) candidate {
	raw = strings.TrimSpace(raw)
	if i := strings.LastIndex(raw, "@"); i > 0 && !strings.ContainsAny(raw[i:], " ]>") {
		return candidate{css: strings.TrimSpace(raw[:i]), attr: raw[i+1:]}
	}
	return candidate{css: raw}
}

// defaultAttrs lists the attributes read for a field when the selector
// names none, in preference order. Image fields prefer lazy-loading
// attributes over placeholder src values.
func defaultAttrs(field reelscout.Field) []string {
	switch field {
	case reelscout.FieldURL:
		return []string{"href"}
	case reelscout.FieldImage, reelscout.FieldBackdrop:
		return []string{"data-src", "data-original", "src"}
	default:
		return nil
	}
}

// firstValue returns the value of the first candidate selector that matches
// a node with a non-empty value. Later candidates are not consulted once one
// resolves.
func firstValue(scope *goquery.Selection, field reelscout.Field, selectors []string) (string, *goquery.Selection) {
	for _, raw := range selectors {
		c := parseCandidate(raw)
		if c.css == "" {
			continue
		}
		var found string
		var node *goquery.Selection
		scope.Find(c.css).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if v := readValue(sel, field, c.attr); v != "" {
				found, node = v, sel
				return false
			}
			return true
		})
		if found != "" {
			return found, node
		}
	}
	return "", nil
}

// allValues returns every non-empty value of the first candidate selector
// that yields any. Comma separated text is split into separate values.
func allValues(scope *goquery.Selection, field reelscout.Field, selectors []string) []string {
	for _, raw := range selectors {
		c := parseCandidate(raw)
		if c.css == "" {
			continue
		}
		var values []string
		seen := make(map[string]bool)
		scope.Find(c.css).Each(func(_ int, sel *goquery.Selection) {
			for _, part := range strings.Split(readValue(sel, field, c.attr), ",") {
				part = strings.TrimSpace(part)
				key := strings.ToLower(part)
				if part == "" || seen[key] {
					continue
				}
				seen[key] = true
				values = append(values, part)
			}
		})
		if len(values) > 0 {
			return values
		}
	}
	return nil
}

func readValue(sel *goquery.Selection, field reelscout.Field, attr string) string {
	if attr != "" {
		v, _ := sel.Attr(attr)
		return strings.TrimSpace(v)
	}
	for _, a := range defaultAttrs(field) {
		if v, ok := sel.Attr(a); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	if len(defaultAttrs(field)) > 0 {
		return ""
	}
	return collapseSpace(sel.Text())
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL resolves href against base. Non-HTTP links resolve to "".
func resolveURL(base *url.URL, href string) string {
	if isNonHTTPLink(href) {
		return ""
	}
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}
	resolved := base.ResolveReference(ref)
	resolved.Fragment = ""
	return resolved.String()
}

// isNonHTTPLink checks if a href is a non-HTTP link that should be skipped.
func isNonHTTPLink(href string) bool {
	href = strings.ToLower(strings.TrimSpace(href))
	return strings.HasPrefix(href, "javascript:") ||
		strings.HasPrefix(href, "mailto:") ||
		strings.HasPrefix(href, "tel:") ||
		strings.HasPrefix(href, "data:")
}

var (
	numberPattern = regexp.MustCompile(`\d+(?:\.\d+)?`)
	yearPattern   = regexp.MustCompile(`\b(?:19|20)\d{2}\b`)
)

// parseRating reads the first number in s on a 0-10 scale. Percentages are
// scaled down.
func parseRating(s string) *float64 {
	m := numberPattern.FindString(s)
	if m == "" {
		return nil
	}
	v, err := strconv.ParseFloat(m, 64)
	if err != nil {
		return nil
	}
	if strings.Contains(s, "%") || v > reelscout.MaxRating {
		v /= 10
	}
	v = min(max(v, 0), reelscout.MaxRating)
	return &v
}

func parseYear(s string) *int {
	m := yearPattern.FindString(s)
	if m == "" {
		return nil
	}
	y, err := strconv.Atoi(m)
	if err != nil {
		return nil
	}
	return &y
}

func parseEpisodes(s string) int {
	m := numberPattern.FindString(s)
	if m == "" {
		return 0
	}
	n, err := strconv.Atoi(strings.SplitN(m, ".", 2)[0])
	if err != nil {
		return 0
	}
	return n
}

func parseStatus(s string) reelscout.ContentStatus {
	s = strings.ToLower(s)
	switch {
	case strings.Contains(s, "complet") || strings.Contains(s, "finished") || strings.Contains(s, "ended"):
		return reelscout.StatusCompleted
	case strings.Contains(s, "ongoing") || strings.Contains(s, "airing"):
		return reelscout.StatusOngoing
	case strings.Contains(s, "upcoming") || strings.Contains(s, "not yet"):
		return reelscout.StatusUpcoming
	default:
		return ""
	}
}
