// Package goquery extracts catalog entries from source pages using ordered
// CSS selector fallbacks.
package goquery

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/fwojciec/reelscout"
)

// Ensure Extractor implements reelscout.Extractor at compile time.
var _ reelscout.Extractor = (*Extractor)(nil)

// Extractor implements reelscout.Extractor with goquery.
type Extractor struct {
	converter reelscout.Converter
	synopsis  reelscout.SynopsisExtractor
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithConverter converts description HTML to Markdown.
// Without a converter the description is plain text.
func WithConverter(c reelscout.Converter) Option {
	return func(e *Extractor) {
		e.converter = c
	}
}

// WithSynopsis sets the extractor used for descriptions when no
// description selector resolves.
func WithSynopsis(s reelscout.SynopsisExtractor) Option {
	return func(e *Extractor) {
		e.synopsis = s
	}
}

// NewExtractor creates a new Extractor.
func NewExtractor(opts ...Option) *Extractor {
	e := &Extractor{}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractList extracts the items of a listing page.
func (e *Extractor) ExtractList(html, baseURL string, selectors reelscout.SelectorSet) (*reelscout.ListResult, error) {
	base, doc, err := parse(html, baseURL)
	if err != nil {
		return nil, err
	}

	result := &reelscout.ListResult{}
	containers := findContainers(doc, selectors[reelscout.FieldItem])
	if containers == nil {
		return result, nil
	}

	containers.Each(func(_ int, sel *goquery.Selection) {
		item := reelscout.Item{}
		item.Title, _ = firstValue(sel, reelscout.FieldTitle, selectors[reelscout.FieldTitle])
		if href, _ := firstValue(sel, reelscout.FieldURL, selectors[reelscout.FieldURL]); href != "" {
			item.URL = resolveURL(base, href)
		}
		if item.Title == "" && item.URL == "" {
			result.Discarded++
			return
		}
		if src, _ := firstValue(sel, reelscout.FieldImage, selectors[reelscout.FieldImage]); src != "" {
			item.Image = resolveURL(base, src)
		}
		if v, _ := firstValue(sel, reelscout.FieldRating, selectors[reelscout.FieldRating]); v != "" {
			item.Rating = parseRating(v)
		}
		if v, _ := firstValue(sel, reelscout.FieldYear, selectors[reelscout.FieldYear]); v != "" {
			item.Year = parseYear(v)
		}
		item.Genres = allValues(sel, reelscout.FieldGenres, selectors[reelscout.FieldGenres])
		result.Items = append(result.Items, item)
	})

	return result, nil
}

// ExtractDetails extracts the fields of a title's page.
func (e *Extractor) ExtractDetails(html, pageURL string, selectors reelscout.SelectorSet) (*reelscout.Details, error) {
	base, doc, err := parse(html, pageURL)
	if err != nil {
		return nil, err
	}
	root := doc.Selection

	d := &reelscout.Details{URL: base.String()}
	d.Title, _ = firstValue(root, reelscout.FieldTitle, selectors[reelscout.FieldTitle])
	if d.Title == "" {
		return nil, reelscout.Errorf(reelscout.ENOTFOUND, "no title found at %s", pageURL)
	}
	if src, _ := firstValue(root, reelscout.FieldImage, selectors[reelscout.FieldImage]); src != "" {
		d.Image = resolveURL(base, src)
	}
	if src, _ := firstValue(root, reelscout.FieldBackdrop, selectors[reelscout.FieldBackdrop]); src != "" {
		d.Backdrop = resolveURL(base, src)
	}
	if v, _ := firstValue(root, reelscout.FieldRating, selectors[reelscout.FieldRating]); v != "" {
		d.Rating = parseRating(v)
	}
	if v, _ := firstValue(root, reelscout.FieldYear, selectors[reelscout.FieldYear]); v != "" {
		d.Year = parseYear(v)
	}
	if v, _ := firstValue(root, reelscout.FieldStatus, selectors[reelscout.FieldStatus]); v != "" {
		d.Status = parseStatus(v)
	}
	if v, _ := firstValue(root, reelscout.FieldEpisodes, selectors[reelscout.FieldEpisodes]); v != "" {
		d.Episodes = parseEpisodes(v)
	}
	d.Genres = allValues(root, reelscout.FieldGenres, selectors[reelscout.FieldGenres])
	d.Cast = allValues(root, reelscout.FieldCast, selectors[reelscout.FieldCast])
	d.Description = e.description(html, root, selectors[reelscout.FieldDescription])

	return d, nil
}

// description renders the first matching description node, falling back to
// the page's main content when no selector resolves.
func (e *Extractor) description(html string, root *goquery.Selection, selectors []string) string {
	text, node := firstValue(root, reelscout.FieldDescription, selectors)
	if node != nil {
		if fragment, err := goquery.OuterHtml(node); err == nil {
			if md := e.convert(fragment); md != "" {
				return md
			}
		}
		return text
	}

	if e.synopsis == nil {
		return ""
	}
	res, err := e.synopsis.Extract(html)
	if err != nil || res == nil || strings.TrimSpace(res.ContentHTML) == "" {
		return ""
	}
	if md := e.convert(res.ContentHTML); md != "" {
		return md
	}
	frag, err := goquery.NewDocumentFromReader(strings.NewReader(res.ContentHTML))
	if err != nil {
		return ""
	}
	return collapseSpace(frag.Text())
}

func (e *Extractor) convert(fragment string) string {
	if e.converter == nil {
		return ""
	}
	md, err := e.converter.Convert(fragment)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(md)
}

// findContainers returns the nodes of the first item selector that matches
// at least one node.
func findContainers(doc *goquery.Document, selectors []string) *goquery.Selection {
	for _, raw := range selectors {
		css := parseCandidate(raw).css
		if css == "" {
			continue
		}
		if sel := doc.Find(css); sel.Length() > 0 {
			return sel
		}
	}
	return nil
}

func parse(html, pageURL string) (*url.URL, *goquery.Document, error) {
	base, err := url.Parse(pageURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, nil, reelscout.Errorf(reelscout.EINVALID, "invalid base URL %q", pageURL)
	}
	if strings.TrimSpace(html) == "" {
		return nil, nil, reelscout.Errorf(reelscout.EINVALID, "empty HTML input")
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, nil, reelscout.Errorf(reelscout.EINVALID, "failed to parse HTML: %v", err)
	}
	return base, doc, nil
}
