package reelscout

// Item is one entry extracted from a listing page. Rating and Year are nil
// when no selector resolved them.
type Item struct {
	Title  string   `json:"title"`
	URL    string   `json:"url"`
	Image  string   `json:"image,omitempty"`
	Rating *float64 `json:"rating,omitempty"`
	Year   *int     `json:"year,omitempty"`
	Genres []string `json:"genres,omitempty"`
}

// ListResult holds the items of a listing page. Discarded counts containers
// dropped because neither title nor url resolved.
type ListResult struct {
	Items     []Item
	Discarded int
}

// Details holds the fields extracted from a title's page.
type Details struct {
	Title       string
	URL         string
	Image       string
	Backdrop    string
	Description string
	Genres      []string
	Cast        []string
	Rating      *float64
	Year        *int
	Status      ContentStatus
	Episodes    int
}

// Extractor pulls structured fields out of source pages using a
// SelectorSet. For each field the candidate selectors are tried in order and
// the first one yielding a non-empty value wins.
type Extractor interface {
	// ExtractList extracts listing items. Relative URLs are resolved
	// against baseURL.
	ExtractList(html, baseURL string, selectors SelectorSet) (*ListResult, error)

	// ExtractDetails extracts a title's page.
	// Returns ENOTFOUND if no title selector resolves.
	ExtractDetails(html, pageURL string, selectors SelectorSet) (*Details, error)
}

// SynopsisResult holds the main content of a page.
type SynopsisResult struct {
	// Title is the page title extracted from metadata.
	Title string

	// ContentHTML is the main content as clean HTML.
	// Boilerplate (nav, footer, sidebar, ads) has been removed.
	ContentHTML string
}

// SynopsisExtractor extracts the main content of a page, removing boilerplate.
// It supplies a description when a source has no usable description selector.
type SynopsisExtractor interface {
	Extract(html string) (*SynopsisResult, error)
}
