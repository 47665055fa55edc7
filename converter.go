package reelscout

// Converter converts HTML to Markdown.
type Converter interface {
	// Convert transforms an HTML fragment, such as a synopsis block,
	// into Markdown.
	Convert(html string) (string, error)
}
