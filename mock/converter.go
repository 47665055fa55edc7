package mock

import "github.com/fwojciec/reelscout"

var _ reelscout.Converter = (*Converter)(nil)

// Converter is a mock implementation of reelscout.Converter.
type Converter struct {
	ConvertFn func(html string) (string, error)
}

func (c *Converter) Convert(html string) (string, error) {
	return c.ConvertFn(html)
}
