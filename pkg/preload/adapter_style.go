package preload

import (
	"context"
	"errors"
	"unicode/utf8"
)

// styleAdapter loads stylesheet resources. The body must be non-empty,
// valid UTF-8 text.
type styleAdapter struct {
	fetch *fetchAdapter
}

// Load implements Adapter.
func (a *styleAdapter) Load(ctx context.Context, rawURL string, opts Options) error {
	body, err := a.fetch.fetchBytes(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return errors.New("empty stylesheet")
	}
	if !utf8.Valid(body) {
		return errors.New("stylesheet is not valid utf-8")
	}
	return nil
}
