package preload

import (
	"context"
	"fmt"

	"github.com/dop251/goja"
)

// scriptAdapter loads script resources. A script is considered usable once
// it compiles; goja.Compile parses without executing anything.
type scriptAdapter struct {
	fetch *fetchAdapter
}

// Load implements Adapter.
func (a *scriptAdapter) Load(ctx context.Context, rawURL string, opts Options) error {
	body, err := a.fetch.fetchBytes(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if _, err := goja.Compile(rawURL, string(body), false); err != nil {
		return fmt.Errorf("compile: %w", err)
	}
	return nil
}
