package preload

import (
	"bytes"
	"context"
	"fmt"
	"image"

	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
)

// imageAdapter loads image resources. An image is usable once its header
// decodes to valid dimensions.
type imageAdapter struct {
	fetch *fetchAdapter
}

// Load implements Adapter.
func (a *imageAdapter) Load(ctx context.Context, rawURL string, opts Options) error {
	body, err := a.fetch.fetchBytes(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if _, _, err := image.DecodeConfig(bytes.NewReader(body)); err != nil {
		return fmt.Errorf("decode: %w", err)
	}
	return nil
}
