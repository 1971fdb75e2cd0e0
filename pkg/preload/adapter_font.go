package preload

import (
	"bytes"
	"context"
	"errors"
)

// fontMagics are the container signatures accepted by the font adapter:
// WOFF, WOFF2, TrueType, OpenType/CFF and the legacy Mac sfnt variants.
var fontMagics = [][]byte{
	[]byte("wOFF"),
	[]byte("wOF2"),
	{0x00, 0x01, 0x00, 0x00},
	[]byte("OTTO"),
	[]byte("true"),
	[]byte("typ1"),
}

// fontAdapter loads font resources and sniffs the container signature.
type fontAdapter struct {
	fetch *fetchAdapter
}

// Load implements Adapter.
func (a *fontAdapter) Load(ctx context.Context, rawURL string, opts Options) error {
	body, err := a.fetch.fetchBytes(ctx, rawURL, opts)
	if err != nil {
		return err
	}
	if len(body) < 4 {
		return errors.New("font body too short to identify")
	}
	for _, magic := range fontMagics {
		if bytes.HasPrefix(body, magic) {
			return nil
		}
	}
	return errors.New("unrecognized font container")
}
