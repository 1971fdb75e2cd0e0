package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"

	"github.com/urfave/cli"

	"github.com/preflight/preflight/internal/scan"
)

func scanAction(ctx *cli.Context) error {
	path := ctx.Args().First()
	if path == "" {
		return errors.New("html path required, try: preflight scan index.html")
	}

	var base *url.URL
	if b := ctx.String("base"); b != "" {
		u, err := url.Parse(b)
		if err != nil {
			return fmt.Errorf("invalid base url %q: %w", b, err)
		}
		base = u
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	descs, err := scan.Scan(f, base)
	if err != nil {
		return fmt.Errorf("cannot parse %s: %w", path, err)
	}

	entries := make([]manifestEntry, 0, len(descs))
	for _, d := range descs {
		entries = append(entries, manifestEntry{
			URL:      d.URL,
			Type:     string(d.Type),
			Priority: d.Priority.String(),
		})
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(entries)
}
