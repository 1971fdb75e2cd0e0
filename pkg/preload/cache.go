package preload

import (
	"crypto/sha256"
	"encoding/hex"
	"path/filepath"

	"github.com/spf13/afero"
)

// bodyCache stores fetched resource bodies on an afero filesystem, keyed by
// a hash of the URL. It is best-effort: a miss or write failure only means
// the body is fetched again.
type bodyCache struct {
	fs  afero.Fs
	dir string
}

func newBodyCache(fs afero.Fs, dir string) *bodyCache {
	if dir == "" {
		dir = "preflight-cache"
	}
	return &bodyCache{fs: fs, dir: dir}
}

// cacheKey derives a filesystem-safe name from a URL.
func cacheKey(rawURL string) string {
	sum := sha256.Sum256([]byte(rawURL))
	return hex.EncodeToString(sum[:16])
}

func (c *bodyCache) get(rawURL string) ([]byte, bool) {
	body, err := afero.ReadFile(c.fs, filepath.Join(c.dir, cacheKey(rawURL)))
	if err != nil {
		return nil, false
	}
	return body, true
}

func (c *bodyCache) put(rawURL string, body []byte) error {
	if err := c.fs.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return afero.WriteFile(c.fs, filepath.Join(c.dir, cacheKey(rawURL)), body, 0o644)
}
