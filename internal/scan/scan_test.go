package scan

import (
	"net/url"
	"strings"
	"testing"

	"github.com/preflight/preflight/pkg/preload"
)

const sampleDoc = `<!DOCTYPE html>
<html>
<head>
  <link rel="stylesheet" href="https://cdn.test/app.css">
  <link rel="preload" href="https://cdn.test/brand.woff2" as="font">
  <link rel="prefetch" href="https://cdn.test/next-page.json">
  <link rel="icon" href="https://cdn.test/favicon.ico">
  <script src="https://cdn.test/app.js"></script>
  <script src="https://cdn.test/analytics.js" async></script>
  <script>inline()</script>
</head>
<body>
  <img src="https://cdn.test/hero.png">
  <img alt="no source">
</body>
</html>`

func byURL(descs []preload.Descriptor) map[string]preload.Descriptor {
	m := make(map[string]preload.Descriptor, len(descs))
	for _, d := range descs {
		m[d.URL] = d
	}
	return m
}

func TestScanDocument(t *testing.T) {
	descs, err := Scan(strings.NewReader(sampleDoc), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(descs) != 6 {
		t.Fatalf("expected 6 descriptors, got %d: %v", len(descs), descs)
	}
	m := byURL(descs)

	cases := []struct {
		url  string
		typ  preload.ResourceType
		prio preload.Priority
	}{
		{"https://cdn.test/app.css", preload.TypeStyle, preload.PriorityHigh},
		{"https://cdn.test/brand.woff2", preload.TypeFont, preload.PriorityHigh},
		{"https://cdn.test/next-page.json", preload.TypeFetch, preload.PriorityPrefetch},
		{"https://cdn.test/app.js", preload.TypeScript, preload.PriorityHigh},
		{"https://cdn.test/analytics.js", preload.TypeScript, preload.PriorityLow},
		{"https://cdn.test/hero.png", preload.TypeImage, preload.PriorityLow},
	}
	for _, c := range cases {
		d, ok := m[c.url]
		if !ok {
			t.Fatalf("missing descriptor for %s", c.url)
		}
		if d.Type != c.typ || d.Priority != c.prio {
			t.Fatalf("%s: got type=%s prio=%s, want type=%s prio=%s",
				c.url, d.Type, d.Priority, c.typ, c.prio)
		}
	}
}

func TestScanResolvesAgainstBase(t *testing.T) {
	base, _ := url.Parse("https://app.test/pages/")
	doc := `<html><head>
  <script src="/static/app.js"></script>
  <link rel="stylesheet" href="theme.css">
</head></html>`

	descs, err := Scan(strings.NewReader(doc), base)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	m := byURL(descs)
	if _, ok := m["https://app.test/static/app.js"]; !ok {
		t.Fatalf("expected the absolute-path reference resolved, got %v", descs)
	}
	if _, ok := m["https://app.test/pages/theme.css"]; !ok {
		t.Fatalf("expected the relative reference resolved, got %v", descs)
	}
}

func TestScanSkipsUnresolvable(t *testing.T) {
	doc := `<html><body>
  <script src="/no-base.js"></script>
  <img src="also-relative.png">
</body></html>`

	descs, err := Scan(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(descs) != 0 {
		t.Fatalf("expected relative references without a base skipped, got %v", descs)
	}
}

func TestScanPreloadAsFallback(t *testing.T) {
	doc := `<html><head>
  <link rel="preload" href="https://cdn.test/data.bin" as="document">
</head></html>`
	descs, err := Scan(strings.NewReader(doc), nil)
	if err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(descs) != 1 || descs[0].Type != preload.TypeFetch {
		t.Fatalf("expected an unknown as= to fall back to fetch, got %v", descs)
	}
}
