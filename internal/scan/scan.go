// Package scan extracts preload descriptors from HTML documents: external
// scripts, stylesheets, preload links and images become descriptors the
// scheduler can submit directly.
package scan

import (
	"io"
	"net/url"
	"strings"

	"golang.org/x/net/html"

	"github.com/preflight/preflight/pkg/preload"
)

// Scan parses the HTML document from r and returns one descriptor per
// external resource reference. Relative references are resolved against
// base when base is non-nil; unresolvable or empty references are skipped.
func Scan(r io.Reader, base *url.URL) ([]preload.Descriptor, error) {
	doc, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	var descs []preload.Descriptor
	walk(doc, base, &descs)
	return descs, nil
}

func walk(n *html.Node, base *url.URL, out *[]preload.Descriptor) {
	if n.Type == html.ElementNode {
		if d, ok := describe(n, base); ok {
			*out = append(*out, d)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c, base, out)
	}
}

// describe maps one element to a descriptor:
//   - <script src>: script, high (low when async or defer)
//   - <link rel=stylesheet>: style, high
//   - <link rel=preload as=...>: the named type, high
//   - <link rel=prefetch>: fetch, prefetch
//   - <img src>: image, low
func describe(n *html.Node, base *url.URL) (preload.Descriptor, bool) {
	switch n.Data {
	case "script":
		src := resolve(attr(n, "src"), base)
		if src == "" {
			return preload.Descriptor{}, false
		}
		prio := preload.PriorityHigh
		if hasAttr(n, "async") || hasAttr(n, "defer") {
			prio = preload.PriorityLow
		}
		return preload.Descriptor{URL: src, Type: preload.TypeScript, Priority: prio}, true

	case "link":
		href := resolve(attr(n, "href"), base)
		if href == "" {
			return preload.Descriptor{}, false
		}
		switch strings.ToLower(attr(n, "rel")) {
		case "stylesheet":
			return preload.Descriptor{URL: href, Type: preload.TypeStyle, Priority: preload.PriorityHigh}, true
		case "preload":
			return preload.Descriptor{URL: href, Type: asType(attr(n, "as")), Priority: preload.PriorityHigh}, true
		case "prefetch":
			return preload.Descriptor{URL: href, Type: preload.TypeFetch, Priority: preload.PriorityPrefetch}, true
		}
		return preload.Descriptor{}, false

	case "img":
		src := resolve(attr(n, "src"), base)
		if src == "" {
			return preload.Descriptor{}, false
		}
		return preload.Descriptor{URL: src, Type: preload.TypeImage, Priority: preload.PriorityLow}, true
	}
	return preload.Descriptor{}, false
}

// asType maps a preload "as" attribute to a resource type.
func asType(as string) preload.ResourceType {
	switch strings.ToLower(as) {
	case "script":
		return preload.TypeScript
	case "style":
		return preload.TypeStyle
	case "font":
		return preload.TypeFont
	case "image":
		return preload.TypeImage
	default:
		return preload.TypeFetch
	}
}

func attr(n *html.Node, name string) string {
	for _, a := range n.Attr {
		if a.Key == name {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, name string) bool {
	for _, a := range n.Attr {
		if a.Key == name {
			return true
		}
	}
	return false
}

// resolve returns the absolute form of ref, or "" if it cannot be used.
func resolve(ref string, base *url.URL) string {
	if ref == "" {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.String()
}
