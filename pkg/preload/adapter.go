package preload

import (
	"context"
	"log"
	"net/http"
	"sort"

	"github.com/spf13/afero"
)

// Adapter materializes one resource type. Load returns nil once the resource
// is usable, or an error describing why it is not. Adapters honor ctx on
// their own I/O; deadline enforcement and abandonment belong to the
// supervisor.
type Adapter interface {
	Load(ctx context.Context, rawURL string, opts Options) error
}

// AdapterFunc adapts a plain function to the Adapter interface.
type AdapterFunc func(ctx context.Context, rawURL string, opts Options) error

// Load implements Adapter.
func (f AdapterFunc) Load(ctx context.Context, rawURL string, opts Options) error {
	return f(ctx, rawURL, opts)
}

// AdapterOpts configures the default adapter set built by NewAdapterSet.
type AdapterOpts struct {
	// Client is used for HTTP fetches. Nil means http.DefaultClient.
	Client *http.Client
	// CacheFS, when non-nil, enables a best-effort body cache under CacheDir.
	CacheFS  afero.Fs
	CacheDir string
	// Logger receives cache warnings. Nil means silent.
	Logger *log.Logger
}

// AdapterSet maps resource types to Adapter implementations.
// It is the central dispatch point for type-agnostic resource loading.
// The zero value is not usable; use NewAdapterSet to create one.
type AdapterSet struct {
	routes map[ResourceType]Adapter
}

// NewAdapterSet creates an AdapterSet pre-configured with the script, style,
// font, image and generic fetch adapters. The scheduler is agnostic to which
// adapter services a type; adding a new resource type only needs Register.
func NewAdapterSet(opts *AdapterOpts) *AdapterSet {
	if opts == nil {
		opts = &AdapterOpts{}
	}
	client := opts.Client
	if client == nil {
		client = http.DefaultClient
	}
	var cache *bodyCache
	if opts.CacheFS != nil {
		cache = newBodyCache(opts.CacheFS, opts.CacheDir)
	}
	fetch := newFetchAdapter(client, cache, opts.Logger)

	s := &AdapterSet{
		routes: make(map[ResourceType]Adapter),
	}
	s.routes[TypeFetch] = fetch
	s.routes[TypeScript] = &scriptAdapter{fetch: fetch}
	s.routes[TypeStyle] = &styleAdapter{fetch: fetch}
	s.routes[TypeFont] = &fontAdapter{fetch: fetch}
	s.routes[TypeImage] = &imageAdapter{fetch: fetch}
	return s
}

// Register adds or replaces the adapter for the given resource type.
func (s *AdapterSet) Register(t ResourceType, a Adapter) {
	s.routes[t] = a
}

// Lookup returns the adapter for the given resource type.
func (s *AdapterSet) Lookup(t ResourceType) (Adapter, bool) {
	a, ok := s.routes[t]
	return a, ok
}

// Supported returns a sorted list of all registered resource types.
func (s *AdapterSet) Supported() []string {
	types := make([]string, 0, len(s.routes))
	for t := range s.routes {
		types = append(types, string(t))
	}
	sort.Strings(types)
	return types
}
