package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/afero"

	"github.com/preflight/preflight/pkg/preload"
)

// manifestEntry is one resource in a manifest group. Priority defaults to
// the group's natural class when omitted.
type manifestEntry struct {
	URL         string            `json:"url"`
	Type        string            `json:"type"`
	Priority    string            `json:"priority,omitempty"`
	TimeoutMs   int64             `json:"timeoutMs,omitempty"`
	MaxRetries  int               `json:"maxRetries,omitempty"`
	CrossOrigin string            `json:"crossOrigin,omitempty"`
	Headers     map[string]string `json:"headers,omitempty"`
}

// prefetchEntry schedules a recurring route prefetch.
type prefetchEntry struct {
	Route string `json:"route"`
	Cron  string `json:"cron"`
}

// manifest is the on-disk description of a staged preload.
type manifest struct {
	MaxConcurrent int                        `json:"maxConcurrent,omitempty"`
	CacheDir      string                     `json:"cacheDir,omitempty"`
	Critical      []manifestEntry            `json:"critical,omitempty"`
	Essential     []manifestEntry            `json:"essential,omitempty"`
	NonCritical   []manifestEntry            `json:"nonCritical,omitempty"`
	Routes        map[string][]manifestEntry `json:"routes,omitempty"`
	Prefetch      []prefetchEntry            `json:"prefetch,omitempty"`
}

// loadManifest reads and parses a manifest from fs.
func loadManifest(fs afero.Fs, path string) (*manifest, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("cannot read manifest: %w", err)
	}
	var m manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("cannot parse manifest %s: %w", path, err)
	}
	return &m, nil
}

// descriptor converts one entry, defaulting the priority to def.
func (e manifestEntry) descriptor(def preload.Priority) (preload.Descriptor, error) {
	if e.URL == "" {
		return preload.Descriptor{}, fmt.Errorf("manifest entry has no url")
	}
	prio := def
	if e.Priority != "" {
		p, err := preload.ParsePriority(e.Priority)
		if err != nil {
			return preload.Descriptor{}, fmt.Errorf("%s: %w", e.URL, err)
		}
		prio = p
	}
	t := preload.ResourceType(e.Type)
	if e.Type == "" {
		t = preload.TypeFetch
	}
	return preload.Descriptor{
		URL:        e.URL,
		Priority:   prio,
		Type:       t,
		Timeout:    time.Duration(e.TimeoutMs) * time.Millisecond,
		MaxRetries: e.MaxRetries,
		Options: preload.Options{
			CrossOrigin: preload.CrossOriginMode(e.CrossOrigin),
			Headers:     e.Headers,
		},
	}, nil
}

// toDescriptors converts one manifest group.
func toDescriptors(entries []manifestEntry, def preload.Priority) ([]preload.Descriptor, error) {
	descs := make([]preload.Descriptor, 0, len(entries))
	for _, e := range entries {
		d, err := e.descriptor(def)
		if err != nil {
			return nil, err
		}
		descs = append(descs, d)
	}
	return descs, nil
}

// plan builds the preloader plan from the manifest's groups.
// Group defaults: critical, high, low; routes default to prefetch.
func (m *manifest) plan() (preload.Plan, error) {
	critical, err := toDescriptors(m.Critical, preload.PriorityCritical)
	if err != nil {
		return preload.Plan{}, err
	}
	essential, err := toDescriptors(m.Essential, preload.PriorityHigh)
	if err != nil {
		return preload.Plan{}, err
	}
	nonCritical, err := toDescriptors(m.NonCritical, preload.PriorityLow)
	if err != nil {
		return preload.Plan{}, err
	}
	routes := make(map[string][]preload.Descriptor, len(m.Routes))
	for name, entries := range m.Routes {
		descs, err := toDescriptors(entries, preload.PriorityPrefetch)
		if err != nil {
			return preload.Plan{}, fmt.Errorf("route %s: %w", name, err)
		}
		routes[name] = descs
	}
	return preload.Plan{
		Critical:    critical,
		Essential:   essential,
		NonCritical: nonCritical,
		Routes:      routes,
	}, nil
}
