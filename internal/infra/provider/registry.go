package provider

import (
	"fmt"
	"net/url"
	"strings"
)

// Registry is the static handler registry. Lookup is by handler name
// for stored sources and by URL domain for source creation.
type Registry struct {
	byName   map[string]Handler
	byDomain map[string]Handler
}

// NewRegistry builds the registry with every known handler, applying
// overrides from the handlers config.
func NewRegistry(cfg *Config) *Registry {
	registry := &Registry{
		byName:   make(map[string]Handler),
		byDomain: make(map[string]Handler),
	}
	registry.register(NewYouTube(cfg.For("youtube")))
	registry.register(NewRumble(cfg.For("rumble")))
	return registry
}

func (r *Registry) register(h Handler) {
	r.byName[h.Name()] = h
	for _, domain := range h.Domains() {
		r.byDomain[domain] = h
	}
}

// Lookup returns the handler for a stored handler name.
func (r *Registry) Lookup(name string) (Handler, error) {
	h, ok := r.byName[name]
	if !ok {
		return nil, fmt.Errorf("no handler registered for %q", name)
	}
	return h, nil
}

// ForURL selects the handler claiming the URL's domain.
func (r *Registry) ForURL(rawURL string) (Handler, error) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return nil, fmt.Errorf("parse url: %w", err)
	}
	host := strings.ToLower(u.Hostname())
	if h, ok := r.byDomain[host]; ok {
		return h, nil
	}
	return nil, fmt.Errorf("no handler for domain %q", host)
}

// Names lists registered handler names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}
