package providers

import (
	"fmt"
	"sort"

	"github.com/medscan-ai/medgate/types"
)

// Entry describes one registered provider: how to construct its
// adapter and where its credential comes from. Key and Endpoint are
// filled from configuration when the registry is built, so credential
// resolution never touches the process environment here.
type Entry struct {
	ID          Provider
	DisplayName string

	// KeyEnv documents the environment variable the credential was
	// loaded from, for error remediation hints.
	KeyEnv string

	// Key is the resolved credential. Empty means not configured.
	Key string

	// Endpoint is the resolved base URL for providers that require
	// one (Azure, custom endpoints). EndpointEnv documents its
	// source variable.
	Endpoint    string
	EndpointEnv string

	// RequiresEndpoint marks providers that cannot be constructed
	// without an Endpoint.
	RequiresEndpoint bool

	DefaultModel string

	// New constructs the adapter. The registry passes fully
	// resolved Options; constructors must not read the
	// environment.
	New func(opts Options) (Adapter, error)
}

// Usable reports whether the entry has everything needed to construct
// its adapter: a credential and, where required, an endpoint. It does
// not construct anything.
func (e Entry) Usable() bool {
	if e.Key == "" {
		return false
	}
	if e.RequiresEndpoint && e.Endpoint == "" {
		return false
	}
	return true
}

// Registry maps provider ids to adapter constructors. It is built
// once at startup and read-only afterwards, so it needs no locking.
type Registry struct {
	entries map[Provider]Entry
}

// NewRegistry builds a registry from the given entries. Later entries
// with a duplicate id replace earlier ones.
func NewRegistry(entries ...Entry) *Registry {
	r := &Registry{entries: make(map[Provider]Entry, len(entries))}
	for _, e := range entries {
		r.entries[e.ID] = e
	}
	return r
}

// Lookup returns the entry for id.
func (r *Registry) Lookup(id Provider) (Entry, bool) {
	e, ok := r.entries[id]
	return e, ok
}

// Entries returns all registered entries sorted by id.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.entries))
	for _, e := range r.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Create constructs the adapter for id. Credential resolution order
// is explicit argument, then the key resolved from configuration,
// then failure. Resolution happens here, at construction time, so
// misconfiguration surfaces before any network activity.
func (r *Registry) Create(id Provider, opts Options) (Adapter, error) {
	entry, ok := r.entries[id]
	if !ok {
		return nil, fmt.Errorf("%w: %q", types.ErrProviderNotRegistered, id)
	}
	if opts.Credential == "" {
		opts.Credential = entry.Key
	}
	if opts.Credential == "" {
		return nil, fmt.Errorf("%w: provider %q (set %s)", types.ErrMissingCredential, id, entry.KeyEnv)
	}
	if opts.BaseURL == "" {
		opts.BaseURL = entry.Endpoint
	}
	if entry.RequiresEndpoint && opts.BaseURL == "" {
		return nil, fmt.Errorf("%w: provider %q requires an endpoint (set %s)", types.ErrMissingCredential, id, entry.EndpointEnv)
	}
	if opts.DefaultModel == "" {
		opts.DefaultModel = entry.DefaultModel
	}
	return entry.New(opts)
}
