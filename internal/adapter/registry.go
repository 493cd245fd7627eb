package adapter

import (
	"net"
	"strings"

	apperrors "kzmarket/listingworker/pkg/errors"
)

// HostedAdapter is an adapter that declares the hosts it serves
type HostedAdapter interface {
	Adapter
	Hosts() []string
}

type registryEntry struct {
	host    string
	adapter Adapter
}

// Registry maps hostnames to adapters. Entries are tested in registration order.
type Registry struct {
	entries []registryEntry
}

// NewRegistry creates a registry holding the given adapters in order
func NewRegistry(adapters ...HostedAdapter) *Registry {
	r := &Registry{}
	for _, a := range adapters {
		r.Register(a, a.Hosts()...)
	}
	return r
}

// Register adds an adapter for the given hosts
func (r *Registry) Register(a Adapter, hosts ...string) {
	for _, h := range hosts {
		r.entries = append(r.entries, registryEntry{host: normalizeHost(h), adapter: a})
	}
}

// Resolve returns the first adapter whose host equals hostname or is a dot-suffix of it
func (r *Registry) Resolve(hostname string) (Adapter, error) {
	host := normalizeHost(hostname)
	if host != "" {
		for _, e := range r.entries {
			if host == e.host || strings.HasSuffix(host, "."+e.host) {
				return e.adapter, nil
			}
		}
	}
	return nil, apperrors.NewUnsupportedDomain(hostname)
}

// SiteKeys lists the registered adapters' site keys without duplicates
func (r *Registry) SiteKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	for _, e := range r.entries {
		if !seen[e.adapter.SiteKey()] {
			seen[e.adapter.SiteKey()] = true
			keys = append(keys, e.adapter.SiteKey())
		}
	}
	return keys
}

func normalizeHost(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	if host, _, err := net.SplitHostPort(h); err == nil {
		h = host
	}
	return strings.TrimSuffix(h, ".")
}
