package delivery

import (
	"fmt"

	"github.com/kenxsak/omniflow-buisness-sub001/business/types/provider"
)

// Registry holds the closed set of vendor adapters and resolves the adapter
// for an automation's provider selection. Adding a vendor means registering
// one more adapter, the dispatch logic does not change.
type Registry struct {
	fallback  provider.Provider
	providers map[string]Provider
}

// NewRegistry constructs a registry with the specified platform default
// provider and the set of adapters.
func NewRegistry(fallback provider.Provider, providers ...Provider) *Registry {
	reg := Registry{
		fallback:  fallback,
		providers: make(map[string]Provider, len(providers)),
	}

	for _, p := range providers {
		reg.providers[p.Name().String()] = p
	}

	return &reg
}

// Lookup returns the adapter for the specified provider. The zero provider
// value resolves to the platform default.
func (r *Registry) Lookup(p provider.Provider) (Provider, error) {
	if p.String() == "" {
		p = r.fallback
	}

	adapter, exists := r.providers[p.String()]
	if !exists {
		return nil, fmt.Errorf("lookup: provider[%s]: %w", p, ErrUnknownProvider)
	}

	return adapter, nil
}
