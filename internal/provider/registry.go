// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Courier Contributors

package provider

import (
	"context"
	"strings"
	"sync"

	courerr "github.com/courier-dev/courier/pkg/errors"
)

// Registry manages provider registration, lookup, and routing of
// "provider/model" references with an optional failover chain.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Completer

	defaultRef string   // "provider/model" format
	failover   []string // ordered list of "provider/model" refs
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		providers: make(map[string]Completer),
	}
}

// Register adds a provider to the registry.
func (r *Registry) Register(name string, p Completer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = p
}

// Get retrieves a provider by name.
func (r *Registry) Get(name string) (Completer, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.providers[name]
	if !ok {
		return nil, courerr.New(
			courerr.CodeProviderNotFound,
			"provider not found: "+name,
			courerr.FieldProvider(name),
		)
	}
	return p, nil
}

// Names returns the registered provider names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// SetDefault sets the default "provider/model" reference used when a
// request carries no model. Returns an error if the provider portion of
// the ref is not registered.
func (r *Registry) SetDefault(ref string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	provName, _, err := parseRef(ref)
	if err != nil {
		return err
	}
	if _, ok := r.providers[provName]; !ok {
		return courerr.New(
			courerr.CodeProviderNotFound,
			"SetDefault: provider not registered: "+provName,
			courerr.FieldProvider(provName),
		)
	}
	r.defaultRef = ref
	return nil
}

// SetFailover sets the ordered failover chain consulted when the routed
// provider reports itself unavailable.
func (r *Registry) SetFailover(refs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, ref := range refs {
		provName, _, err := parseRef(ref)
		if err != nil {
			return err
		}
		if _, ok := r.providers[provName]; !ok {
			return courerr.New(
				courerr.CodeProviderNotFound,
				"SetFailover: provider not registered: "+provName,
				courerr.FieldProvider(provName),
			)
		}
	}
	r.failover = append([]string(nil), refs...)
	return nil
}

// Resolve routes a model reference to a registered, available provider and
// the resolved model id. An empty ref selects the default; when the selected
// provider is unavailable the failover chain is consulted in order.
func (r *Registry) Resolve(ctx context.Context, ref string) (Completer, string, error) {
	r.mu.RLock()
	defaultRef := r.defaultRef
	failover := r.failover
	r.mu.RUnlock()

	if ref == "" {
		ref = defaultRef
	}
	if ref == "" {
		return nil, "", courerr.New(courerr.CodeProviderNoDefault, "no default model configured")
	}

	candidates := append([]string{ref}, failover...)

	var lastErr error
	for _, candidate := range candidates {
		provName, model, err := parseRef(candidate)
		if err != nil {
			return nil, "", err
		}

		p, err := r.Get(provName)
		if err != nil {
			lastErr = err
			continue
		}

		if !p.Available(ctx) {
			lastErr = courerr.New(
				courerr.CodeProviderAllUnavailable,
				"provider unavailable: "+provName,
				courerr.FieldProvider(provName),
			)
			continue
		}

		return p, model, nil
	}

	if lastErr != nil {
		return nil, "", courerr.Wrap(lastErr, courerr.CodeProviderAllUnavailable,
			"no provider available for "+ref)
	}
	return nil, "", courerr.New(courerr.CodeProviderAllUnavailable, "no provider available for "+ref)
}

// Close closes all registered providers.
func (r *Registry) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var errs []error
	for _, p := range r.providers {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	r.providers = make(map[string]Completer)

	if len(errs) > 0 {
		return courerr.Join(errs...)
	}
	return nil
}

// parseRef splits a "provider/model" reference.
func parseRef(ref string) (provider, model string, err error) {
	idx := strings.Index(ref, "/")
	if idx <= 0 || idx == len(ref)-1 {
		return "", "", courerr.Errorf(courerr.CodeProviderInvalidModelRef,
			"model ref must be in \"provider/model\" format, got %q", ref)
	}
	return ref[:idx], ref[idx+1:], nil
}
