package bootmeta

import (
	"context"
	"fmt"
	"sort"
	"strings"
)

// PlatformMux allows you to dynamically look up a registered provider for a
// given platform name. All providers in this module can be registered, and
// additional providers can be registered given an implementation of Platform.
type PlatformMux map[string]func(context.Context) (Provider, error)

// NewMux returns a PlatformMux ready for use.
func NewMux() PlatformMux {
	return PlatformMux(map[string]func(context.Context) (Provider, error){})
}

// Add registers the given platform for its supported names. If any of its
// names are already registered, they will be overridden.
func (m PlatformMux) Add(p Platform) {
	for _, name := range p.Names() {
		m[name] = p.New
	}
}

// Lookup returns a provider for the named platform. Names are matched
// case-insensitively. Use Add to register platforms.
func (m PlatformMux) Lookup(ctx context.Context, name string) (Provider, error) {
	f, ok := m[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("no provider registered for platform %q (known: %s)",
			name, strings.Join(m.Names(), ", "))
	}

	return f(ctx)
}

// Names returns the registered platform names, sorted.
func (m PlatformMux) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// Platform provides a Provider for a set of platform names, as used in the
// kernel command line's ignition.platform.id (e.g. "aws", "gcp").
type Platform interface {
	// Names returns the lower-case platform names served by this provider
	Names() []string

	// New returns a provider configured with the platform's defaults
	New(ctx context.Context) (Provider, error)
}

// PlatformFunc -
func PlatformFunc(f func(context.Context) (Provider, error), names ...string) Platform {
	return platform{f, names}
}

type platform struct {
	newFunc func(context.Context) (Provider, error)
	names   []string
}

func (p platform) Names() []string {
	return p.names
}

func (p platform) New(ctx context.Context) (Provider, error) {
	return p.newFunc(ctx)
}
