// Package autoprovider provides the ability to look up all metadata providers
// supported by this module, by platform name. Using this package will compile
// every provider's dependencies into the resulting binary, so unless you need
// to support all platforms, use bootmeta.NewMux instead.
package autoprovider

import (
	"context"
	"sync"

	"github.com/hairyhenderson/go-bootmeta"
	"github.com/hairyhenderson/go-bootmeta/awsmeta"
	"github.com/hairyhenderson/go-bootmeta/gcpmeta"
	"github.com/hairyhenderson/go-bootmeta/openstackmeta"
)

// Lookup returns a provider for the named platform (e.g. "aws", "gcp",
// "openstack"), configured with the platform's defaults. If no provider is
// registered for the name, an error will be returned.
func Lookup(ctx context.Context, platform string) (bootmeta.Provider, error) {
	return mux().Lookup(ctx, platform)
}

// Names returns the names of all supported platforms, sorted.
func Names() []string {
	return mux().Names()
}

//nolint:gochecknoglobals
var mux = sync.OnceValue(func() bootmeta.PlatformMux {
	m := bootmeta.NewMux()
	m.Add(awsmeta.Platform)
	m.Add(gcpmeta.Platform)
	m.Add(openstackmeta.Platform)

	return m
})
