package bootmeta

import (
	"github.com/hairyhenderson/go-bootmeta/metaclient"
)

type withClienter interface {
	Client() *metaclient.Client
	WithClient(c *metaclient.Client) Provider
}

// WithClient returns a copy of the provider p using the client returned by fn,
// if the provider supports it (i.e. has Client and WithClient methods).
// Otherwise p is returned unchanged.
//
// This is the way to adjust retries, timeouts, or the transport of a provider
// obtained from a PlatformMux:
//
//	p = bootmeta.WithClient(p, func(c *metaclient.Client) *metaclient.Client {
//		return c.WithMaxRetries(3)
//	})
func WithClient(p Provider, fn func(*metaclient.Client) *metaclient.Client) Provider {
	if cp, ok := p.(withClienter); ok {
		return cp.WithClient(fn(cp.Client()))
	}

	return p
}
