package bootmeta

import (
	"context"
	"errors"
	"fmt"
)

// Provider is implemented by every platform's metadata provider.
type Provider interface {
	// SSHKeys returns the instance's SSH public keys, in the order the
	// metadata service lists them. The list is empty (not nil) when there are
	// no keys.
	SSHKeys(ctx context.Context) ([]string, error)

	// Attributes returns the instance's normalized attributes, keyed by
	// <PREFIX>_<FIELD>. Fields that aren't present are omitted. On error, the
	// map is nil.
	Attributes(ctx context.Context) (map[string]string, error)
}

// Hostnamer is implemented by providers that can report the instance's
// hostname.
type Hostnamer interface {
	// Hostname returns the hostname, or found=false if the platform has none
	// set.
	Hostname(ctx context.Context) (hostname string, found bool, err error)
}

// Fetcher retrieves a single metadata document. A *metaclient.Client is a
// Fetcher.
type Fetcher interface {
	Fetch(ctx context.Context, name string) (body string, found bool, err error)
}

// Hostname returns the hostname reported by p, if p supports it. Otherwise an
// error wrapping [errors.ErrUnsupported] is returned.
func Hostname(ctx context.Context, p Provider) (string, bool, error) {
	h, ok := p.(Hostnamer)
	if !ok {
		return "", false, fmt.Errorf("hostname for %T: %w", p, errors.ErrUnsupported)
	}

	return h.Hostname(ctx)
}
