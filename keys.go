package bootmeta

import (
	"context"
	"fmt"
	"path"
	"strings"
)

// FetchIndexedKeys fetches SSH keys from an EC2-style key listing. The
// listing document has one "<index>=<name>" line per key, and each key is
// read from <listing>/<index>/openssh-key.
//
// An absent listing means there are no keys. Every key named in the listing
// must be retrievable: a key that can't be fetched fails the whole call.
func FetchIndexedKeys(ctx context.Context, f Fetcher, listing string) ([]string, error) {
	body, found, err := f.Fetch(ctx, listing)
	if err != nil {
		return nil, fmt.Errorf("fetch SSH key listing: %w", err)
	}

	keys := []string{}

	if !found {
		return keys, nil
	}

	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		// key pair names may themselves contain '='
		idx, name, ok := strings.Cut(line, "=")
		if !ok || idx == "" {
			return nil, &ParseError{
				Path: listing,
				Err:  fmt.Errorf("malformed key listing entry %q", line),
			}
		}

		keyPath := path.Join(listing, idx, "openssh-key")

		key, found, err := f.Fetch(ctx, keyPath)
		if err != nil {
			return nil, fmt.Errorf("fetch SSH key %q: %w", name, err)
		}

		if !found {
			return nil, &MissingError{Path: keyPath}
		}

		keys = append(keys, key)
	}

	return keys, nil
}
