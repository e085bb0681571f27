package bootmeta

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

// Attribute describes one entry in a provider's attribute table.
type Attribute struct {
	// Derive, if set, computes the value from the fetched document
	Derive func(body string) (string, error)
	// Path is the metadata path, relative to the client's base URL
	Path string
	// Key is the field name, without the provider prefix (e.g. "INSTANCE_ID")
	Key string
	// Required makes an absent document an error instead of an omission
	Required bool
}

// FetchAttributes fetches each attribute in table order, and returns a map of
// <prefix>_<key> to value.
//
// Absent documents are omitted from the map, unless they're Required, in
// which case a *MissingError is returned. Any fetch or derivation failure
// fails the whole call, and no map is returned.
func FetchAttributes(ctx context.Context, f Fetcher, prefix string, attrs []Attribute) (map[string]string, error) {
	out := make(map[string]string, len(attrs))

	for _, a := range attrs {
		key := a.Key
		if prefix != "" {
			key = prefix + "_" + a.Key
		}

		body, found, err := f.Fetch(ctx, a.Path)
		if err != nil {
			return nil, fmt.Errorf("fetch %s: %w", key, err)
		}

		if !found {
			if a.Required {
				return nil, &MissingError{Key: key, Path: a.Path}
			}

			continue
		}

		if a.Derive != nil {
			body, err = a.Derive(body)
			if err != nil {
				return nil, &ParseError{Key: key, Path: a.Path, Err: err}
			}
		}

		out[key] = body
	}

	return out, nil
}

// JSONField returns a Derive function that extracts the named string field
// from a JSON object.
func JSONField(field string) func(string) (string, error) {
	return func(body string) (string, error) {
		doc := map[string]any{}

		err := json.Unmarshal([]byte(body), &doc)
		if err != nil {
			return "", fmt.Errorf("unmarshal JSON document: %w", err)
		}

		v, ok := doc[field]
		if !ok {
			return "", fmt.Errorf("field %q not found", field)
		}

		s, ok := v.(string)
		if !ok {
			return "", fmt.Errorf("field %q is a %T, not a string", field, v)
		}

		return s, nil
	}
}

// LastSegment derives the final slash-separated segment of a value, such as
// the zone name in "projects/123456/zones/us-central1-a". Empty values and
// values with a trailing slash are errors.
func LastSegment(body string) (string, error) {
	body = strings.TrimSpace(body)

	i := strings.LastIndex(body, "/")
	seg := body[i+1:]

	if seg == "" {
		return "", fmt.Errorf("no final path segment in %q", body)
	}

	return seg, nil
}
