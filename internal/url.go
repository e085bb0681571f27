package internal

import (
	"fmt"
	"io/fs"
	"net/url"
	"strings"
)

// ValidPath reports whether name is a valid metadata path: a slash-separated,
// unrooted path with no "." or ".." elements and no backslashes. A trailing
// slash is permitted, since some metadata services use it to request a
// listing.
func ValidPath(name string) bool {
	if strings.Contains(name, "\\") {
		return false
	}

	return fs.ValidPath(strings.TrimSuffix(name, "/"))
}

// ResolvePath resolves the metadata path name against base. Metadata services
// are read-only and addressed purely by path, so names carrying a query or a
// fragment are rejected.
func ResolvePath(base *url.URL, name string) (*url.URL, error) {
	if name == "" || name == "." || !ValidPath(name) {
		return nil, fmt.Errorf("invalid metadata path %q", name)
	}

	rel, err := url.Parse(name)
	if err != nil {
		return nil, fmt.Errorf("parse metadata path %q: %w", name, err)
	}

	if rel.RawQuery != "" || rel.Fragment != "" || rel.Scheme != "" || rel.Host != "" {
		return nil, fmt.Errorf("invalid metadata path %q: only a relative path is allowed", name)
	}

	dir := *base
	if !strings.HasSuffix(dir.Path, "/") {
		dir.Path += "/"
		dir.RawPath = ""
	}

	return dir.ResolveReference(rel), nil
}
