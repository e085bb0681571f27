package gcpmeta

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

//nolint:gochecknoglobals,lll
var metadataDocs = map[string]string{
	"instance/hostname":     "instance-1.c.project-id.internal",
	"instance/id":           "1234567890123456789",
	"instance/machine-type": "projects/123456789012/machineTypes/e2-medium",
	"instance/zone":         "projects/123456789012/zones/us-central1-a",

	"instance/network-interfaces/0/ip":                           "10.0.0.2",
	"instance/network-interfaces/0/access-configs/0/external-ip": "34.123.123.123",

	"instance/attributes/ssh-keys": "core:ssh-ed25519 AAAAC3NzaC1lZDI1NTE5AAAAIOMqqnkVzrm0SdG6UOoqKLsabgH5C9okWi0dh2l9GKJl core@example\n",
	"project/attributes/ssh-keys":  "user:ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC/JxGByvHDHgQAU+0nRFWdvMPi22OgNUn9ansrI8QN1ZJGxD1ML8DRnJ3Q3zFK test",
}

// fakeMetadata serves metadata documents, refusing requests without the
// Metadata-Flavor header like the real server does. Paths mapped in statuses
// are answered with that status.
type fakeMetadata struct {
	docs     map[string]string
	statuses map[string]int
	hits     map[string]int
	mu       sync.Mutex
}

func (f *fakeMetadata) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Header.Get("Metadata-Flavor") != "Google" {
		w.WriteHeader(http.StatusForbidden)

		return
	}

	p, ok := strings.CutPrefix(r.URL.Path, "/computeMetadata/v1/")
	if !ok {
		http.NotFound(w, r)

		return
	}

	f.mu.Lock()
	f.hits[p]++
	f.mu.Unlock()

	if status, ok := f.statuses[p]; ok {
		w.WriteHeader(status)

		return
	}

	body, ok := f.docs[p]
	if !ok {
		http.NotFound(w, r)

		return
	}

	w.Header().Set("Metadata-Flavor", "Google")
	_, _ = w.Write([]byte(body))
}

func (f *fakeMetadata) hitCount(p string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[p]
}

// fakeMetadataServer starts a fake metadata server, and points
// GCE_METADATA_HOST at it.
func fakeMetadataServer(t *testing.T, docs map[string]string, statuses map[string]int) (*httptest.Server, *fakeMetadata) {
	t.Helper()

	f := &fakeMetadata{docs: docs, statuses: statuses, hits: map[string]int{}}

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	t.Setenv("GCE_METADATA_HOST", strings.TrimPrefix(srv.URL, "http://"))

	return srv, f
}
