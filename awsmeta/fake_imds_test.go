package awsmeta

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

//nolint:gochecknoglobals,lll
var imdsDocs = map[string]string{
	"meta-data/instance-id":                 "i-1234567890abcdef0",
	"meta-data/instance-type":               "m4.xlarge",
	"meta-data/local-ipv4":                  "172.16.34.43",
	"meta-data/public-ipv4":                 "192.0.2.54",
	"meta-data/placement/availability-zone": "us-east-1a",
	"meta-data/hostname":                    "ip-172-16-34-43.ec2.internal",
	"meta-data/public-hostname":             "ec2-192-0-2-54.compute-1.amazonaws.com",
	"meta-data/public-keys":                 "0=my-key",
	"meta-data/public-keys/0/openssh-key":   "ssh-rsa AAAAB3NzaC1yc2EAAAADAQABAAABAQC/JxGByvHDHgQAU+0nRFWdvMPi22OgNUn9ansrI8QN1ZJGxD1ML8DRnJ3Q3zFKqqjGucfNWW0xpVib+ttkIBp8G9P test",
	"dynamic/instance-identity/document": `{
	"accountId": "0123456789",
	"imageId": "ami-0b69ea66ff7391e80",
	"availabilityZone": "us-east-1a",
	"ramdiskId": null,
	"kernelId": null,
	"version": "2017-09-30",
	"privateIp": "172.16.34.43",
	"instanceId": "i-1234567890abcdef0",
	"pendingTime": "2019-10-31T07:02:24Z",
	"architecture": "x86_64",
	"instanceType": "m4.xlarge",
	"region": "us-east-1"
}`,
}

// fakeIMDS serves metadata documents at any API version, and issues IMDSv2
// session tokens. Paths mapped in statuses are answered with that status.
type fakeIMDS struct {
	docs     map[string]string
	statuses map[string]int
	hits     map[string]int
	mu       sync.Mutex
}

func (f *fakeIMDS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path == "/latest/api/token" {
		if r.Body != nil {
			defer r.Body.Close()

			_, _ = io.ReadAll(r.Body)
		}

		w.Header().Set("X-Aws-Ec2-Metadata-Token-Ttl-Seconds", "21600")
		_, _ = w.Write([]byte("testtoken"))

		return
	}

	// drop the API version
	_, p, _ := strings.Cut(strings.TrimPrefix(r.URL.Path, "/"), "/")
	p = strings.TrimSuffix(p, "/")

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

	_, _ = w.Write([]byte(body))
}

func (f *fakeIMDS) hitCount(p string) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.hits[p]
}

func fakeIMDSServer(t *testing.T, docs map[string]string, statuses map[string]int) (*httptest.Server, *fakeIMDS) {
	t.Helper()

	require.NotNil(t, docs)

	f := &fakeIMDS{docs: docs, statuses: statuses, hits: map[string]int{}}

	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	return srv, f
}
