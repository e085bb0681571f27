package metaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"cloud.google.com/go/compute/metadata"
)

// GCPMetadataClient is the subset of the Google Cloud metadata client used by
// GCPTransport. It matches the signature of metadata.Client.GetWithContext.
type GCPMetadataClient interface {
	GetWithContext(ctx context.Context, suffix string) (string, error)
}

// gcpPathPrefix is the path at which the GCP metadata server is rooted
const gcpPathPrefix = "/computeMetadata/v1/"

// GCPTransport is a Transport for the GCP VM Metadata Service, backed by the
// Google Cloud metadata client. The client sends the required
// "Metadata-Flavor: Google" header, and honours the GCE_METADATA_HOST
// environment variable. Only the URL path is used.
//
// Note that the Google client retries some transient failures itself, before
// the Client's own policy is applied.
type GCPTransport struct {
	client GCPMetadataClient
}

var _ Transport = (*GCPTransport)(nil)

// NewGCPTransport returns a Transport that uses the given metadata client. If
// client is nil, a client is created using hc (which may also be nil).
func NewGCPTransport(client GCPMetadataClient, hc *http.Client) *GCPTransport {
	if client == nil {
		client = metadata.NewClient(hc)
	}

	return &GCPTransport{client: client}
}

func (t *GCPTransport) Get(ctx context.Context, u *url.URL) (*Response, error) {
	suffix := strings.TrimPrefix(u.Path, gcpPathPrefix)
	suffix = strings.TrimPrefix(suffix, "/")

	data, err := t.client.GetWithContext(ctx, suffix)
	if err != nil {
		return convertGCPError(err)
	}

	return &Response{
		StatusCode: http.StatusOK,
		Status:     "200 OK",
		Body:       []byte(data),
	}, nil
}

// convertGCPError turns metadata client errors that carry an HTTP status into
// plain responses, so that the SDK's error types don't leak.
func convertGCPError(err error) (*Response, error) {
	// NotDefinedError is a 404
	var ndErr metadata.NotDefinedError
	if errors.As(err, &ndErr) {
		return &Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"}, nil
	}

	var metaErr *metadata.Error
	if errors.As(err, &metaErr) {
		return &Response{
			StatusCode: metaErr.Code,
			Status:     fmt.Sprintf("%d %s", metaErr.Code, http.StatusText(metaErr.Code)),
			Body:       []byte(metaErr.Message),
		}, nil
	}

	return nil, err
}
