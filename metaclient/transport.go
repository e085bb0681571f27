package metaclient

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/hashicorp/go-cleanhttp"
)

// Transport sends a single GET request for a metadata document. A response
// with a non-2xx status is still a response: implementations must only return
// an error when no HTTP status could be obtained.
type Transport interface {
	Get(ctx context.Context, u *url.URL) (*Response, error)
}

// Response is the result of a single GET request.
type Response struct {
	Status     string
	Body       []byte
	StatusCode int
}

// HTTPTransport is a Transport that talks to the metadata service directly over
// HTTP.
type HTTPTransport struct {
	client *http.Client
	header http.Header
}

var _ Transport = (*HTTPTransport)(nil)

// NewHTTPTransport returns a Transport that uses the given HTTP client. When
// client is nil, a pooled client that doesn't share global state is used.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = cleanhttp.DefaultPooledClient()
	}

	return &HTTPTransport{
		client: client,
		header: http.Header{},
	}
}

// WithHeader returns a copy of the transport that sends the given headers with
// every request, in addition to any already configured.
func (t *HTTPTransport) WithHeader(headers http.Header) *HTTPTransport {
	if headers == nil {
		return t
	}

	tr := *t
	tr.header = t.header.Clone()

	for k, vs := range headers {
		for _, v := range vs {
			tr.header.Add(k, v)
		}
	}

	return &tr
}

// WithHTTPClient returns a copy of the transport that uses the given client.
func (t *HTTPTransport) WithHTTPClient(client *http.Client) *HTTPTransport {
	if client == nil {
		return t
	}

	tr := *t
	tr.client = client

	return &tr
}

func (t *HTTPTransport) Get(ctx context.Context, u *url.URL) (*Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header = t.header.Clone()

	resp, err := t.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Status:     resp.Status,
		Body:       b,
	}, nil
}
