package metaclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hairyhenderson/go-bootmeta/internal"
)

// Defaults applied by New.
const (
	DefaultMaxRetries     = 10
	DefaultInitialBackoff = time.Second
	DefaultMaxBackoff     = 5 * time.Second
	DefaultTimeout        = 10 * time.Second
)

// Client fetches documents from a metadata service, retrying transient
// failures. A Client is never modified after construction: the WithX methods
// return modified copies. It is safe for concurrent use.
type Client struct {
	base           *url.URL
	transport      Transport
	notify         func(err error, next time.Duration)
	maxRetries     int
	initialBackoff time.Duration
	maxBackoff     time.Duration
	timeout        time.Duration
	returnOn404    bool
}

// New returns a client for the metadata service rooted at base, which must be
// an absolute http or https URL.
func New(base string) (*Client, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("parse base URL: %w", err)
	}

	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("invalid URL scheme %q", u.Scheme)
	}

	if u.Host == "" {
		return nil, fmt.Errorf("base URL %q has no host", base)
	}

	return &Client{
		base:           u,
		transport:      NewHTTPTransport(nil),
		maxRetries:     DefaultMaxRetries,
		initialBackoff: DefaultInitialBackoff,
		maxBackoff:     DefaultMaxBackoff,
		timeout:        DefaultTimeout,
	}, nil
}

// BaseURL returns the root URL of the metadata service.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// MaxRetries returns the number of attempts made after the first.
func (c *Client) MaxRetries() int {
	return c.maxRetries
}

// ReturnOn404 reports whether a 404 is treated as "not present".
func (c *Client) ReturnOn404() bool {
	return c.returnOn404
}

// Transport returns the transport used to send requests.
func (c *Client) Transport() Transport {
	return c.transport
}

// WithMaxRetries returns a client that makes at most n attempts after the
// first. Zero means a single attempt; negative values are treated as zero.
func (c *Client) WithMaxRetries(n int) *Client {
	cl := *c
	cl.maxRetries = max(n, 0)

	return &cl
}

// WithReturnOn404 returns a client that, when enabled, treats an HTTP 404 as
// "not present" instead of as a (retryable) failure.
func (c *Client) WithReturnOn404(enabled bool) *Client {
	cl := *c
	cl.returnOn404 = enabled

	return &cl
}

// WithTimeout returns a client that bounds each attempt to d. A non-positive
// value removes the per-attempt bound.
func (c *Client) WithTimeout(d time.Duration) *Client {
	cl := *c
	cl.timeout = max(d, 0)

	return &cl
}

// WithBackoff returns a client that waits initial before the first retry,
// doubling the delay for each subsequent retry up to maxDelay. A non-positive
// initial delay is ignored.
func (c *Client) WithBackoff(initial, maxDelay time.Duration) *Client {
	if initial <= 0 {
		return c
	}

	cl := *c
	cl.initialBackoff = initial
	cl.maxBackoff = max(maxDelay, initial)

	return &cl
}

// WithTransport returns a client that sends requests through t.
func (c *Client) WithTransport(t Transport) *Client {
	if t == nil {
		return c
	}

	cl := *c
	cl.transport = t

	return &cl
}

// WithNotify returns a client that calls fn after each failed attempt that
// will be retried, with the failure and the delay before the next attempt.
func (c *Client) WithNotify(fn func(err error, next time.Duration)) *Client {
	cl := *c
	cl.notify = fn

	return &cl
}

// Fetch retrieves the document at name, relative to the base URL.
//
// On success the body is returned with found set to true. When the document
// doesn't exist and the client returns on 404, found is false and err is nil.
// Any other outcome is an error: a *StatusError or a *TransportError once all
// attempts are exhausted.
func (c *Client) Fetch(ctx context.Context, name string) (string, bool, error) {
	u, err := internal.ResolvePath(c.base, name)
	if err != nil {
		return "", false, err
	}

	attempt := 0
	op := func() (string, error) {
		attempt++

		return c.attempt(ctx, u)
	}

	body, err := backoff.RetryNotifyWithData(op, c.backOff(ctx), c.notify)

	switch {
	case err == nil:
		return body, true, nil
	case errors.Is(err, errAbsent):
		return "", false, nil
	}

	var (
		se *StatusError
		te *TransportError
	)

	switch {
	case errors.As(err, &se):
		se.Attempts = attempt
	case errors.As(err, &te):
		te.Attempts = attempt
	default:
		// the context was cancelled while waiting between attempts
		err = &TransportError{URL: u.String(), Attempts: attempt, Err: err}
	}

	return "", false, err
}

// attempt makes a single request, classifying the outcome for the retry loop
func (c *Client) attempt(ctx context.Context, u *url.URL) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc

		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	resp, err := c.transport.Get(ctx, u)
	if err != nil {
		return "", &TransportError{URL: u.String(), Err: err}
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return string(resp.Body), nil
	case resp.StatusCode == http.StatusNotFound && c.returnOn404:
		return "", backoff.Permanent(errAbsent)
	}

	return "", &StatusError{URL: u.String(), StatusCode: resp.StatusCode, Status: resp.Status}
}

// backOff builds the delay schedule for a single Fetch. The schedule has no
// jitter, so delays never decrease.
func (c *Client) backOff(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initialBackoff
	b.MaxInterval = c.maxBackoff
	b.Multiplier = 2
	b.RandomizationFactor = 0
	b.MaxElapsedTime = 0
	b.Reset()

	//nolint:gosec // maxRetries is never negative
	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.maxRetries)), ctx)
}
