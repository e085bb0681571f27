// Package metatrace instruments a metadata transport for distributed tracing.
// The OpenTelemetry API is supported.
//
// This is not a transport in its own right, but a wrapper around an existing
// [metaclient.Transport]. Each attempt made by a [metaclient.Client] produces
// one span, so retries are visible as sibling spans under the caller's span.
//
// # Usage
//
// Wrap the client's transport with [New]:
//
//	c = c.WithTransport(metatrace.New(c.Transport()))
//
// In order to report traces, an OTel [trace.TracerProvider] must first be set
// up. See the bootmeta command in this repository's cmd directory for one
// approach. A [trace.TracerProvider] can optionally be passed to [New] using
// [WithTracerProvider].
package metatrace

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/hairyhenderson/go-bootmeta/metaclient"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/hairyhenderson/go-bootmeta/metatrace"

type traceTransport struct {
	next   metaclient.Transport
	tracer trace.Tracer
}

var _ metaclient.Transport = (*traceTransport)(nil)

// New returns a transport that instruments next, adding a span for each
// request. Options can be provided to configure the instrumentation.
func New(next metaclient.Transport, opts ...Option) metaclient.Transport {
	cfg := config{}
	for _, opt := range opts {
		opt.apply(&cfg)
	}

	if cfg.tp == nil {
		cfg.tp = otel.GetTracerProvider()
	}

	return &traceTransport{
		next:   next,
		tracer: cfg.tp.Tracer(tracerName),
	}
}

func (t *traceTransport) Get(ctx context.Context, u *url.URL) (*metaclient.Response, error) {
	ctx, span := t.tracer.Start(ctx, "metadata.Get",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(URL(u.String()), Type(fmt.Sprintf("%T", t.next))),
	)
	defer span.End()

	resp, err := t.next.Get(ctx, u)
	if err != nil {
		return nil, recordError(span, err)
	}

	span.SetAttributes(StatusCode(resp.StatusCode), BodySize(len(resp.Body)))

	// a 404 is an ordinary outcome for optional metadata
	if resp.StatusCode >= http.StatusBadRequest && resp.StatusCode != http.StatusNotFound {
		span.SetStatus(codes.Error, resp.Status)
	}

	return resp, nil
}

// recordError records the given error on the span, marks the span as failed,
// and returns the error.
func recordError(span trace.Span, err error) error {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	return err
}
