package gcpmeta

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/hairyhenderson/go-bootmeta"
	"github.com/hairyhenderson/go-bootmeta/internal/env"
	"github.com/hairyhenderson/go-bootmeta/metaclient"
)

const (
	// Prefix is prepended to every attribute key
	Prefix = "GCP"

	// DefaultHost is the metadata server host reachable from GCE instances
	DefaultHost = "metadata.google.internal"

	hostEnv = "GCE_METADATA_HOST"

	instanceKeys = "instance/attributes/ssh-keys"
	projectKeys  = "project/attributes/ssh-keys"
	blockProject = "instance/attributes/block-project-ssh-keys"
)

//nolint:gochecknoglobals
var attributes = []bootmeta.Attribute{
	{Path: "instance/hostname", Key: "HOSTNAME"},
	{Path: "instance/network-interfaces/0/access-configs/0/external-ip", Key: "IP_EXTERNAL_0"},
	{Path: "instance/network-interfaces/0/ip", Key: "IP_LOCAL_0"},
	{Path: "instance/machine-type", Key: "MACHINE_TYPE", Derive: bootmeta.LastSegment},
	{Path: "instance/zone", Key: "ZONE", Derive: bootmeta.LastSegment},
}

// Provider reads metadata from the GCP VM Metadata Service.
type Provider struct {
	client *metaclient.Client
}

var (
	_ bootmeta.Provider  = (*Provider)(nil)
	_ bootmeta.Hostnamer = (*Provider)(nil)
)

// Platform is used to register this provider with a bootmeta.PlatformMux
//
//nolint:gochecknoglobals
var Platform = bootmeta.PlatformFunc(func(ctx context.Context) (bootmeta.Provider, error) {
	return New(ctx)
}, "gcp", "gce")

// New returns a provider for the metadata server, over plain HTTP. Absent
// metadata (HTTP 404) is treated as "not present" rather than retried.
//
// Each attempt made by the client is exactly one request. The Google Cloud
// metadata client retries on its own, so [metaclient.GCPTransport] is only
// used when set explicitly with [bootmeta.WithClient].
func New(_ context.Context) (*Provider, error) {
	client, err := metaclient.New(BaseURL())
	if err != nil {
		return nil, fmt.Errorf("gcp: %w", err)
	}

	return NewWithClient(client.WithTransport(NewHTTPTransport(nil)).WithReturnOn404(true)), nil
}

// BaseURL returns the root of the v1 metadata API, honouring GCE_METADATA_HOST.
func BaseURL() string {
	return "http://" + env.Getenv(hostEnv, DefaultHost) + "/computeMetadata/v1/"
}

// NewHTTPTransport returns an HTTP transport that sends the
// "Metadata-Flavor: Google" header required by the metadata server. The
// client may be nil.
func NewHTTPTransport(hc *http.Client) *metaclient.HTTPTransport {
	return metaclient.NewHTTPTransport(hc).WithHeader(http.Header{
		"Metadata-Flavor": []string{"Google"},
	})
}

// NewWithClient returns a provider that uses the given client as-is.
func NewWithClient(client *metaclient.Client) *Provider {
	return &Provider{client: client}
}

func (p *Provider) Client() *metaclient.Client {
	return p.client
}

func (p *Provider) WithClient(client *metaclient.Client) bootmeta.Provider {
	if client == nil {
		return p
	}

	prov := *p
	prov.client = client

	return &prov
}

func (p *Provider) Attributes(ctx context.Context) (map[string]string, error) {
	attrs, err := bootmeta.FetchAttributes(ctx, p.client, Prefix, attributes)
	if err != nil {
		return nil, fmt.Errorf("gcp attributes: %w", err)
	}

	return attrs, nil
}

func (p *Provider) SSHKeys(ctx context.Context) ([]string, error) {
	keys, err := p.fetchKeys(ctx, instanceKeys)
	if err != nil {
		return nil, fmt.Errorf("gcp ssh keys: %w", err)
	}

	block, _, err := p.client.Fetch(ctx, blockProject)
	if err != nil {
		return nil, fmt.Errorf("gcp ssh keys: %w", err)
	}

	if strings.EqualFold(strings.TrimSpace(block), "true") {
		return keys, nil
	}

	projKeys, err := p.fetchKeys(ctx, projectKeys)
	if err != nil {
		return nil, fmt.Errorf("gcp ssh keys: %w", err)
	}

	return append(keys, projKeys...), nil
}

func (p *Provider) fetchKeys(ctx context.Context, name string) ([]string, error) {
	body, found, err := p.client.Fetch(ctx, name)
	if err != nil {
		return nil, err
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

		_, key, ok := strings.Cut(line, ":")
		if !ok {
			return nil, &bootmeta.ParseError{
				Path: name,
				Err:  fmt.Errorf("malformed ssh-keys entry %q: expected username:key", line),
			}
		}

		keys = append(keys, key)
	}

	return keys, nil
}

func (p *Provider) Hostname(ctx context.Context) (string, bool, error) {
	hostname, found, err := p.client.Fetch(ctx, "instance/hostname")
	if err != nil {
		return "", false, fmt.Errorf("gcp hostname: %w", err)
	}

	return hostname, found, nil
}
