// Package openstackmeta provides a [bootmeta.Provider] for OpenStack
// instances, using the EC2-compatible metadata API served by the Nova
// metadata service.
//
// The endpoint can be overridden with the OPENSTACK_METADATA_ENDPOINT
// environment variable (or OPENSTACK_METADATA_ENDPOINT_FILE).
package openstackmeta

import (
	"context"
	"fmt"
	"strings"

	"github.com/hairyhenderson/go-bootmeta"
	"github.com/hairyhenderson/go-bootmeta/internal/env"
	"github.com/hairyhenderson/go-bootmeta/metaclient"
)

const (
	// Prefix is prepended to every attribute key
	Prefix = "OPENSTACK"

	// DefaultEndpoint is the metadata endpoint reachable from instances
	DefaultEndpoint = "http://169.254.169.254"

	endpointEnv = "OPENSTACK_METADATA_ENDPOINT"
	keyListing  = "meta-data/public-keys"
)

//nolint:gochecknoglobals
var attributes = []bootmeta.Attribute{
	{Path: "meta-data/hostname", Key: "HOSTNAME"},
	{Path: "meta-data/instance-id", Key: "INSTANCE_ID", Required: true},
	{Path: "meta-data/instance-type", Key: "INSTANCE_TYPE"},
	{Path: "meta-data/local-ipv4", Key: "IPV4_LOCAL"},
	{Path: "meta-data/public-ipv4", Key: "IPV4_PUBLIC"},
}

// Provider reads metadata from the OpenStack EC2-compatible metadata API.
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
}, "openstack")

// New returns a provider for the metadata endpoint, over plain HTTP. Absent
// metadata (HTTP 404) is treated as "not present" rather than retried.
func New(_ context.Context) (*Provider, error) {
	endpoint := strings.TrimSuffix(env.Getenv(endpointEnv, DefaultEndpoint), "/")

	client, err := metaclient.New(endpoint + "/latest/")
	if err != nil {
		return nil, fmt.Errorf("openstack: %w", err)
	}

	return NewWithClient(client.WithReturnOn404(true)), nil
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
		return nil, fmt.Errorf("openstack attributes: %w", err)
	}

	return attrs, nil
}

func (p *Provider) SSHKeys(ctx context.Context) ([]string, error) {
	keys, err := bootmeta.FetchIndexedKeys(ctx, p.client, keyListing)
	if err != nil {
		return nil, fmt.Errorf("openstack ssh keys: %w", err)
	}

	return keys, nil
}

func (p *Provider) Hostname(ctx context.Context) (string, bool, error) {
	hostname, found, err := p.client.Fetch(ctx, "meta-data/hostname")
	if err != nil {
		return "", false, fmt.Errorf("openstack hostname: %w", err)
	}

	return hostname, found, nil
}
