package awsmeta

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
	Prefix = "AWS"

	// DefaultEndpoint is the IMDS endpoint reachable from EC2 instances
	DefaultEndpoint = "http://169.254.169.254"

	// APIVersion is the IMDS API version for clients that talk to IMDS over
	// plain HTTP (see [NewWithClient]). The SDK transport used by [New] always
	// requests the "latest" version.
	APIVersion = "2019-10-01"

	sdkVersion = "latest"

	endpointEnv = "AWS_EC2_METADATA_SERVICE_ENDPOINT"
	keyListing  = "meta-data/public-keys"
)

//nolint:gochecknoglobals
var attributes = []bootmeta.Attribute{
	{Path: "meta-data/instance-id", Key: "INSTANCE_ID"},
	{Path: "meta-data/instance-type", Key: "INSTANCE_TYPE"},
	{Path: "meta-data/local-ipv4", Key: "IPV4_LOCAL"},
	{Path: "meta-data/public-ipv4", Key: "IPV4_PUBLIC"},
	{Path: "meta-data/placement/availability-zone", Key: "AVAILABILITY_ZONE"},
	{Path: "meta-data/hostname", Key: "HOSTNAME"},
	{Path: "meta-data/public-hostname", Key: "PUBLIC_HOSTNAME"},
	{Path: "dynamic/instance-identity/document", Key: "REGION", Derive: bootmeta.JSONField("region")},
}

// Provider reads metadata from the AWS IMDS.
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
}, "aws", "ec2")

// New returns a provider for the IMDS endpoint, using the AWS SDK transport.
// Absent metadata (HTTP 404) is treated as "not present" rather than retried.
func New(ctx context.Context) (*Provider, error) {
	endpoint := strings.TrimSuffix(env.Getenv(endpointEnv, DefaultEndpoint), "/")

	client, err := metaclient.New(endpoint + "/" + sdkVersion + "/")
	if err != nil {
		return nil, fmt.Errorf("aws: %w", err)
	}

	tr, err := metaclient.NewDefaultIMDSTransport(ctx, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("aws: %w", err)
	}

	return NewWithClient(client.WithTransport(tr).WithReturnOn404(true)), nil
}

// NewWithClient returns a provider that uses the given client as-is. The
// client's base URL must be the root of a versioned IMDS API.
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
		return nil, fmt.Errorf("aws attributes: %w", err)
	}

	return attrs, nil
}

func (p *Provider) SSHKeys(ctx context.Context) ([]string, error) {
	keys, err := bootmeta.FetchIndexedKeys(ctx, p.client, keyListing)
	if err != nil {
		return nil, fmt.Errorf("aws ssh keys: %w", err)
	}

	return keys, nil
}

func (p *Provider) Hostname(ctx context.Context) (string, bool, error) {
	hostname, found, err := p.client.Fetch(ctx, "meta-data/hostname")
	if err != nil {
		return "", false, fmt.Errorf("aws hostname: %w", err)
	}

	return hostname, found, nil
}
