package metaclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/feature/ec2/imds"
	smithyhttp "github.com/aws/smithy-go/transport/http"
)

// IMDSClient is the subset of the AWS SDK's IMDS client used by IMDSTransport.
type IMDSClient interface {
	GetDynamicData(ctx context.Context, params *imds.GetDynamicDataInput, optFns ...func(*imds.Options)) (*imds.GetDynamicDataOutput, error)
	GetMetadata(ctx context.Context, params *imds.GetMetadataInput, optFns ...func(*imds.Options)) (*imds.GetMetadataOutput, error)
	GetUserData(ctx context.Context, params *imds.GetUserDataInput, optFns ...func(*imds.Options)) (*imds.GetUserDataOutput, error)
}

// IMDSTransport is a Transport for the AWS Instance Metadata Service, backed
// by the AWS SDK. The SDK negotiates IMDSv2 session tokens (falling back to
// IMDSv1 when tokens are unavailable).
//
// Only the URL path is used: paths are expected to start with "meta-data",
// "dynamic", or "user-data", optionally preceded by an API version segment
// (e.g. "/2019-10-01/meta-data/instance-id"). The SDK always uses the
// "latest" API version.
type IMDSTransport struct {
	client IMDSClient
}

var _ Transport = (*IMDSTransport)(nil)

// NewIMDSTransport returns a Transport that uses the given IMDS client.
func NewIMDSTransport(client IMDSClient) *IMDSTransport {
	return &IMDSTransport{client: client}
}

// NewDefaultIMDSTransport returns an IMDSTransport with an SDK client built
// from the default AWS configuration (so that settings such as
// AWS_EC2_METADATA_SERVICE_ENDPOINT are honoured). The SDK's own retries are
// disabled, leaving retry policy to the Client. If endpoint is non-empty, it
// overrides the configured IMDS endpoint.
//
// An optional HTTP client may be given. It replaces the client built from the
// configuration, so settings such as AWS_CA_BUNDLE don't apply to it.
func NewDefaultIMDSTransport(ctx context.Context, endpoint string, hc *http.Client) (*IMDSTransport, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	client := imds.NewFromConfig(cfg, func(o *imds.Options) {
		o.Retryer = aws.NopRetryer{}

		if hc != nil {
			o.HTTPClient = hc
		}

		if endpoint != "" {
			o.Endpoint = endpoint
		}
	})

	return NewIMDSTransport(client), nil
}

func (t *IMDSTransport) Get(ctx context.Context, u *url.URL) (*Response, error) {
	category, p := splitIMDSPath(u.Path)

	var (
		rc  io.ReadCloser
		err error
	)

	switch category {
	case "meta-data":
		var out *imds.GetMetadataOutput

		out, err = t.client.GetMetadata(ctx, &imds.GetMetadataInput{Path: p})
		if out != nil {
			rc = out.Content
		}
	case "dynamic":
		var out *imds.GetDynamicDataOutput

		out, err = t.client.GetDynamicData(ctx, &imds.GetDynamicDataInput{Path: p})
		if out != nil {
			rc = out.Content
		}
	case "user-data":
		var out *imds.GetUserDataOutput

		out, err = t.client.GetUserData(ctx, &imds.GetUserDataInput{})
		if out != nil {
			rc = out.Content
		}
	default:
		// mirrors what the service itself does for unknown categories
		return &Response{StatusCode: http.StatusNotFound, Status: "404 Not Found"}, nil
	}

	if err != nil {
		return convertIMDSError(err)
	}

	resp := &Response{StatusCode: http.StatusOK, Status: "200 OK"}

	if rc != nil {
		defer rc.Close()

		resp.Body, err = io.ReadAll(rc)
		if err != nil {
			return nil, fmt.Errorf("read body: %w", err)
		}
	}

	return resp, nil
}

// convertIMDSError turns SDK response errors into plain responses, so that the
// SDK's error types don't leak. Anything else is a transport error.
func convertIMDSError(err error) (*Response, error) {
	var respErr *smithyhttp.ResponseError
	if errors.As(err, &respErr) && respErr.Response != nil {
		return &Response{
			StatusCode: respErr.Response.StatusCode,
			Status:     respErr.Response.Status,
		}, nil
	}

	return nil, fmt.Errorf("imds: %w", err)
}

// splitIMDSPath splits a metadata path into its category ("meta-data",
// "dynamic", "user-data") and the remainder, dropping any API version prefix.
func splitIMDSPath(p string) (category, rest string) {
	p = strings.Trim(p, "/")

	first, rest, _ := strings.Cut(p, "/")
	if !isIMDSCategory(first) {
		first, rest, _ = strings.Cut(rest, "/")
	}

	if !isIMDSCategory(first) {
		return "", ""
	}

	return first, rest
}

func isIMDSCategory(s string) bool {
	switch s {
	case "meta-data", "dynamic", "user-data":
		return true
	}

	return false
}
