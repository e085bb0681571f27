// Package metaclient provides a retrying client for instance-metadata
// services, such as the [AWS IMDS] or the [GCP VM Metadata Service].
//
// # Usage
//
// Create a client with [New], giving the root URL of the metadata service.
// Configuration is applied with the WithX methods, each of which returns a new
// client and leaves the receiver untouched, so a configured client can be
// shared freely:
//
//	c, err := metaclient.New("http://169.254.169.254/2019-10-01/")
//	if err != nil {
//		return err
//	}
//
//	c = c.WithMaxRetries(3).WithReturnOn404(true)
//
//	body, found, err := c.Fetch(ctx, "meta-data/instance-id")
//
// # Retries
//
// Transport errors and unexpected HTTP statuses are retried up to the
// configured maximum, waiting a doubling (capped) delay between attempts. A
// 404 is only retried when the client has not been told to treat it as "not
// present" with [Client.WithReturnOn404] - some platforms briefly return 404
// while metadata is still being populated.
//
// When all attempts fail, [Client.Fetch] returns a [*StatusError] if the last
// attempt received an HTTP response, or a [*TransportError] otherwise.
//
// # Transports
//
// Requests are sent through a [Transport]. By default a plain HTTP transport is
// used, but [IMDSTransport] (backed by the AWS SDK, with IMDSv2 session token
// support) and [GCPTransport] (backed by the Google Cloud metadata client) can
// be set with [Client.WithTransport].
//
// [AWS IMDS]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/ec2-instance-metadata.html
// [GCP VM Metadata Service]: https://cloud.google.com/compute/docs/metadata/overview
package metaclient
