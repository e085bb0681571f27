// Package awsmeta provides a [bootmeta.Provider] for AWS EC2 instances, backed
// by the [Instance Metadata Service] (IMDS).
//
// # Usage
//
// Call [New] for a provider configured for the local IMDS endpoint. Requests
// are made with the AWS SDK, which negotiates IMDSv2 session tokens. The
// endpoint can be overridden with the AWS_EC2_METADATA_SERVICE_ENDPOINT
// environment variable (or AWS_EC2_METADATA_SERVICE_ENDPOINT_FILE, naming a
// file containing the endpoint).
//
// To use a differently-configured client (e.g. in tests, or to reduce the
// number of retries), use [NewWithClient] or [bootmeta.WithClient].
//
// # Attributes
//
// The following attributes are provided, when present:
//
//   - AWS_INSTANCE_ID
//   - AWS_INSTANCE_TYPE
//   - AWS_IPV4_LOCAL
//   - AWS_IPV4_PUBLIC
//   - AWS_AVAILABILITY_ZONE
//   - AWS_HOSTNAME
//   - AWS_PUBLIC_HOSTNAME
//   - AWS_REGION (from the instance identity document)
//
// [Instance Metadata Service]: https://docs.aws.amazon.com/AWSEC2/latest/UserGuide/ec2-instance-metadata.html
package awsmeta
