package metatrace

import (
	"go.opentelemetry.io/otel/attribute"
)

const (
	typeKey       = attribute.Key("metadata.transport")
	urlKey        = attribute.Key("metadata.url")
	statusCodeKey = attribute.Key("metadata.status_code")
	bodySizeKey   = attribute.Key("metadata.body_size")
)

// The type of transport used to reach the metadata service.
//
// Type: string
// Required: No
// Examples: "*metaclient.HTTPTransport", "*metaclient.IMDSTransport"
func Type(name string) attribute.KeyValue {
	return typeKey.String(name)
}

// The URL of the metadata document being requested.
//
// Type: string
// Required: Yes
// Examples: "http://169.254.169.254/2019-10-01/meta-data/instance-id"
func URL(u string) attribute.KeyValue {
	return urlKey.String(u)
}

// The HTTP status code of the response.
//
// Type: int
// Required: No
// Examples: 200, 404
func StatusCode(code int) attribute.KeyValue {
	return statusCodeKey.Int(code)
}

// The size of the response body.
//
// Type: int
// Required: No
// Examples: 19, 0
func BodySize(n int) attribute.KeyValue {
	return bodySizeKey.Int(n)
}
