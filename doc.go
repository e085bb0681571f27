// Package bootmeta contains the provider abstraction used by a boot-time node
// provisioning agent to turn a cloud platform's instance metadata into a
// normalized form: a map of environment-variable-style attributes, and a list
// of SSH public keys.
//
// Each supported platform has its own sub-package (awsmeta, gcpmeta,
// openstackmeta) implementing [Provider] on top of a [metaclient.Client]. The
// helpers in this package ([FetchAttributes], [FetchIndexedKeys]) hold the
// aggregation algorithms, so that providers are mostly declarative tables.
//
// A [PlatformMux] maps platform names to provider constructors. The
// autoprovider package registers every provider in this module.
package bootmeta
