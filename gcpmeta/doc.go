// Package gcpmeta provides a [bootmeta.Provider] for Google Compute Engine
// instances, backed by the [VM Metadata Service].
//
// # Usage
//
// Call [New] for a provider that talks to the metadata server over plain HTTP,
// with the transport returned by [NewHTTPTransport], which sends the required
// "Metadata-Flavor: Google" header. The metadata server host can be
// overridden with the GCE_METADATA_HOST environment variable (or
// GCE_METADATA_HOST_FILE, naming a file containing the host).
//
// To use the Google Cloud metadata client instead, swap in a
// [metaclient.GCPTransport]. That client retries some failures itself, so one
// attempt may then be several requests.
//
// # SSH keys
//
// Keys are read from the instance's "ssh-keys" attribute, followed by the
// project's "ssh-keys" attribute unless the instance blocks project keys with
// the "block-project-ssh-keys" attribute. Each line has the form
// "username:key", and only the key is returned.
//
// [VM Metadata Service]: https://cloud.google.com/compute/docs/metadata/overview
package gcpmeta
