package main

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"gotest.tools/v3/fs"
)

func TestDetectPlatform(t *testing.T) {
	f := fs.NewFile(t, "cmdline", fs.WithContent(
		"BOOT_IMAGE=(hd0,gpt3)/ostree/vmlinuz rw ignition.platform.id=openstack quiet\n"))

	p, err := detectPlatform(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "openstack", p)

	f = fs.NewFile(t, "cmdline", fs.WithContent("root=/dev/sda1 coreos.oem.id=ec2\n"))

	p, err = detectPlatform(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "ec2", p)

	// ignition.platform.id wins
	f = fs.NewFile(t, "cmdline", fs.WithContent("coreos.oem.id=ec2 ignition.platform.id=gcp"))

	p, err = detectPlatform(f.Path())
	require.NoError(t, err)
	assert.Equal(t, "gcp", p)

	f = fs.NewFile(t, "cmdline", fs.WithContent("root=/dev/sda1 ignition.platform.id= quiet"))

	_, err = detectPlatform(f.Path())
	require.Error(t, err)

	_, err = detectPlatform(f.Path() + ".missing")
	require.Error(t, err)
}

func TestFormatAttributes(t *testing.T) {
	assert.Equal(t, "AWS_INSTANCE_ID=i-1\nAWS_REGION=us-east-1\nAWS_ZONE=\n", string(formatAttributes(map[string]string{
		"AWS_REGION":      "us-east-1",
		"AWS_ZONE":        "",
		"AWS_INSTANCE_ID": "i-1",
	})))

	assert.Empty(t, formatAttributes(map[string]string{}))
}

func TestFormatLines(t *testing.T) {
	assert.Equal(t, "ssh-rsa AAAA a\nssh-ed25519 BBBB b\n",
		string(formatLines([]string{"ssh-rsa AAAA a\n", "ssh-ed25519 BBBB b"})))
	assert.Empty(t, formatLines([]string{}))
}

func TestWriteOutput(t *testing.T) {
	w := &bytes.Buffer{}

	require.NoError(t, writeOutput("", w, []byte("hello\n")))
	assert.Equal(t, "hello\n", w.String())

	dir := fs.NewDir(t, "out", fs.WithFile("attrs.env", "OLD=1\n"))

	require.NoError(t, writeOutput(dir.Join("attrs.env"), w, []byte("NEW=1\n")))

	b, err := os.ReadFile(dir.Join("attrs.env"))
	require.NoError(t, err)
	assert.Equal(t, "NEW=1\n", string(b))

	err = writeOutput(dir.Join("missing", "attrs.env"), w, []byte("NEW=1\n"))
	require.Error(t, err)
}

func fakeOpenStack(t *testing.T, docs map[string]string) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := docs[strings.TrimPrefix(r.URL.Path, "/latest/")]
		if !ok {
			http.NotFound(w, r)

			return
		}

		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	t.Setenv("OPENSTACK_METADATA_ENDPOINT", srv.URL)
}

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}

	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(t.Context())

	return stdout.String(), stderr.String(), err
}

func TestAttributesCmd(t *testing.T) {
	fakeOpenStack(t, map[string]string{
		"meta-data/hostname":    "node-1.novalocal",
		"meta-data/instance-id": "i-0000a1b2",
		"meta-data/local-ipv4":  "10.0.0.12",
	})

	stdout, _, err := execute(t, "attributes", "--provider", "openstack", "--max-retries", "0")
	require.NoError(t, err)
	assert.Equal(t, `OPENSTACK_HOSTNAME=node-1.novalocal
OPENSTACK_INSTANCE_ID=i-0000a1b2
OPENSTACK_IPV4_LOCAL=10.0.0.12
`, stdout)

	// detected from the kernel command line, written to a file
	cmdline := fs.NewFile(t, "cmdline", fs.WithContent("rw ignition.platform.id=openstack\n"))
	dir := fs.NewDir(t, "out")

	stdout, stderr, err := execute(t, "attributes", "--cmdline", cmdline.Path(),
		"--output", dir.Join("attrs.env"), "--max-retries", "0", "-v")
	require.NoError(t, err)
	assert.Empty(t, stdout)
	assert.Contains(t, stderr, "detected platform")

	b, err := os.ReadFile(dir.Join("attrs.env"))
	require.NoError(t, err)
	assert.Contains(t, string(b), "OPENSTACK_INSTANCE_ID=i-0000a1b2\n")
}

func TestAttributesCmd_Errors(t *testing.T) {
	// missing required instance ID
	fakeOpenStack(t, map[string]string{"meta-data/hostname": "node-1.novalocal"})

	_, _, err := execute(t, "attributes", "--provider", "openstack", "--max-retries", "0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "OPENSTACK_INSTANCE_ID")

	_, _, err = execute(t, "attributes", "--provider", "azure")
	require.Error(t, err)

	_, _, err = execute(t, "attributes", "extra-arg")
	require.Error(t, err)
}

func TestSSHKeysCmd(t *testing.T) {
	fakeOpenStack(t, map[string]string{
		"meta-data/public-keys":               "0=mykey\n1=otherkey",
		"meta-data/public-keys/0/openssh-key": "ssh-ed25519 AAAA0 me@host\n",
		"meta-data/public-keys/1/openssh-key": "ssh-rsa AAAA1 other@host",
	})

	stdout, _, err := execute(t, "ssh-keys", "--provider", "openstack", "--max-retries", "0")
	require.NoError(t, err)
	assert.Equal(t, "ssh-ed25519 AAAA0 me@host\nssh-rsa AAAA1 other@host\n", stdout)
}

func TestHostnameCmd(t *testing.T) {
	fakeOpenStack(t, map[string]string{"meta-data/hostname": "node-1.novalocal"})

	stdout, _, err := execute(t, "hostname", "--provider", "openstack", "--max-retries", "0")
	require.NoError(t, err)
	assert.Equal(t, "node-1.novalocal\n", stdout)

	fakeOpenStack(t, map[string]string{})

	_, _, err = execute(t, "hostname", "--provider", "openstack", "--max-retries", "0")
	require.Error(t, err)
}

func TestRetriesAreLogged(t *testing.T) {
	hits := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		hits.Add(1)

		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	t.Cleanup(srv.Close)

	t.Setenv("OPENSTACK_METADATA_ENDPOINT", srv.URL)

	_, stderr, err := execute(t, "hostname", "--provider", "openstack", "--max-retries", "1")
	require.Error(t, err)
	assert.EqualValues(t, 2, hits.Load())
	assert.Contains(t, stderr, "level=WARN")
	assert.Contains(t, stderr, "retrying")
}

func TestTraceResource(t *testing.T) {
	t.Setenv("OTEL_RESOURCE_ATTRIBUTES", "")
	t.Setenv("OTEL_SERVICE_NAME", "")

	res, err := traceResource(t.Context(), "EC2")
	require.NoError(t, err)

	set := res.Set()

	v, ok := set.Value(semconv.ServiceNameKey)
	assert.True(t, ok)
	assert.Equal(t, "bootmeta", v.AsString())

	v, _ = set.Value(platformKey)
	assert.Equal(t, "ec2", v.AsString())

	v, _ = set.Value(semconv.CloudProviderKey)
	assert.Equal(t, "aws", v.AsString())

	v, _ = set.Value(semconv.CloudPlatformKey)
	assert.Equal(t, "aws_ec2", v.AsString())

	res, err = traceResource(t.Context(), "gce")
	require.NoError(t, err)

	v, _ = res.Set().Value(semconv.CloudPlatformKey)
	assert.Equal(t, "gcp_compute_engine", v.AsString())

	res, err = traceResource(t.Context(), "openstack")
	require.NoError(t, err)

	v, _ = res.Set().Value(platformKey)
	assert.Equal(t, "openstack", v.AsString())

	_, ok = res.Set().Value(semconv.CloudProviderKey)
	assert.False(t, ok)

	t.Setenv("OTEL_SERVICE_NAME", "node-agent")

	res, err = traceResource(t.Context(), "gcp")
	require.NoError(t, err)

	v, _ = res.Set().Value(semconv.ServiceNameKey)
	assert.Equal(t, "node-agent", v.AsString())
}
