package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/hairyhenderson/go-bootmeta"
	"github.com/hairyhenderson/go-bootmeta/autoprovider"
	"github.com/hairyhenderson/go-bootmeta/metaclient"
	"github.com/hairyhenderson/go-bootmeta/metatrace"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
)

type opts struct {
	provider   string
	cmdline    string
	output     string
	maxRetries int
	timeout    time.Duration
	tracing    bool
	verbose    bool
}

func newRootCmd() *cobra.Command {
	o := &opts{}

	root := &cobra.Command{
		Use:   "bootmeta",
		Short: "Query cloud instance metadata for node provisioning",
		Long: `bootmeta queries the local cloud platform's instance metadata service, and
prints normalized instance attributes, SSH keys, or the hostname.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initLogger(cmd.ErrOrStderr(), o.verbose)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&o.provider, "provider", "p", "",
		fmt.Sprintf("platform to query (one of: %v), detected from the kernel command line when unset", autoprovider.Names()))
	pf.StringVar(&o.cmdline, "cmdline", "/proc/cmdline", "kernel command line file used for platform detection")
	pf.StringVarP(&o.output, "output", "o", "", "write output atomically to this file instead of stdout")
	pf.IntVar(&o.maxRetries, "max-retries", metaclient.DefaultMaxRetries, "retries after the first attempt for each metadata request")
	pf.DurationVar(&o.timeout, "timeout", metaclient.DefaultTimeout, "timeout for each metadata request attempt")
	pf.BoolVar(&o.tracing, "tracing", false, "enable tracing with OTel (configured with OTEL_EXPORTER_OTLP_* variables)")
	pf.BoolVarP(&o.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		&cobra.Command{
			Use:   "attributes",
			Short: "Print instance attributes as KEY=VALUE lines",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), o, cmd.OutOrStdout(), "attributes", attributes)
			},
		},
		&cobra.Command{
			Use:   "ssh-keys",
			Short: "Print the instance's SSH public keys, one per line",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), o, cmd.OutOrStdout(), "ssh-keys", sshKeys)
			},
		},
		&cobra.Command{
			Use:   "hostname",
			Short: "Print the instance's hostname",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return run(cmd.Context(), o, cmd.OutOrStdout(), "hostname", hostname)
			},
		},
	)

	return root
}

type queryFunc func(ctx context.Context, p bootmeta.Provider) ([]byte, error)

func run(ctx context.Context, o *opts, stdout io.Writer, name string, query queryFunc) error {
	platform := o.provider
	if platform == "" {
		var err error

		platform, err = detectPlatform(o.cmdline)
		if err != nil {
			return err
		}

		slog.DebugContext(ctx, "detected platform", slog.String("platform", platform))
	}

	p, err := autoprovider.Lookup(ctx, platform)
	if err != nil {
		return err
	}

	if o.tracing {
		closer, err := initTracing(context.WithoutCancel(ctx), platform)
		if err != nil {
			return fmt.Errorf("init trace exporter: %w", err)
		}

		defer func() { _ = closer(context.WithoutCancel(ctx)) }()

		tctx, span := otel.Tracer("bootmeta").Start(ctx, name)
		defer span.End()

		ctx = tctx
	}

	p = bootmeta.WithClient(p, func(c *metaclient.Client) *metaclient.Client {
		c = c.WithMaxRetries(o.maxRetries).
			WithTimeout(o.timeout).
			WithNotify(func(err error, next time.Duration) {
				slog.WarnContext(ctx, "metadata request failed, retrying",
					slog.Any("err", err), slog.Duration("backoff", next))
			})

		if o.tracing {
			c = c.WithTransport(metatrace.New(c.Transport()))
		}

		return c
	})

	slog.DebugContext(ctx, "querying metadata",
		slog.String("platform", platform), slog.String("command", name))

	out, err := query(ctx, p)
	if err != nil {
		return err
	}

	return writeOutput(o.output, stdout, out)
}

func attributes(ctx context.Context, p bootmeta.Provider) ([]byte, error) {
	attrs, err := p.Attributes(ctx)
	if err != nil {
		return nil, err
	}

	return formatAttributes(attrs), nil
}

func sshKeys(ctx context.Context, p bootmeta.Provider) ([]byte, error) {
	keys, err := p.SSHKeys(ctx)
	if err != nil {
		return nil, err
	}

	if len(keys) == 0 {
		slog.InfoContext(ctx, "no SSH keys found")
	}

	return formatLines(keys), nil
}

func hostname(ctx context.Context, p bootmeta.Provider) ([]byte, error) {
	h, found, err := bootmeta.Hostname(ctx, p)
	if err != nil {
		return nil, err
	}

	if !found {
		return nil, errors.New("no hostname set in instance metadata")
	}

	return formatLines([]string{h}), nil
}
