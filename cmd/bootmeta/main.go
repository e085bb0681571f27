/*
bootmeta queries the local cloud platform's instance metadata service, and
prints the normalized results for consumption by node provisioning steps.

The platform is given with --provider, or detected from the kernel command
line's ignition.platform.id parameter.

# Usage

	bootmeta [command] [flags]

	commands:
	  attributes  Print instance attributes as KEY=VALUE lines
	  ssh-keys    Print the instance's SSH public keys, one per line
	  hostname    Print the instance's hostname

# Examples

	$ bootmeta attributes --provider aws
	AWS_AVAILABILITY_ZONE=us-east-1a
	AWS_HOSTNAME=ip-172-16-34-43.ec2.internal
	AWS_INSTANCE_ID=i-1234567890abcdef0
	...

	$ bootmeta ssh-keys --output /home/core/.ssh/authorized_keys.d/bootmeta
*/
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGQUIT, syscall.SIGTERM)

	err := newRootCmd().ExecuteContext(ctx)

	stop()

	if err != nil {
		slog.Error("exiting with error", slog.Any("err", err))
		os.Exit(1)
	}
}
