package main

import (
	"bytes"
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"

	"github.com/google/renameio/v2"
)

// platformParams are the kernel command line parameters that name the
// platform, in order of preference
//
//nolint:gochecknoglobals
var platformParams = []string{"ignition.platform.id", "coreos.oem.id"}

// detectPlatform reads the platform name from the kernel command line file
func detectPlatform(cmdlinePath string) (string, error) {
	b, err := os.ReadFile(cmdlinePath)
	if err != nil {
		return "", fmt.Errorf("detect platform: %w", err)
	}

	fields := strings.Fields(string(b))

	for _, param := range platformParams {
		for _, f := range fields {
			if v, ok := strings.CutPrefix(f, param+"="); ok && v != "" {
				return v, nil
			}
		}
	}

	return "", fmt.Errorf("detect platform: none of %v set in %s, use --provider", platformParams, cmdlinePath)
}

// formatAttributes renders attributes as KEY=VALUE lines, sorted by key
func formatAttributes(attrs map[string]string) []byte {
	b := &bytes.Buffer{}

	for _, k := range slices.Sorted(maps.Keys(attrs)) {
		fmt.Fprintf(b, "%s=%s\n", k, attrs[k])
	}

	return b.Bytes()
}

func formatLines(lines []string) []byte {
	b := &bytes.Buffer{}

	for _, l := range lines {
		b.WriteString(strings.TrimRight(l, "\n"))
		b.WriteByte('\n')
	}

	return b.Bytes()
}

// writeOutput writes out to the named file atomically, or to w when no file
// is named
func writeOutput(name string, w io.Writer, out []byte) error {
	if name == "" {
		_, err := w.Write(out)

		return err
	}

	if err := renameio.WriteFile(name, out, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}

	return nil
}
