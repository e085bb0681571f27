// Package env reads configuration overrides from the environment.
package env

import (
	"io/fs"
	"os"
	"strings"
)

// Getenv returns the value of the environment variable key. When key is unset
// but key+"_FILE" names a readable file, the trimmed content of that file is
// returned instead. If neither yields a value, the first default (if any) is
// returned.
func Getenv(key string, def ...string) string {
	return getenvFS(os.DirFS("/"), key, def...)
}

func getenvFS(fsys fs.FS, key string, def ...string) string {
	if val := lookup(fsys, key); val != "" {
		return val
	}

	if len(def) > 0 {
		return def[0]
	}

	return ""
}

func lookup(fsys fs.FS, key string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	p := os.Getenv(key + "_FILE")
	if p == "" {
		return ""
	}

	b, err := fs.ReadFile(fsys, strings.TrimPrefix(p, "/"))
	if err != nil {
		return ""
	}

	return strings.TrimSpace(string(b))
}
