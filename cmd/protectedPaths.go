package cmd

import (
	"path"
	"strings"
)

// protectedPaths is the fixed denylist of remote system directories that
// deployment must never write to, regardless of configuration. The check is
// unconditional; there is deliberately no flag to bypass it.
var protectedPaths = []string{
	"/bin",
	"/sbin",
	"/lib",
	"/lib64",
	"/usr/bin",
	"/usr/sbin",
	"/usr/lib",
	"/usr/lib64",
	"/etc",
	"/boot",
	"/dev",
	"/proc",
	"/sys",
}

// isProtectedPath reports whether dest is the remote root, one of the
// protected directories, or a subdirectory of one.
func isProtectedPath(dest string) bool {
	d := path.Clean(dest)
	if d == "/" || d == "." || d == "" {
		return true
	}
	for _, p := range protectedPaths {
		if d == p || strings.HasPrefix(d, p+"/") {
			return true
		}
	}
	return false
}
