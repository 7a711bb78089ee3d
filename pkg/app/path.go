package app

import (
	"path/filepath"
	"runtime"
	"strings"
)

// samePath reports whether a and b name the same file once cleaned and
// with symlinks resolved. Windows paths compare case-insensitively.
func samePath(a, b string) bool {
	a, b = canonical(a), canonical(b)
	if runtime.GOOS == "windows" {
		return strings.EqualFold(a, b)
	}
	return a == b
}

func canonical(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		p = abs
	}
	if resolved, err := filepath.EvalSymlinks(p); err == nil {
		p = resolved
	}
	return filepath.Clean(p)
}
