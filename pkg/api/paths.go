package api

import (
	"path/filepath"
	"strings"
)

// resolvePath maps a client-supplied path onto the data directory.
// An empty path or "." selects the data directory itself when allowRoot is set.
func resolvePath(dataDir, p string, allowRoot bool) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" || p == "." {
		if !allowRoot {
			return "", ErrPathRequired
		}
		return filepath.Clean(dataDir), nil
	}
	if !filepath.IsLocal(p) {
		return "", ErrPathNotLocal
	}
	return filepath.Join(dataDir, p), nil
}
