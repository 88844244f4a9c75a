package catalog

import (
	"path"
	"strings"
)

// Matcher decides which paths of a mirrored tree the catalog skips.
// Patterns ending in "/" match a directory and everything below it;
// patterns with glob characters match either the full relative path or
// its base name; anything else matches a path or its base name exactly.
type Matcher struct {
	patterns []string
}

// DefaultExcludes are directories that never hold catalog documents.
func DefaultExcludes() []string {
	return []string{
		".git/",
		"node_modules/",
		"vendor/",
	}
}

// NewMatcher merges patterns with DefaultExcludes. Blank patterns are
// ignored.
func NewMatcher(patterns []string) *Matcher {
	merged := append([]string{}, DefaultExcludes()...)
	for _, p := range patterns {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		merged = append(merged, p)
	}
	return &Matcher{patterns: merged}
}

// Excluded reports whether relPath (slash separated, relative to the
// catalog root) should be skipped.
func (m *Matcher) Excluded(relPath string, isDir bool) bool {
	if m == nil {
		return false
	}
	relPath = strings.TrimPrefix(relPath, "./")
	base := path.Base(relPath)
	for _, p := range m.patterns {
		if dirPattern, ok := strings.CutSuffix(p, "/"); ok {
			if relPath == dirPattern || strings.HasPrefix(relPath, dirPattern+"/") {
				return true
			}
			if isDir && base == dirPattern {
				return true
			}
			continue
		}
		if strings.ContainsAny(p, "*?[") {
			if ok, _ := path.Match(p, relPath); ok {
				return true
			}
			if ok, _ := path.Match(p, base); ok {
				return true
			}
			continue
		}
		if relPath == p || base == p {
			return true
		}
	}
	return false
}
