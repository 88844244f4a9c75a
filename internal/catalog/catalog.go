// Package catalog lists the markdown documents of a mirrored tree together
// with their frontmatter.
package catalog

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/dl-alexandre/rmirror/internal/frontmatter"
	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/types"
)

// Build walks root for *.md files, skipping paths the matcher excludes.
// Unreadable files are logged and skipped; only a missing or unreadable
// root is an error. A nil matcher excludes nothing.
func Build(root string, exclude *Matcher, logger logging.Logger) (*types.Catalog, error) {
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}

	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("catalog root %s is not a directory", root)
	}

	catalog := &types.Catalog{Root: root, Entries: []*types.CatalogEntry{}}
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			logger.Warn("Skipping unreadable path", logging.F("path", path), logging.F("error", walkErr.Error()))
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		if exclude.Excluded(filepath.ToSlash(rel), d.IsDir()) {
			logger.Debug("Excluded from catalog", logging.F("path", filepath.ToSlash(rel)))
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(d.Name()), ".md") {
			return nil
		}
		content, err := os.ReadFile(path)
		if err != nil {
			logger.Warn("Skipping unreadable document", logging.F("path", rel), logging.F("error", err.Error()))
			return nil
		}

		entry := &types.CatalogEntry{Path: filepath.ToSlash(rel)}
		if meta, ok := frontmatter.Parse(content); ok {
			entry.Name = meta.Name
			entry.Description = meta.Description
			entry.HasMeta = true
		} else {
			logger.Debug("No frontmatter", logging.F("path", entry.Path))
		}
		catalog.Entries = append(catalog.Entries, entry)
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(catalog.Entries, func(i, j int) bool {
		return catalog.Entries[i].Path < catalog.Entries[j].Path
	})
	return catalog, nil
}
