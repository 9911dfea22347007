// Package scanner discovers cache metadata files under a scan root.
package scanner

import (
	"context"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/edgecache/cachereport/internal/domain"
	"github.com/edgecache/cachereport/internal/logger"
)

// WalkFunc receives each discovered metadata-file path in traversal order.
// Returning an error stops the scan.
type WalkFunc func(cinfoPath string) error

// Scanner walks a cache tree depth-first and yields every file carrying the
// metadata suffix. A read error on a subtree is logged and skipped; siblings
// continue. Failed reads are never retried.
type Scanner struct {
	root string
	log  logger.Logger
}

// New creates a scanner for the given effective scan root
func New(root string) *Scanner {
	return &Scanner{
		root: root,
		log:  logger.With("component", "scanner"),
	}
}

// Root returns the effective scan root
func (s *Scanner) Root() string {
	return s.root
}

// Walk traverses the tree once, invoking fn for each metadata file. The
// sequence is finite and non-restartable; call Walk again for a fresh pass.
func (s *Scanner) Walk(ctx context.Context, fn WalkFunc) error {
	return filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			s.log.Warn("skipping unreadable subtree", "path", path, "error", err)
			if d != nil && d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() || !strings.HasSuffix(path, domain.CinfoSuffix) {
			return nil
		}

		return fn(path)
	})
}
