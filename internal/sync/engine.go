// Package sync mirrors a remote tree onto the local filesystem.
//
// The walk is depth-first and strictly sequential. Existing local files are
// never overwritten: they are moved to the temp area before the remote copy
// is downloaded. Errors on one item are counted and reported, and the walk
// continues with its siblings.
package sync

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dl-alexandre/rmirror/internal/logging"
	"github.com/dl-alexandre/rmirror/internal/provider"
	"github.com/dl-alexandre/rmirror/internal/types"
	"github.com/dl-alexandre/rmirror/internal/utils"
)

// Options tunes a Synchronizer. Zero values select the defaults.
type Options struct {
	// TempDir receives displaced files; os.TempDir() when empty.
	TempDir  string
	Now      func() time.Time
	Reporter Reporter
	Logger   logging.Logger
}

// Synchronizer walks a ContentProvider and mirrors it under a local root
type Synchronizer struct {
	provider provider.ContentProvider
	tempDir  string
	now      func() time.Time
	reporter Reporter
	logger   logging.Logger
}

func New(p provider.ContentProvider, opts Options) *Synchronizer {
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNoOpLogger()
	}
	s := &Synchronizer{
		provider: p,
		tempDir:  opts.TempDir,
		now:      opts.Now,
		reporter: opts.Reporter,
		logger:   logger,
	}
	if s.tempDir == "" {
		s.tempDir = os.TempDir()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.reporter == nil {
		s.reporter = NewLogReporter(logger)
	}
	return s
}

// Run mirrors the tree listed at rootRef into destRoot. An error is
// returned only when the run cannot begin: destRoot cannot be created or
// the root listing fails. Item errors are recorded in the returned stats.
func (s *Synchronizer) Run(ctx context.Context, rootRef, destRoot string) (*types.SyncStats, error) {
	stats := types.NewSyncStats()

	if err := os.MkdirAll(destRoot, utils.DirPerm); err != nil {
		return stats, &FilesystemError{Op: "mkdir", Path: destRoot, Err: err}
	}

	entries, err := s.provider.List(ctx, rootRef)
	if err != nil {
		return stats, fmt.Errorf("failed to list remote root: %w", err)
	}

	start := s.now()
	s.syncEntries(ctx, entries, destRoot, "", stats)

	s.logger.Info("Synchronization finished",
		logging.F("destination", destRoot),
		logging.F("downloaded", stats.Downloaded),
		logging.F("displaced", stats.Displaced),
		logging.F("errors", stats.Errors),
		logging.F("duration_ms", s.now().Sub(start).Milliseconds()),
	)
	return stats, nil
}

func (s *Synchronizer) syncEntries(ctx context.Context, entries []types.RemoteEntry, localDir, remoteDir string, stats *types.SyncStats) {
	for _, entry := range entries {
		remotePath := logicalPath(remoteDir, entry.Name)
		if err := validateName(entry.Name); err != nil {
			s.fail(stats, remotePath, err)
			continue
		}
		localPath := filepath.Join(localDir, entry.Name)

		if entry.IsDir() {
			s.syncDirectory(ctx, entry, localPath, remotePath, stats)
		} else {
			s.syncFile(ctx, entry, localPath, remotePath, stats)
		}
	}
}

func (s *Synchronizer) syncDirectory(ctx context.Context, entry types.RemoteEntry, localPath, remotePath string, stats *types.SyncStats) {
	if err := os.MkdirAll(localPath, utils.DirPerm); err != nil {
		s.fail(stats, remotePath, &FilesystemError{Op: "mkdir", Path: localPath, Err: err})
		return
	}
	if entry.ChildRef == "" {
		s.fail(stats, remotePath, ErrMissingReference)
		return
	}

	s.reporter.EnterDirectory(remotePath)
	children, err := s.provider.List(ctx, entry.ChildRef)
	if err != nil {
		s.fail(stats, remotePath, err)
		return
	}
	s.syncEntries(ctx, children, localPath, remotePath, stats)
}

func (s *Synchronizer) syncFile(ctx context.Context, entry types.RemoteEntry, localPath, remotePath string, stats *types.SyncStats) {
	if entry.ContentRef == "" {
		s.fail(stats, remotePath, ErrMissingReference)
		return
	}

	_, err := os.Lstat(localPath)
	switch {
	case err == nil:
		movedTo, err := s.displace(localPath, entry.Name)
		if err != nil {
			s.fail(stats, remotePath, err)
			return
		}
		stats.Displaced++
		s.reporter.Displaced(remotePath, movedTo)
	case !os.IsNotExist(err):
		s.fail(stats, remotePath, &FilesystemError{Op: "stat", Path: localPath, Err: err})
		return
	}

	written, err := s.download(ctx, entry.ContentRef, localPath)
	if err != nil {
		s.fail(stats, remotePath, err)
		return
	}
	stats.Downloaded++
	stats.Bytes += uint64(written)
	s.reporter.Downloaded(remotePath, written)
}

// download fetches before creating the local file so that a failed request
// leaves nothing behind. A partially written file is removed.
func (s *Synchronizer) download(ctx context.Context, contentRef, localPath string) (int64, error) {
	body, err := s.provider.Fetch(ctx, contentRef)
	if err != nil {
		return 0, err
	}
	defer body.Close()

	out, err := os.OpenFile(localPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, utils.FilePerm)
	if err != nil {
		return 0, &FilesystemError{Op: "create", Path: localPath, Err: err}
	}

	src := &readErrReader{r: body}
	written, err := io.Copy(out, src)
	if err != nil {
		out.Close()
		os.Remove(localPath)
		if src.err != nil {
			return written, &provider.TransportError{Op: "fetch", URL: contentRef, Err: err}
		}
		return written, &FilesystemError{Op: "write", Path: localPath, Err: err}
	}
	if err := out.Close(); err != nil {
		os.Remove(localPath)
		return written, &FilesystemError{Op: "write", Path: localPath, Err: err}
	}
	return written, nil
}

// readErrReader remembers a read failure so a broken stream can be told
// apart from a failed local write.
type readErrReader struct {
	r   io.Reader
	err error
}

func (r *readErrReader) Read(p []byte) (int, error) {
	n, err := r.r.Read(p)
	if err != nil && err != io.EOF {
		r.err = err
	}
	return n, err
}

func (s *Synchronizer) fail(stats *types.SyncStats, remotePath string, err error) {
	stats.RecordFailure(remotePath, failureKind(err), err)
	s.reporter.Failed(stats.Failures[len(stats.Failures)-1])
}

func validateName(name string) error {
	if name == "" || name == "." || name == ".." || strings.ContainsAny(name, `/\`) || strings.ContainsRune(name, filepath.Separator) {
		return fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return nil
}

func logicalPath(dir, name string) string {
	if dir == "" {
		return name
	}
	return dir + "/" + name
}
