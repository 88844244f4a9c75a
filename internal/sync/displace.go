package sync

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// displace moves the file at localPath into the temp area as
// <name>.<unixMillis>, bumping the suffix until the target is free.
func (s *Synchronizer) displace(localPath, name string) (string, error) {
	millis := s.now().UnixMilli()
	var target string
	for {
		target = filepath.Join(s.tempDir, fmt.Sprintf("%s.%d", name, millis))
		if _, err := os.Lstat(target); err != nil {
			break
		}
		millis++
	}

	renameErr := os.Rename(localPath, target)
	if renameErr == nil {
		return target, nil
	}

	// Rename fails across filesystems (EXDEV); fall back to copy and remove.
	if err := moveByCopy(localPath, target); err != nil {
		return "", &FilesystemError{
			Op:   "displace",
			Path: localPath,
			Err:  fmt.Errorf("%v; copy fallback: %w", renameErr, err),
		}
	}
	return target, nil
}

// moveByCopy copies a regular file to dst and removes src. src is left
// untouched unless the copy is complete.
func moveByCopy(src, dst string) error {
	info, err := os.Lstat(src)
	if err != nil {
		return err
	}
	if !info.Mode().IsRegular() {
		return fmt.Errorf("cannot copy %s: not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, info.Mode().Perm())
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}

	if err := os.Remove(src); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}
