// Package fileutil holds the failure-aware file primitives used by the plan
// builder, the package executor, and the manifest emitter: streaming SHA-1
// hashing, verified copies staged through a temporary file, and atomic writes.
package fileutil

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const partSuffix = ".part-*"

// HashFile streams path through SHA-1 and returns the hex digest.
func HashFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha1.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// CopyOptions tunes CopyFileVerified.
type CopyOptions struct {
	// Mode applied to the destination file. Zero keeps 0o644.
	Mode os.FileMode
	// PreserveModTime copies the source modification time onto dst.
	PreserveModTime bool
}

// CopyStats describes a completed verified copy.
type CopyStats struct {
	Bytes int64
	// Hash is the SHA-1 hex digest of the destination content as re-read from disk.
	Hash string
}

// CopyFileVerified streams src into a temporary file next to dst, verifies size
// and SHA-1 of the written content against the source, then renames the
// temporary file over dst. The temporary file is removed on every failure path,
// so dst is either left untouched or fully replaced.
func CopyFileVerified(src, dst string, opts CopyOptions) (CopyStats, error) {
	mode := opts.Mode
	if mode == 0 {
		mode = 0o644
	}

	srcInfo, err := os.Stat(src)
	if err != nil {
		return CopyStats{}, fmt.Errorf("stat source: %w", err)
	}
	if !srcInfo.Mode().IsRegular() {
		return CopyStats{}, fmt.Errorf("source %s is not a regular file", src)
	}

	in, err := os.Open(src)
	if err != nil {
		return CopyStats{}, err
	}
	defer in.Close()

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+partSuffix)
	if err != nil {
		return CopyStats{}, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	committed := false
	defer func() {
		if !committed {
			_ = tmp.Close()
			_ = os.Remove(tmpPath)
		}
	}()

	srcHasher := sha1.New()
	written, err := io.Copy(tmp, io.TeeReader(in, srcHasher))
	if err != nil {
		return CopyStats{}, err
	}
	if err := tmp.Sync(); err != nil {
		return CopyStats{}, fmt.Errorf("sync temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return CopyStats{}, err
	}

	if written != srcInfo.Size() {
		return CopyStats{}, fmt.Errorf("copy size mismatch: source %d bytes, copied %d bytes", srcInfo.Size(), written)
	}

	dstHash, err := HashFile(tmpPath)
	if err != nil {
		return CopyStats{}, fmt.Errorf("hash copied content: %w", err)
	}
	if srcHash := hex.EncodeToString(srcHasher.Sum(nil)); srcHash != dstHash {
		return CopyStats{}, fmt.Errorf("copy hash mismatch: file corrupted during copy")
	}

	if err := os.Chmod(tmpPath, mode); err != nil {
		return CopyStats{}, fmt.Errorf("chmod temp file: %w", err)
	}
	if opts.PreserveModTime {
		mtime := srcInfo.ModTime()
		if err := os.Chtimes(tmpPath, time.Now(), mtime); err != nil {
			return CopyStats{}, fmt.Errorf("preserve modification time: %w", err)
		}
	}
	if err := os.Rename(tmpPath, dst); err != nil {
		return CopyStats{}, err
	}
	committed = true
	return CopyStats{Bytes: written, Hash: dstHash}, nil
}

// WriteFileAtomic writes data to a temporary file in the target directory and
// renames it over path, creating parent directories as needed.
func WriteFileAtomic(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory %q: %w", dir, err)
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+partSuffix)
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmpPath)
	}

	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return err
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Chmod(tmpPath, mode); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return err
	}
	return nil
}
