package packager

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"studiodrop/internal/services"
)

// LockPath returns the lock file guarding outputRoot inside lockDir.
func LockPath(lockDir, outputRoot string) string {
	sum := sha1.Sum([]byte(filepath.Clean(outputRoot)))
	return filepath.Join(lockDir, hex.EncodeToString(sum[:8])+".lock")
}

// acquireLock takes the exclusive package lock for outputRoot. The returned
// function releases it.
func acquireLock(lockDir, outputRoot string) (func() error, error) {
	if err := os.MkdirAll(lockDir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "package", "create lock dir", lockDir, err)
	}
	path := LockPath(lockDir, outputRoot)
	lock := flock.New(path)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrLocked, "package", "acquire lock", path, err)
	}
	if !ok {
		return nil, services.Wrap(services.ErrLocked, "package", "acquire lock",
			fmt.Sprintf("another package run is writing to %s", outputRoot), nil)
	}
	return lock.Unlock, nil
}
