package gopam

import (
	"github.com/pkg/errors"
	"github.com/theckman/go-flock"
)

// Lock is a process-wide exclusive lock over a root, acquired by every
// write-path command before it loads or mutates State. Read-only commands
// (list, info, config ...) never take it.
type Lock struct {
	fl *flock.Flock
}

// AcquireLock takes an exclusive, non-blocking lock on root's lock file.
// A second gopam process touching the same root fails fast instead of
// racing on the on-disk state.
func AcquireLock(root string) (*Lock, error) {
	p := NewPaths(root)
	fl := flock.NewFlock(p.LockFile())
	ok, err := fl.TryLock()
	if err != nil {
		return nil, errors.Wrapf(err, "locking %s", p.LockFile())
	}
	if !ok {
		return nil, errors.Errorf("another gopam process holds the lock on %s", root)
	}
	return &Lock{fl: fl}, nil
}

// Release drops the lock.
func (l *Lock) Release() error {
	return l.fl.Unlock()
}
