package ports

import (
	"context"
	"time"
)

// UnlockFunc releases a lock obtained from a DistributedLocker.
type UnlockFunc func(ctx context.Context) error

// DistributedLocker serializes wizard transitions of one user across replicas.
type DistributedLocker interface {
	// Lock blocks until the lock for key is held or ctx is done.
	// The lease is kept alive while held; ttl bounds how long a holder
	// that died without unlocking blocks the others.
	Lock(ctx context.Context, key string, ttl time.Duration) (UnlockFunc, error)
}
