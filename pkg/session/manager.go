package session

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/aretw0/remnawizard/internal/logging"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
)

// DefaultLockTTL bounds how long a crashed replica can hold a distributed lock.
const DefaultLockTTL = 30 * time.Second

type lockEntry struct {
	mu   sync.Mutex
	refs int // guarded by Manager.mu
}

// Manager serializes all session work per user. Different users never
// contend with each other.
type Manager struct {
	store ports.SessionStore

	mu    sync.Mutex                    // guards locks
	locks map[domain.UserID]*lockEntry // active per-user locks

	locker  ports.DistributedLocker // optional
	lockTTL time.Duration
	logger  *slog.Logger
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL sets the lease of distributed locks.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		if ttl > 0 {
			m.lockTTL = ttl
		}
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.SessionStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[domain.UserID]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// hold serializes callers on userID's mutex and returns the matching release.
// Entries are reference counted so idle users leave nothing behind.
func (m *Manager) hold(userID domain.UserID) (release func()) {
	m.mu.Lock()
	entry := m.locks[userID]
	if entry == nil {
		entry = &lockEntry{}
		m.locks[userID] = entry
	}
	entry.refs++
	m.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()

		m.mu.Lock()
		if entry.refs--; entry.refs == 0 {
			delete(m.locks, userID)
		}
		m.mu.Unlock()
	}
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	var s *domain.Session
	err := m.WithLock(ctx, userID, func(ctx context.Context) error {
		var err error
		s, err = m.store.Load(ctx, userID)
		return err
	})
	return s, err
}

// Save persists the session.
func (m *Manager) Save(ctx context.Context, userID domain.UserID, s *domain.Session) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Save(ctx, userID, s)
	})
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, userID domain.UserID) error {
	return m.WithLock(ctx, userID, func(ctx context.Context) error {
		return m.store.Delete(ctx, userID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]domain.UserID, error) {
	return m.store.List(ctx)
}

// Store returns the underlying session store.
// Inside WithLock callers must use it directly: the manager's own methods would re-lock.
func (m *Manager) Store() ports.SessionStore {
	return m.store
}

// WithLock runs fn while holding the user's in-process lock and, when a
// locker is configured, the user's distributed lock as well.
func (m *Manager) WithLock(ctx context.Context, userID domain.UserID, fn func(context.Context) error) error {
	release := m.hold(userID)
	defer release()

	if m.locker == nil {
		return fn(ctx)
	}

	unlock, err := m.locker.Lock(ctx, strconv.FormatInt(int64(userID), 10), m.lockTTL)
	if err != nil {
		return fmt.Errorf("failed to acquire distributed lock: %w", err)
	}
	defer func() {
		// The lease still expires on its own if this fails.
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			m.logger.Warn("failed to release distributed lock", "user_id", userID, "err", err)
		}
	}()
	return fn(ctx)
}
