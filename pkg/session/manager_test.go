package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/remnawizard/pkg/adapters/memory"
	"github.com/aretw0/remnawizard/pkg/domain"
	"github.com/aretw0/remnawizard/pkg/ports"
	"github.com/aretw0/remnawizard/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Load(ctx context.Context, userID domain.UserID) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, userID)
}

func (s SlowStore) Save(ctx context.Context, userID domain.UserID, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, userID, sess)
}

func TestManager_SerializesReadModifyWrite(t *testing.T) {
	store := SlowStore{memory.NewStore()}
	manager := session.NewManager(store)
	ctx := context.Background()
	var id domain.UserID = 100

	require.NoError(t, manager.Save(ctx, id, domain.NewSession(id)))

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := manager.WithLock(ctx, id, func(ctx context.Context) error {
				s, err := manager.Store().Load(ctx, id)
				if err != nil {
					return err
				}
				s.Fields.ExpireDays++
				return manager.Store().Save(ctx, id, s)
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	s, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, writers, s.Fields.ExpireDays, "no update may be lost")
}

func TestManager_DifferentUsersDoNotBlock(t *testing.T) {
	manager := session.NewManager(memory.NewStore())
	ctx := context.Background()

	held := make(chan struct{})
	done := make(chan struct{})
	go func() {
		_ = manager.WithLock(ctx, 1, func(ctx context.Context) error {
			close(held)
			<-done
			return nil
		})
	}()
	<-held

	finished := make(chan struct{})
	go func() {
		_ = manager.Save(ctx, 2, domain.NewSession(2))
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("user 2 was blocked by user 1's lock")
	}
	close(done)
}

type failingLocker struct{}

func (failingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	return nil, errors.New("redis down")
}

type recordingLocker struct {
	mu    sync.Mutex
	keys  []string
	ttls  []time.Duration
	freed int
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.keys = append(l.keys, key)
	l.ttls = append(l.ttls, ttl)
	return func(ctx context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.freed++
		return nil
	}, nil
}

func TestManager_DistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(memory.NewStore(), session.WithLocker(locker), session.WithLockTTL(time.Second))

	require.NoError(t, manager.Save(context.Background(), 77, domain.NewSession(77)))

	assert.Equal(t, []string{"77"}, locker.keys)
	assert.Equal(t, []time.Duration{time.Second}, locker.ttls)
	assert.Equal(t, 1, locker.freed)
}

func TestManager_LockerFailureSkipsFn(t *testing.T) {
	manager := session.NewManager(memory.NewStore(), session.WithLocker(failingLocker{}))

	called := false
	err := manager.WithLock(context.Background(), 1, func(ctx context.Context) error {
		called = true
		return nil
	})
	assert.ErrorContains(t, err, "redis down")
	assert.False(t, called)
}
