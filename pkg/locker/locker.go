package locker

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrContended is returned when a lock cannot be acquired within the
// configured timeout. Callers can safely retry the whole operation.
var ErrContended = errors.New("lock acquisition timed out")

// Locker serializes mutations that touch a table or combined group. Multi-id
// acquisition (combine, group seating) takes the locks in sorted id order so
// two overlapping operations cannot deadlock each other.
type Locker interface {
	// Acquire blocks until every id is locked or the timeout expires. On
	// success the returned func releases all locks; on failure nothing is
	// held and ErrContended is returned.
	Acquire(ctx context.Context, orgID uuid.UUID, ids ...uuid.UUID) (func(), error)
}

// LocalLocker is the in-process implementation, sufficient for a single-node
// deployment and used throughout the tests.
type LocalLocker struct {
	mu      sync.Mutex
	slots   map[string]chan struct{}
	timeout time.Duration
}

// NewLocalLocker creates an in-process locker with the given acquisition timeout
func NewLocalLocker(timeout time.Duration) *LocalLocker {
	return &LocalLocker{
		slots:   make(map[string]chan struct{}),
		timeout: timeout,
	}
}

// slot returns the single-token channel guarding a key
func (l *LocalLocker) slot(key string) chan struct{} {
	l.mu.Lock()
	defer l.mu.Unlock()

	s, ok := l.slots[key]
	if !ok {
		s = make(chan struct{}, 1)
		l.slots[key] = s
	}
	return s
}

func (l *LocalLocker) Acquire(ctx context.Context, orgID uuid.UUID, ids ...uuid.UUID) (func(), error) {
	keys := lockKeys(orgID, ids)

	deadline := time.NewTimer(l.timeout)
	defer deadline.Stop()

	acquired := make([]chan struct{}, 0, len(keys))
	releaseAcquired := func() {
		// Reverse order, mirroring acquisition
		for i := len(acquired) - 1; i >= 0; i-- {
			<-acquired[i]
		}
	}

	for _, key := range keys {
		s := l.slot(key)
		select {
		case s <- struct{}{}:
			acquired = append(acquired, s)
		case <-deadline.C:
			releaseAcquired()
			return nil, ErrContended
		case <-ctx.Done():
			releaseAcquired()
			return nil, ctx.Err()
		}
	}

	var once sync.Once
	return func() {
		once.Do(releaseAcquired)
	}, nil
}

// lockKeys builds the sorted key set for an acquisition
func lockKeys(orgID uuid.UUID, ids []uuid.UUID) []string {
	keys := make([]string, 0, len(ids))
	for _, id := range ids {
		keys = append(keys, "floor:lock:"+orgID.String()+":"+id.String())
	}
	sort.Strings(keys)
	return keys
}
