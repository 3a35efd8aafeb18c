package locker

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalLockerAcquireRelease(t *testing.T) {
	l := NewLocalLocker(100 * time.Millisecond)
	orgID := uuid.New()
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	release()

	// Released lock can be taken again
	release, err = l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	release()
}

func TestLocalLockerContention(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	orgID := uuid.New()
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	defer release()

	start := time.Now()
	_, err = l.Acquire(context.Background(), orgID, tableID)
	assert.ErrorIs(t, err, ErrContended)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestLocalLockerReleaseUnblocksWaiter(t *testing.T) {
	l := NewLocalLocker(time.Second)
	orgID := uuid.New()
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)

	acquired := make(chan struct{})
	go func() {
		r2, err := l.Acquire(context.Background(), orgID, tableID)
		if err == nil {
			r2()
		}
		close(acquired)
	}()

	release()

	select {
	case <-acquired:
	case <-time.After(2 * time.Second):
		t.Fatal("waiter never acquired the released lock")
	}
}

func TestLocalLockerMultiIDNoDeadlock(t *testing.T) {
	l := NewLocalLocker(2 * time.Second)
	orgID := uuid.New()
	a, b := uuid.New(), uuid.New()

	// Two goroutines take the same pair in opposite argument order. Sorted
	// acquisition means neither can hold one id while waiting on the other.
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), orgID, a, b)
			if err == nil {
				release()
			}
		}()
		go func() {
			defer wg.Done()
			release, err := l.Acquire(context.Background(), orgID, b, a)
			if err == nil {
				release()
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("multi-id acquisition deadlocked")
	}
}

func TestLocalLockerPartialFailureHoldsNothing(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	orgID := uuid.New()
	a, b := uuid.New(), uuid.New()

	// Hold b so the pair acquisition fails partway
	release, err := l.Acquire(context.Background(), orgID, b)
	require.NoError(t, err)

	_, err = l.Acquire(context.Background(), orgID, a, b)
	require.ErrorIs(t, err, ErrContended)

	// a must have been rolled back
	releaseA, err := l.Acquire(context.Background(), orgID, a)
	require.NoError(t, err)
	releaseA()

	release()
}

func TestLocalLockerContextCancel(t *testing.T) {
	l := NewLocalLocker(time.Minute)
	orgID := uuid.New()
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	_, err = l.Acquire(ctx, orgID, tableID)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocalLockerScopedByOrg(t *testing.T) {
	l := NewLocalLocker(50 * time.Millisecond)
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), uuid.New(), tableID)
	require.NoError(t, err)
	defer release()

	// Same table id under a different org is an independent lock
	release2, err := l.Acquire(context.Background(), uuid.New(), tableID)
	require.NoError(t, err)
	release2()
}

func TestLocalLockerReleaseIdempotent(t *testing.T) {
	l := NewLocalLocker(100 * time.Millisecond)
	orgID := uuid.New()
	tableID := uuid.New()

	release, err := l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	release()
	release() // second call must be a no-op, not an underflow

	release, err = l.Acquire(context.Background(), orgID, tableID)
	require.NoError(t, err)
	release()
}
