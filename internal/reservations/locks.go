package reservations

import (
	"context"
	"fmt"
	"sync"

	"parkly/internal/spots"
)

// bucketLocks is an in-process mutex per (location, zone). Every write path
// takes the bucket before the ledger's row locks, so ordering is always
// bucket -> spot rows -> reservation row. Waiting honours ctx.
type bucketLocks struct {
	mu    sync.Mutex
	locks map[string]*bucket
}

type bucket struct {
	ch   chan struct{}
	refs int
}

func newBucketLocks() *bucketLocks {
	return &bucketLocks{locks: make(map[string]*bucket)}
}

func bucketKey(locationID int64, zone spots.Zone) string {
	return fmt.Sprintf("%d/%s", locationID, zone)
}

func (b *bucketLocks) lock(ctx context.Context, key string) (func(), error) {
	b.mu.Lock()
	l, ok := b.locks[key]
	if !ok {
		l = &bucket{ch: make(chan struct{}, 1)}
		b.locks[key] = l
	}
	l.refs++
	b.mu.Unlock()

	select {
	case l.ch <- struct{}{}:
		return func() {
			<-l.ch
			b.release(key, l)
		}, nil
	case <-ctx.Done():
		b.release(key, l)
		return nil, ctx.Err()
	}
}

func (b *bucketLocks) release(key string, l *bucket) {
	b.mu.Lock()
	l.refs--
	if l.refs == 0 {
		delete(b.locks, key)
	}
	b.mu.Unlock()
}
