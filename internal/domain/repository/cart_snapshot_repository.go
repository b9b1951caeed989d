package repository

import (
	"context"
)

// CartSnapshotRepository is a durable string-keyed slot store. Each slot
// holds one serialized cart; Put overwrites.
type CartSnapshotRepository interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Put(ctx context.Context, key string, value []byte) error
	Close() error
}
