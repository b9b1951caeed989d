package repository

import (
	"context"
	"fmt"
	"sync"
	"time"

	"zombiezen.com/go/sqlite"
	"zombiezen.com/go/sqlite/sqlitex"

	"storefront/internal/domain/repository"
	"storefront/pkg/logger"
)

const cartSnapshotSchema = `
CREATE TABLE IF NOT EXISTS cart_snapshots (
	slot       TEXT PRIMARY KEY,
	payload    TEXT NOT NULL,
	updated_at INTEGER NOT NULL
);`

var connectionPragmas = []string{
	"PRAGMA journal_mode=WAL",
	"PRAGMA synchronous=NORMAL",
	"PRAGMA busy_timeout=5000",
	"PRAGMA temp_store=MEMORY",
}

type sqliteCartSnapshotRepository struct {
	pool *sqlitex.Pool
	path string
}

// NewSQLiteCartSnapshotRepository opens (creating if needed) the local
// database holding persisted carts.
func NewSQLiteCartSnapshotRepository(path string, poolSize int) (repository.CartSnapshotRepository, error) {
	if path == "" {
		return nil, fmt.Errorf("cart snapshot database path is required")
	}
	if poolSize <= 0 {
		poolSize = 4
	}

	pool, err := sqlitex.NewPool(path, sqlitex.PoolOptions{
		PoolSize:    poolSize,
		PrepareConn: prepareCartConnection,
	})
	if err != nil {
		return nil, fmt.Errorf("opening cart database %s: %w", path, err)
	}

	logger.Info("Cart snapshot database opened: path=%s pool_size=%d", path, poolSize)
	return &sqliteCartSnapshotRepository{pool: pool, path: path}, nil
}

func prepareCartConnection(conn *sqlite.Conn) error {
	for _, pragma := range connectionPragmas {
		if err := sqlitex.ExecuteTransient(conn, pragma, nil); err != nil {
			return fmt.Errorf("%s: %w", pragma, err)
		}
	}
	return sqlitex.ExecuteScript(conn, cartSnapshotSchema, nil)
}

func (r *sqliteCartSnapshotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("take connection: %w", err)
	}
	defer r.pool.Put(conn)

	var payload []byte
	found := false
	err = sqlitex.Execute(conn, `SELECT payload FROM cart_snapshots WHERE slot = ?`, &sqlitex.ExecOptions{
		Args: []any{key},
		ResultFunc: func(stmt *sqlite.Stmt) error {
			payload = []byte(stmt.ColumnText(0))
			found = true
			return nil
		},
	})
	if err != nil {
		return nil, false, fmt.Errorf("read slot %s: %w", key, err)
	}
	return payload, found, nil
}

func (r *sqliteCartSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	conn, err := r.pool.Take(ctx)
	if err != nil {
		return fmt.Errorf("take connection: %w", err)
	}
	defer r.pool.Put(conn)

	err = sqlitex.Execute(conn, `
		INSERT INTO cart_snapshots (slot, payload, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(slot) DO UPDATE SET payload = excluded.payload, updated_at = excluded.updated_at`,
		&sqlitex.ExecOptions{
			Args: []any{key, string(value), time.Now().UnixMilli()},
		})
	if err != nil {
		return fmt.Errorf("write slot %s: %w", key, err)
	}
	return nil
}

func (r *sqliteCartSnapshotRepository) Close() error {
	if err := r.pool.Close(); err != nil {
		return fmt.Errorf("closing cart database %s: %w", r.path, err)
	}
	return nil
}

// MemoryCartSnapshotRepository keeps slots in a map. Used by the memory
// backend and tests; a non-nil FailPut makes every write fail.
type MemoryCartSnapshotRepository struct {
	mu      sync.Mutex
	slots   map[string][]byte
	FailPut error
}

func NewMemoryCartSnapshotRepository() *MemoryCartSnapshotRepository {
	return &MemoryCartSnapshotRepository{slots: make(map[string][]byte)}
}

func (r *MemoryCartSnapshotRepository) Get(ctx context.Context, key string) ([]byte, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	value, ok := r.slots[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

func (r *MemoryCartSnapshotRepository) Put(ctx context.Context, key string, value []byte) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailPut != nil {
		return r.FailPut
	}
	r.slots[key] = append([]byte(nil), value...)
	return nil
}

func (r *MemoryCartSnapshotRepository) Close() error {
	return nil
}
