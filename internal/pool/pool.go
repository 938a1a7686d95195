// Package pool provides the database handles adapters take their live
// connection from.
//
// A persistent descriptor shares one *sql.DB between every adapter opened
// with the same driver and DSN, so connections released by one adapter are
// reused by the next. A non-persistent descriptor gets a private handle that
// is closed together with its adapter.
package pool

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"
)

// Config holds settings applied to shared handles. A zero Config keeps the
// database/sql defaults.
type Config struct {
	// MaxIdleConns is the maximum number of idle connections kept for reuse.
	MaxIdleConns int
	// ConnMaxLifetime is the maximum lifetime of a connection.
	ConnMaxLifetime time.Duration
	// ConnMaxIdleTime is the maximum idle time of a connection.
	ConnMaxIdleTime time.Duration
}

// DefaultConfig returns the settings used for shared handles.
func DefaultConfig() Config {
	return Config{
		MaxIdleConns:    5,
		ConnMaxLifetime: 30 * time.Minute,
		ConnMaxIdleTime: 10 * time.Minute,
	}
}

type entry struct {
	db   *sql.DB
	refs int
}

var (
	mu     sync.Mutex
	shared = make(map[string]*entry)
)

// Handle is one adapter's claim on a *sql.DB.
type Handle struct {
	db   *sql.DB
	key  string
	once sync.Once
}

// Acquire opens a private handle, or joins the shared handle for driverName
// and dsn when persistent is set. cfg only applies when the shared handle is
// first opened.
func Acquire(driverName, dsn string, persistent bool, cfg Config) (*Handle, error) {
	if !persistent {
		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return nil, fmt.Errorf("failed to open database: %w", err)
		}
		return &Handle{db: db}, nil
	}

	key := driverName + "\x00" + dsn

	mu.Lock()
	defer mu.Unlock()

	if e, ok := shared[key]; ok {
		e.refs++
		return &Handle{db: e.db, key: key}, nil
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	cfg.apply(db)

	shared[key] = &entry{db: db, refs: 1}
	return &Handle{db: db, key: key}, nil
}

func (c Config) apply(db *sql.DB) {
	if c.MaxIdleConns > 0 {
		db.SetMaxIdleConns(c.MaxIdleConns)
	}
	if c.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(c.ConnMaxLifetime)
	}
	if c.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(c.ConnMaxIdleTime)
	}
}

// DB returns the underlying *sql.DB.
func (h *Handle) DB() *sql.DB {
	return h.db
}

// Persistent reports whether the handle is shared.
func (h *Handle) Persistent() bool {
	return h.key != ""
}

// Conn takes a dedicated connection from the handle.
func (h *Handle) Conn(ctx context.Context) (*sql.Conn, error) {
	return h.db.Conn(ctx)
}

// Release gives the handle back. A private handle is closed; a shared one is
// closed when its last user releases it. Release is idempotent.
func (h *Handle) Release() error {
	var err error
	h.once.Do(func() {
		if h.key == "" {
			err = h.db.Close()
			return
		}

		mu.Lock()
		defer mu.Unlock()

		e, ok := shared[h.key]
		if !ok {
			return
		}
		e.refs--
		if e.refs <= 0 {
			delete(shared, h.key)
			err = e.db.Close()
		}
	})
	return err
}

// Shared returns the number of open shared handles.
func Shared() int {
	mu.Lock()
	defer mu.Unlock()
	return len(shared)
}
