package database

import (
	"database/sql"
	"slices"
	"time"

	"github.com/dbsimple/dbsimple-go/internal/pool"
)

// PoolConfig tunes the handle shared by persistent descriptors. Zero fields
// keep the database/sql defaults.
type PoolConfig struct {
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
}

// DefaultPoolConfig returns the settings used when no WithPoolConfig option
// is given.
func DefaultPoolConfig() PoolConfig {
	return PoolConfig(pool.DefaultConfig())
}

// Options are the construction settings shared by all adapters.
type Options struct {
	// DriverName overrides the database/sql driver the adapter opens.
	DriverName string
	// Recorder receives every recorded failure.
	Recorder ErrorRecorder
	// Pool applies when the descriptor asks for a persistent connection.
	Pool PoolConfig
}

// Option configures an adapter at construction.
type Option func(*Options)

// WithDriverName opens the connection through another registered
// database/sql driver, such as an instrumented wrapper.
func WithDriverName(name string) Option {
	return func(o *Options) {
		o.DriverName = name
	}
}

// WithRecorder forwards every recorded failure to r.
func WithRecorder(r ErrorRecorder) Option {
	return func(o *Options) {
		o.Recorder = r
	}
}

// WithPoolConfig tunes the shared handle of persistent connections.
func WithPoolConfig(c PoolConfig) Option {
	return func(o *Options) {
		o.Pool = c
	}
}

// Acquire takes the database handle for dsn through the shared pool.
func (o Options) Acquire(dsn string, persistent bool) (*pool.Handle, error) {
	return pool.Acquire(o.DriverName, dsn, persistent, pool.Config(o.Pool))
}

// ApplyOptions builds Options starting from the dialect's default driver.
func ApplyOptions(defaultDriver string, opts ...Option) Options {
	o := Options{DriverName: defaultDriver, Pool: DefaultPoolConfig()}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// DriverAvailable reports whether a database/sql driver is registered under name.
func DriverAvailable(name string) bool {
	return slices.Contains(sql.Drivers(), name)
}
