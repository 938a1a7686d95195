package database

import (
	"maps"
	"time"
)

// Descriptor holds the structured connection parameters handed to an adapter.
type Descriptor struct {
	// Scheme selects the registered dialect ("mysql", "sqlite", ...).
	Scheme string
	// Host and Port select a network transport.
	Host string
	Port int
	// Socket selects a local socket transport and wins over Host.
	Socket string
	// Database is the schema name, or the file path for file-based engines.
	Database string
	User     string
	Password string
	// Encoding is the connection character set. Empty means the dialect default.
	Encoding string
	// Persist shares the underlying handle between adapters opened with an
	// identical descriptor.
	Persist bool
	// Timeout bounds connection setup. Zero means no timeout.
	Timeout time.Duration
	// Options are free-form engine-specific parameters.
	Options map[string]string
}

// Clone returns a copy that does not share the Options map.
func (d Descriptor) Clone() Descriptor {
	d.Options = maps.Clone(d.Options)
	return d
}

// Option returns an engine-specific option and whether it was set.
func (d Descriptor) Option(key string) (string, bool) {
	v, ok := d.Options[key]
	return v, ok
}
