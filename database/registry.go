package database

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
)

// OpenFunc constructs an adapter for a descriptor.
type OpenFunc func(ctx context.Context, desc Descriptor, opts ...Option) (Adapter, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]OpenFunc)
)

// Register makes a dialect available to Open under scheme. It panics if
// scheme is registered twice, like sql.Register.
func Register(scheme string, open OpenFunc) {
	registryMu.Lock()
	defer registryMu.Unlock()

	scheme = strings.ToLower(scheme)
	if open == nil {
		panic("database: Register open func is nil")
	}
	if _, dup := registry[scheme]; dup {
		panic("database: Register called twice for scheme " + scheme)
	}
	registry[scheme] = open
}

// Schemes returns the registered schemes in sorted order.
func Schemes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	out := make([]string, 0, len(registry))
	for s := range registry {
		out = append(out, s)
	}
	slices.Sort(out)
	return out
}

// Open constructs the adapter registered for desc.Scheme.
func Open(ctx context.Context, desc Descriptor, opts ...Option) (Adapter, error) {
	registryMu.RLock()
	open, ok := registry[strings.ToLower(desc.Scheme)]
	registryMu.RUnlock()

	if !ok {
		return nil, NewError(KindConfiguration, NoCode,
			fmt.Sprintf("unsupported scheme %q (registered: %s)", desc.Scheme, strings.Join(Schemes(), ", ")),
			"driver", nil)
	}
	return open(ctx, desc, opts...)
}
