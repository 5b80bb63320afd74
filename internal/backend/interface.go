// Package backend selects and wires a storage backend from config.
package backend

import (
	"context"

	"daybook/internal/amqp"
	"daybook/internal/ledger"
)

// Backend is the full persistence surface the application needs.
type Backend interface {
	ledger.RecordStore
	ledger.StructureStore
	ledger.GasStore
}

// CleanupFunc releases backend resources at shutdown.
type CleanupFunc func() error

// BackendResult bundles the backend with its optional broker client and
// cleanup. AMQP is nil when no broker is configured or reachable.
type BackendResult struct {
	Backend Backend
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Factory creates backends based on configuration
type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

// BackendType represents the type of backend
type BackendType string

const (
	SQLiteBackend BackendType = "sqlite"
	MemoryBackend BackendType = "memory"
)

// String implements fmt.Stringer
func (bt BackendType) String() string {
	return string(bt)
}

// IsValid returns true if the backend type is valid
func (bt BackendType) IsValid() bool {
	switch bt {
	case SQLiteBackend, MemoryBackend:
		return true
	default:
		return false
	}
}
