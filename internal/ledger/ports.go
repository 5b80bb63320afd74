// Package ledger defines the ports the engine's collaborators fulfil:
// record and taxonomy persistence, the gas ledger's event log, and the
// outbound record exporter used by the worker.
package ledger

import (
	"context"
	"errors"

	"daybook/internal/core"
)

// ErrNotFound is returned by Get for an unknown record id.
var ErrNotFound = errors.New("record not found")

// Ports for outbound adapters.
type (
	RecordStore interface {
		// SaveRecord creates the record, or replaces the stored record
		// carrying the same id. Either the whole record is persisted or
		// the prior state remains; no partial writes become visible.
		SaveRecord(ctx context.Context, r core.DailyRecord) (string, error)

		// GetRecord returns a detached copy of the record, or ErrNotFound.
		GetRecord(ctx context.Context, id string) (core.DailyRecord, error)

		// ListRecords returns all records sorted descending by date.
		ListRecords(ctx context.Context) ([]core.DailyRecord, error)

		// DeleteRecord removes a record by id. Deleting an unknown id is
		// not an error.
		DeleteRecord(ctx context.Context, id string) error
	}

	StructureStore interface {
		// LoadStructure returns the persisted taxonomy, or the default
		// structure on first use.
		LoadStructure(ctx context.Context) (core.Structure, error)

		// SaveStructure replaces the persisted taxonomy wholesale.
		SaveStructure(ctx context.Context, s core.Structure) error
	}

	GasStore interface {
		LoadGasState(ctx context.Context) (core.GasState, error)
		SaveGasState(ctx context.Context, state core.GasState) error

		// AppendGasEvent adds one event to the append-only log.
		AppendGasEvent(ctx context.Context, ev core.GasEvent) error

		// ListGasEvents returns the event log, oldest first.
		ListGasEvents(ctx context.Context) ([]core.GasEvent, error)
	}

	// RecordExporter mirrors saved records to an external sheet. Used by
	// the export worker, never on the request path.
	RecordExporter interface {
		Export(ctx context.Context, r core.DailyRecord) (rowRef string, err error)
		Remove(ctx context.Context, recordID string) error
	}
)
