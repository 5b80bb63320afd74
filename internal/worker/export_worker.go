// Package worker mirrors saved records to the configured exporter off
// the request path.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"daybook/internal/amqp"
	"daybook/internal/ledger"
)

// ExportWorker consumes record messages and keeps the exported sheet in
// step with the store.
type ExportWorker struct {
	records  ledger.RecordStore
	exporter ledger.RecordExporter
}

func NewExportWorker(records ledger.RecordStore, exporter ledger.RecordExporter) *ExportWorker {
	return &ExportWorker{
		records:  records,
		exporter: exporter,
	}
}

// HandleMessage processes one record message. The current record state
// is always read back from the store, so out-of-order deliveries
// converge on the latest version.
func (w *ExportWorker) HandleMessage(ctx context.Context, msg *amqp.Message) error {
	switch msg.Kind {
	case amqp.KindRecordSync:
		return w.handleSync(ctx, msg.RecordID)
	case amqp.KindRecordDelete:
		return w.handleDelete(ctx, msg.RecordID)
	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
}

func (w *ExportWorker) handleSync(ctx context.Context, recordID string) error {
	rec, err := w.records.GetRecord(ctx, recordID)
	if errors.Is(err, ledger.ErrNotFound) {
		// Deleted between publish and delivery; the delete message will
		// clean the row, nothing to export.
		slog.WarnContext(ctx, "Record gone before export, skipping",
			"recordId", recordID)
		return nil
	}
	if err != nil {
		return fmt.Errorf("get record from storage: %w", err)
	}

	ref, err := w.exporter.Export(ctx, rec)
	if err != nil {
		return fmt.Errorf("export record: %w", err)
	}

	slog.InfoContext(ctx, "Exported record",
		"recordId", recordID,
		"ref", ref)
	return nil
}

func (w *ExportWorker) handleDelete(ctx context.Context, recordID string) error {
	if err := w.exporter.Remove(ctx, recordID); err != nil {
		return fmt.Errorf("remove exported record: %w", err)
	}

	slog.InfoContext(ctx, "Removed exported record", "recordId", recordID)
	return nil
}

// StartupExportCheck re-exports every stored record. Run once at worker
// startup to recover from missed messages or downtime; Export rewrites
// rows in place, so re-running it is harmless.
func (w *ExportWorker) StartupExportCheck(ctx context.Context) error {
	records, err := w.records.ListRecords(ctx)
	if err != nil {
		return fmt.Errorf("list records for startup check: %w", err)
	}

	if len(records) == 0 {
		slog.InfoContext(ctx, "No records found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Re-exporting stored records on startup",
		"count", len(records))

	successCount := 0
	errorCount := 0
	for _, rec := range records {
		if _, err := w.exporter.Export(ctx, rec); err != nil {
			slog.ErrorContext(ctx, "Failed to export record during startup",
				"recordId", rec.ID, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup export completed",
		"total", len(records),
		"exported", successCount,
		"errors", errorCount)
	return nil
}
