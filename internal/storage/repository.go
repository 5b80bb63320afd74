// Package storage is the SQLite backend. Records keep their frozen
// expense tree as a JSON document column: the tree is a point-in-time
// snapshot of the taxonomy, never queried relationally.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"daybook/internal/core"
	"daybook/internal/ledger"

	_ "modernc.org/sqlite"
)

type SQLiteRepository struct {
	db *sql.DB
}

// Interface conformance with the ledger ports.
var (
	_ ledger.RecordStore    = (*SQLiteRepository)(nil)
	_ ledger.StructureStore = (*SQLiteRepository)(nil)
	_ ledger.GasStore       = (*SQLiteRepository)(nil)
)

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// SaveRecord implements ledger.RecordStore. One upsert, so either the
// whole record lands or the prior row survives untouched.
func (r *SQLiteRepository) SaveRecord(ctx context.Context, rec core.DailyRecord) (string, error) {
	expenses, err := json.Marshal(rec.Expenses)
	if err != nil {
		return "", fmt.Errorf("marshal expense tree: %w", err)
	}

	var totalSales sql.NullInt64
	if rec.TotalSales != nil {
		totalSales = sql.NullInt64{Int64: rec.TotalSales.Cents, Valid: true}
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO records (id, record_date, morning_sales_cents, total_sales_cents, is_closed, is_completed, expenses)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			record_date = excluded.record_date,
			morning_sales_cents = excluded.morning_sales_cents,
			total_sales_cents = excluded.total_sales_cents,
			is_closed = excluded.is_closed,
			is_completed = excluded.is_completed,
			expenses = excluded.expenses,
			updated_at = datetime('now')`,
		rec.ID, rec.Date.String(), rec.MorningSales.Cents, totalSales,
		rec.IsClosed, rec.IsCompleted, string(expenses))
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	slog.InfoContext(ctx, "Record saved to SQLite",
		"id", rec.ID,
		"date", rec.Date.String(),
		"status", rec.Status())

	return rec.ID, nil
}

const recordColumns = `id, record_date, morning_sales_cents, total_sales_cents, is_closed, is_completed, expenses`

func scanRecord(scan func(dest ...any) error) (core.DailyRecord, error) {
	var (
		rec         core.DailyRecord
		dateStr     string
		totalSales  sql.NullInt64
		isCompleted sql.NullBool
		expenses    string
	)
	err := scan(&rec.ID, &dateStr, &rec.MorningSales.Cents, &totalSales, &rec.IsClosed, &isCompleted, &expenses)
	if err != nil {
		return core.DailyRecord{}, err
	}

	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("parse record date %q: %w", dateStr, err)
	}
	rec.Date = date

	if totalSales.Valid {
		rec.SetTotalSales(core.Money{Cents: totalSales.Int64})
	}

	// Rows written before the three-state model have a NULL
	// is_completed; those decode as completed.
	var completed *bool
	if isCompleted.Valid {
		completed = &isCompleted.Bool
	}
	rec.SetStatus(core.StatusFromFlags(rec.IsClosed, completed))

	if err := json.Unmarshal([]byte(expenses), &rec.Expenses); err != nil {
		return core.DailyRecord{}, fmt.Errorf("unmarshal expense tree: %w", err)
	}
	return rec, nil
}

// GetRecord implements ledger.RecordStore.
func (r *SQLiteRepository) GetRecord(ctx context.Context, id string) (core.DailyRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+recordColumns+` FROM records WHERE id = ?`, id)
	rec, err := scanRecord(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DailyRecord{}, ledger.ErrNotFound
	}
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("get record: %w", err)
	}
	return rec, nil
}

// ListRecords implements ledger.RecordStore; newest day first.
func (r *SQLiteRepository) ListRecords(ctx context.Context) ([]core.DailyRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM records ORDER BY record_date DESC`)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	defer rows.Close()

	var out []core.DailyRecord
	for rows.Next() {
		rec, err := scanRecord(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("scan record: %w", err)
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate records: %w", err)
	}
	return out, nil
}

// DeleteRecord implements ledger.RecordStore. Unknown ids are ignored.
func (r *SQLiteRepository) DeleteRecord(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM records WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete record: %w", err)
	}
	slog.InfoContext(ctx, "Record deleted from SQLite", "id", id)
	return nil
}

// LoadStructure implements ledger.StructureStore. The taxonomy lives in
// a single document row; first use seeds the default structure.
func (r *SQLiteRepository) LoadStructure(ctx context.Context) (core.Structure, error) {
	var document string
	err := r.db.QueryRowContext(ctx,
		`SELECT document FROM structure WHERE id = 1`).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return core.DefaultStructure(), nil
	}
	if err != nil {
		return core.Structure{}, fmt.Errorf("load structure: %w", err)
	}

	var s core.Structure
	if err := json.Unmarshal([]byte(document), &s); err != nil {
		return core.Structure{}, fmt.Errorf("unmarshal structure: %w", err)
	}
	return s, nil
}

// SaveStructure implements ledger.StructureStore.
func (r *SQLiteRepository) SaveStructure(ctx context.Context, s core.Structure) error {
	document, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal structure: %w", err)
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO structure (id, document) VALUES (1, ?)
		ON CONFLICT(id) DO UPDATE SET
			document = excluded.document,
			updated_at = datetime('now')`,
		string(document))
	if err != nil {
		return fmt.Errorf("save structure: %w", err)
	}
	return nil
}

// LoadGasState implements ledger.GasStore. A missing row is the empty
// state.
func (r *SQLiteRepository) LoadGasState(ctx context.Context) (core.GasState, error) {
	var (
		state   core.GasState
		dateStr string
	)
	err := r.db.QueryRowContext(ctx,
		`SELECT current_stock, empty_cylinders, last_swap_date FROM gas_state WHERE id = 1`).
		Scan(&state.CurrentStock, &state.EmptyCylinders, &dateStr)
	if errors.Is(err, sql.ErrNoRows) {
		return core.GasState{}, nil
	}
	if err != nil {
		return core.GasState{}, fmt.Errorf("load gas state: %w", err)
	}
	date, err := core.ParseDate(dateStr)
	if err != nil {
		return core.GasState{}, fmt.Errorf("parse last swap date %q: %w", dateStr, err)
	}
	state.LastSwapDate = date
	return state, nil
}

// SaveGasState implements ledger.GasStore.
func (r *SQLiteRepository) SaveGasState(ctx context.Context, state core.GasState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gas_state (id, current_stock, empty_cylinders, last_swap_date)
		VALUES (1, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			current_stock = excluded.current_stock,
			empty_cylinders = excluded.empty_cylinders,
			last_swap_date = excluded.last_swap_date`,
		state.CurrentStock, state.EmptyCylinders, state.LastSwapDate.String())
	if err != nil {
		return fmt.Errorf("save gas state: %w", err)
	}
	return nil
}

// AppendGasEvent implements ledger.GasStore.
func (r *SQLiteRepository) AppendGasEvent(ctx context.Context, ev core.GasEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO gas_events (id, kind, count, event_date) VALUES (?, ?, ?, ?)`,
		ev.ID, string(ev.Kind), ev.Count, ev.Date.String())
	if err != nil {
		return fmt.Errorf("append gas event: %w", err)
	}
	return nil
}

// ListGasEvents implements ledger.GasStore; oldest first, insertion
// order within a day.
func (r *SQLiteRepository) ListGasEvents(ctx context.Context) ([]core.GasEvent, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, kind, count, event_date FROM gas_events ORDER BY event_date ASC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("list gas events: %w", err)
	}
	defer rows.Close()

	var out []core.GasEvent
	for rows.Next() {
		var (
			ev      core.GasEvent
			kind    string
			dateStr string
		)
		if err := rows.Scan(&ev.ID, &kind, &ev.Count, &dateStr); err != nil {
			return nil, fmt.Errorf("scan gas event: %w", err)
		}
		ev.Kind = core.GasEventKind(kind)
		date, err := core.ParseDate(dateStr)
		if err != nil {
			return nil, fmt.Errorf("parse gas event date %q: %w", dateStr, err)
		}
		ev.Date = date
		out = append(out, ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate gas events: %w", err)
	}
	return out, nil
}
