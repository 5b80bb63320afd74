// Package services orchestrates the engine's operations across the
// stores and the message broker.
package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"daybook/internal/core"
	"daybook/internal/ledger"
)

// RecordPublisher is the outbound broker surface the service needs.
// Satisfied by *amqp.Client.
type RecordPublisher interface {
	PublishRecordSync(ctx context.Context, recordID string) error
	PublishRecordDelete(ctx context.Context, recordID string) error
}

// LedgerService orchestrates record, taxonomy and gas operations. Writes
// go to the store first; broker publishes are best-effort and never fail
// the request.
type LedgerService struct {
	records   ledger.RecordStore
	structure ledger.StructureStore
	gas       ledger.GasStore
	publisher RecordPublisher
	gasCfg    core.GasConfig
}

func NewLedgerService(records ledger.RecordStore, structure ledger.StructureStore, gas ledger.GasStore, publisher RecordPublisher, gasCfg core.GasConfig) *LedgerService {
	return &LedgerService{
		records:   records,
		structure: structure,
		gas:       gas,
		publisher: publisher,
		gasCfg:    gasCfg,
	}
}

// CreateRecord materializes a new record for the given date from the
// current taxonomy and persists it in the IN_PROGRESS state.
func (s *LedgerService) CreateRecord(ctx context.Context, date core.Date) (core.DailyRecord, error) {
	structure, err := s.structure.LoadStructure(ctx)
	if err != nil {
		return core.DailyRecord{}, fmt.Errorf("load structure: %w", err)
	}

	rec := core.NewRecordFromStructure(structure, date)
	if _, err := s.SaveRecord(ctx, rec); err != nil {
		return core.DailyRecord{}, err
	}
	return rec, nil
}

// SaveRecord validates and persists a record, then publishes a sync
// message. A publish failure is logged and swallowed: the record is
// already safe in the store.
func (s *LedgerService) SaveRecord(ctx context.Context, rec core.DailyRecord) (string, error) {
	if err := rec.ValidateForSave(); err != nil {
		return "", err
	}

	id, err := s.records.SaveRecord(ctx, rec)
	if err != nil {
		return "", fmt.Errorf("save record: %w", err)
	}

	s.publishSync(ctx, id)
	return id, nil
}

func (s *LedgerService) GetRecord(ctx context.Context, id string) (core.DailyRecord, error) {
	return s.records.GetRecord(ctx, id)
}

func (s *LedgerService) ListRecords(ctx context.Context) ([]core.DailyRecord, error) {
	return s.records.ListRecords(ctx)
}

// DeleteRecord removes a record and publishes a delete message so the
// exported row is cleaned up too.
func (s *LedgerService) DeleteRecord(ctx context.Context, id string) error {
	if err := s.records.DeleteRecord(ctx, id); err != nil {
		return fmt.Errorf("delete record: %w", err)
	}

	if s.publisher != nil {
		if err := s.publisher.PublishRecordDelete(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to publish delete message",
				"recordId", id, "error", err)
		}
	}
	return nil
}

// UpdateItemAmount applies a raw amount edit to one expense item and
// persists the record.
func (s *LedgerService) UpdateItemAmount(ctx context.Context, recordID, categoryID, itemID, rawValue string) (core.DailyRecord, error) {
	return s.editRecord(ctx, recordID, func(rec *core.DailyRecord) error {
		return rec.ApplyAmountEdit(categoryID, itemID, rawValue)
	})
}

// UpdateItemPhotos replaces one expense item's bill photo references and
// persists the record.
func (s *LedgerService) UpdateItemPhotos(ctx context.Context, recordID, categoryID, itemID string, photos []string) (core.DailyRecord, error) {
	return s.editRecord(ctx, recordID, func(rec *core.DailyRecord) error {
		return rec.ApplyPhotoEdit(categoryID, itemID, photos)
	})
}

// AddCustomItem adds a one-off item to a record's category. With persist
// set it also registers the item in the taxonomy so future records
// include it; other existing records are untouched either way. A name
// already in the taxonomy is fine.
func (s *LedgerService) AddCustomItem(ctx context.Context, recordID, categoryID, name string, persist bool) (core.DailyRecord, error) {
	var categoryName string
	rec, err := s.editRecord(ctx, recordID, func(rec *core.DailyRecord) error {
		for _, cat := range rec.Expenses {
			if cat.ID == categoryID {
				categoryName = cat.Name
			}
		}
		_, err := rec.AddCustomItem(categoryID, name)
		return err
	})
	if err != nil {
		return core.DailyRecord{}, err
	}
	if !persist {
		return rec, nil
	}

	err = s.EditStructure(ctx, func(e *core.StructureEditor) error {
		err := e.AddItem(categoryName, name, core.Money{})
		if err == core.ErrDuplicateName || err == core.ErrCategoryNotFound {
			// Already known, or the category was a record-only one.
			return nil
		}
		return err
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to register custom item in taxonomy",
			"recordId", recordID, "item", name, "error", err)
	}
	return rec, nil
}

func (s *LedgerService) editRecord(ctx context.Context, id string, edit func(*core.DailyRecord) error) (core.DailyRecord, error) {
	rec, err := s.records.GetRecord(ctx, id)
	if err != nil {
		return core.DailyRecord{}, err
	}
	if err := edit(&rec); err != nil {
		return core.DailyRecord{}, err
	}
	if _, err := s.SaveRecord(ctx, rec); err != nil {
		return core.DailyRecord{}, err
	}
	return rec, nil
}

// GetStructure returns the current expense taxonomy.
func (s *LedgerService) GetStructure(ctx context.Context) (core.Structure, error) {
	return s.structure.LoadStructure(ctx)
}

// EditStructure loads the taxonomy, runs edit against a working copy and
// persists the result. Nothing is saved when edit fails.
func (s *LedgerService) EditStructure(ctx context.Context, edit func(*core.StructureEditor) error) error {
	structure, err := s.structure.LoadStructure(ctx)
	if err != nil {
		return fmt.Errorf("load structure: %w", err)
	}

	editor := core.NewStructureEditor(structure)
	if err := edit(editor); err != nil {
		return err
	}

	if err := s.structure.SaveStructure(ctx, editor.Commit()); err != nil {
		return fmt.Errorf("save structure: %w", err)
	}
	return nil
}

// ReplaceStructure commits an edited working copy of the taxonomy
// wholesale, after validating it.
func (s *LedgerService) ReplaceStructure(ctx context.Context, structure core.Structure) (core.Structure, error) {
	if err := structure.Validate(); err != nil {
		return core.Structure{}, err
	}
	if err := s.structure.SaveStructure(ctx, structure); err != nil {
		return core.Structure{}, fmt.Errorf("save structure: %w", err)
	}
	return s.structure.LoadStructure(ctx)
}

// GasStatus is the derived view of the cylinder stock.
type GasStatus struct {
	State            core.GasState `json:"state"`
	StockCeiling     int           `json:"stockCeiling"`
	AvgDailyUsage    float64       `json:"avgDailyUsage"`
	DaysSinceSwap    int           `json:"daysSinceSwap"`
	TotalCylinders   int           `json:"totalCylinders"`
	CylindersPerBank int           `json:"cylindersPerBank"`
}

// GasStatus rebuilds the ledger and returns stock plus usage metrics.
func (s *LedgerService) GasStatus(ctx context.Context, today core.Date) (GasStatus, error) {
	gl, err := s.loadGasLedger(ctx)
	if err != nil {
		return GasStatus{}, err
	}
	return GasStatus{
		State:            gl.State(),
		StockCeiling:     s.gasCfg.StockCeiling(),
		AvgDailyUsage:    gl.AvgDailyUsage(today),
		DaysSinceSwap:    gl.DaysSinceLastSwap(today),
		TotalCylinders:   s.gasCfg.TotalCylinders,
		CylindersPerBank: s.gasCfg.CylindersPerBank,
	}, nil
}

// GasSwap records full cylinders going into use.
func (s *LedgerService) GasSwap(ctx context.Context, count int, on core.Date) (core.GasState, error) {
	return s.applyGasEvent(ctx, func(gl *core.GasLedger) (core.GasEvent, error) {
		return gl.Swap(count, on)
	})
}

// GasRefill records empty cylinders exchanged for full ones.
func (s *LedgerService) GasRefill(ctx context.Context, count int, on core.Date) (core.GasState, error) {
	return s.applyGasEvent(ctx, func(gl *core.GasLedger) (core.GasEvent, error) {
		return gl.Refill(count, on)
	})
}

func (s *LedgerService) applyGasEvent(ctx context.Context, apply func(*core.GasLedger) (core.GasEvent, error)) (core.GasState, error) {
	gl, err := s.loadGasLedger(ctx)
	if err != nil {
		return core.GasState{}, err
	}

	ev, err := apply(gl)
	if err != nil {
		return core.GasState{}, err
	}

	if err := s.gas.SaveGasState(ctx, gl.State()); err != nil {
		return core.GasState{}, fmt.Errorf("save gas state: %w", err)
	}
	if err := s.gas.AppendGasEvent(ctx, ev); err != nil {
		return core.GasState{}, fmt.Errorf("append gas event: %w", err)
	}
	return gl.State(), nil
}

func (s *LedgerService) loadGasLedger(ctx context.Context) (*core.GasLedger, error) {
	state, err := s.gas.LoadGasState(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gas state: %w", err)
	}
	events, err := s.gas.ListGasEvents(ctx)
	if err != nil {
		return nil, fmt.Errorf("load gas events: %w", err)
	}
	return core.NewGasLedger(s.gasCfg, state, events), nil
}

// TrendSeries returns the sales/expenses/profit series for the most
// recent window of records, oldest first.
func (s *LedgerService) TrendSeries(ctx context.Context, window int) ([]core.TrendPoint, error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return core.TrendSeries(records, window), nil
}

// MonthSummary aggregates one calendar month.
func (s *LedgerService) MonthSummary(ctx context.Context, year int, month time.Month, costCategories []string) (core.MonthSummary, error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return core.MonthSummary{}, fmt.Errorf("list records: %w", err)
	}
	start, end := monthBounds(year, month)
	return core.MonthAggregate(records, start, end, costCategories), nil
}

// MonthComparison aggregates a month and its predecessor and derives the
// month-over-month average-profit delta.
func (s *LedgerService) MonthComparison(ctx context.Context, year int, month time.Month, costCategories []string) (current, prior core.MonthSummary, delta float64, err error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return current, prior, 0, fmt.Errorf("list records: %w", err)
	}

	start, end := monthBounds(year, month)
	current = core.MonthAggregate(records, start, end, costCategories)

	priorStart, priorEnd := monthBounds(year, month-1)
	prior = core.MonthAggregate(records, priorStart, priorEnd, costCategories)

	delta = core.MonthOverMonthDelta(current.AvgProfitCents(), prior.AvgProfitCents())
	return current, prior, delta, nil
}

// InventoryWatch reports days since each tracked item was last bought.
func (s *LedgerService) InventoryWatch(ctx context.Context, trackedItems []string, today core.Date) ([]core.WatchEntry, error) {
	records, err := s.records.ListRecords(ctx)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}
	return core.InventoryWatch(records, trackedItems, today), nil
}

func (s *LedgerService) publishSync(ctx context.Context, id string) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishRecordSync(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"recordId", id, "error", err)
	}
}

// monthBounds returns the first and last day of a month. time.Date
// normalizes out-of-range months, so month-1 in January rolls back to
// December of the prior year.
func monthBounds(year int, month time.Month) (core.Date, core.Date) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, -1)
	return core.DateOf(start), core.DateOf(end)
}
