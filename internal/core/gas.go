package core

// The gas ledger tracks full and empty cylinder counts through two
// event kinds: a swap puts a full cylinder into use and leaves an empty
// shell behind, a refill exchanges empty shells for full ones. State is
// only ever mutated by applying events; usage rates are derived from
// the event log on read, never stored.

// GasConfig is externally-owned settings, read-only to the ledger.
// TotalCylinders is the business's whole fleet; CylindersPerBank is how
// many are connected and in use at a time, so the storable ceiling for
// full spares is TotalCylinders - CylindersPerBank.
type GasConfig struct {
	TotalCylinders   int `json:"totalCylinders"`
	CylindersPerBank int `json:"cylindersPerBank"`
}

// StockCeiling is the maximum number of full spare cylinders that can
// be on hand.
func (c GasConfig) StockCeiling() int {
	ceiling := c.TotalCylinders - c.CylindersPerBank
	if ceiling < 0 {
		return 0
	}
	return ceiling
}

// GasEventKind distinguishes the two ledger events.
type GasEventKind string

const (
	GasSwap   GasEventKind = "swap"
	GasRefill GasEventKind = "refill"
)

// GasEvent is one append-only ledger entry.
type GasEvent struct {
	ID    string       `json:"id"`
	Kind  GasEventKind `json:"kind"`
	Count int          `json:"count"`
	Date  Date         `json:"date"`
}

// GasState is the cylinder stock balance. Counts are never negative.
type GasState struct {
	CurrentStock   int  `json:"currentStock"`
	EmptyCylinders int  `json:"emptyCylinders"`
	LastSwapDate   Date `json:"lastSwapDate"`
}

// GasLedger applies events to a state under a config. It is pure
// in-memory bookkeeping; persisting the resulting state and events is
// the caller's business.
type GasLedger struct {
	cfg    GasConfig
	state  GasState
	events []GasEvent
}

// NewGasLedger builds a ledger over existing state and the historical
// event log, oldest event first.
func NewGasLedger(cfg GasConfig, state GasState, events []GasEvent) *GasLedger {
	return &GasLedger{
		cfg:    cfg,
		state:  state,
		events: append([]GasEvent(nil), events...),
	}
}

// State returns the current stock balance.
func (l *GasLedger) State() GasState {
	return l.state
}

// Events returns a copy of the event log, oldest first.
func (l *GasLedger) Events() []GasEvent {
	return append([]GasEvent(nil), l.events...)
}

// Swap moves count cylinders from stock into use. A failed swap leaves
// the state untouched. The empty-shell count goes up by the same count:
// exact consumption duration isn't tracked, so accounting assumes the
// swapped-out cylinders are exhausted at swap time.
func (l *GasLedger) Swap(count int, on Date) (GasEvent, error) {
	if count <= 0 {
		return GasEvent{}, ErrInvalidAmount
	}
	if count > l.state.CurrentStock {
		return GasEvent{}, ErrInsufficientStock
	}
	l.state.CurrentStock -= count
	l.state.EmptyCylinders += count
	l.state.LastSwapDate = on
	ev := GasEvent{ID: newID(), Kind: GasSwap, Count: count, Date: on}
	l.events = append(l.events, ev)
	return ev, nil
}

// Refill exchanges count empty shells for full cylinders. It fails when
// there aren't enough empties, and the resulting stock is clipped at
// the configured ceiling.
func (l *GasLedger) Refill(count int, on Date) (GasEvent, error) {
	if count <= 0 {
		return GasEvent{}, ErrInvalidAmount
	}
	if count > l.state.EmptyCylinders {
		return GasEvent{}, ErrInsufficientEmpty
	}
	l.state.EmptyCylinders -= count
	l.state.CurrentStock += count
	if ceiling := l.cfg.StockCeiling(); l.state.CurrentStock > ceiling {
		l.state.CurrentStock = ceiling
	}
	ev := GasEvent{ID: newID(), Kind: GasRefill, Count: count, Date: on}
	l.events = append(l.events, ev)
	return ev, nil
}

// AvgDailyUsage is the total cylinders swapped divided by the calendar
// days elapsed since the first logged swap, at least one day so a
// first-day swap doesn't divide by zero. Zero when nothing was ever
// swapped.
func (l *GasLedger) AvgDailyUsage(today Date) float64 {
	var swapped int
	var first Date
	for _, ev := range l.events {
		if ev.Kind != GasSwap {
			continue
		}
		if first.IsZero() {
			first = ev.Date
		}
		swapped += ev.Count
	}
	if swapped == 0 {
		return 0
	}
	days := first.DaysUntil(today)
	if days < 1 {
		days = 1
	}
	return float64(swapped) / float64(days)
}

// DaysSinceLastSwap returns the calendar days since the most recent
// swap event, or -1 when no swap has ever been logged.
func (l *GasLedger) DaysSinceLastSwap(today Date) int {
	var last Date
	for _, ev := range l.events {
		if ev.Kind == GasSwap {
			last = ev.Date
		}
	}
	if last.IsZero() {
		return -1
	}
	return last.DaysUntil(today)
}
