package core

import (
	"errors"
	"testing"
)

func gasFixture() *GasLedger {
	cfg := GasConfig{TotalCylinders: 10, CylindersPerBank: 2}
	state := GasState{CurrentStock: 5, EmptyCylinders: 1}
	return NewGasLedger(cfg, state, nil)
}

func TestGasSwap(t *testing.T) {
	l := gasFixture()
	on := NewDate(2024, 3, 1)

	ev, err := l.Swap(2, on)
	if err != nil {
		t.Fatalf("swap: %v", err)
	}
	if ev.Kind != GasSwap || ev.Count != 2 {
		t.Fatalf("unexpected event: %+v", ev)
	}
	got := l.State()
	if got.CurrentStock != 3 || got.EmptyCylinders != 3 {
		t.Fatalf("state after swap: %+v", got)
	}
	if got.LastSwapDate != on {
		t.Fatalf("LastSwapDate not recorded")
	}
}

func TestGasSwapInsufficientStockLeavesStateUntouched(t *testing.T) {
	cfg := GasConfig{TotalCylinders: 10, CylindersPerBank: 2}
	l := NewGasLedger(cfg, GasState{CurrentStock: 1, EmptyCylinders: 4}, nil)

	_, err := l.Swap(2, NewDate(2024, 3, 1))
	if !errors.Is(err, ErrInsufficientStock) {
		t.Fatalf("expected ErrInsufficientStock, got %v", err)
	}
	got := l.State()
	if got.CurrentStock != 1 || got.EmptyCylinders != 4 {
		t.Fatalf("failed swap mutated state: %+v", got)
	}
	if len(l.Events()) != 0 {
		t.Fatalf("failed swap logged an event")
	}
}

func TestGasRefill(t *testing.T) {
	l := gasFixture()
	if _, err := l.Swap(3, NewDate(2024, 3, 1)); err != nil {
		t.Fatalf("swap: %v", err)
	}
	// stock 2, empties 4
	ev, err := l.Refill(4, NewDate(2024, 3, 2))
	if err != nil {
		t.Fatalf("refill: %v", err)
	}
	if ev.Kind != GasRefill {
		t.Fatalf("unexpected event: %+v", ev)
	}
	got := l.State()
	if got.EmptyCylinders != 0 || got.CurrentStock != 6 {
		t.Fatalf("state after refill: %+v", got)
	}
}

func TestGasRefillErrors(t *testing.T) {
	l := gasFixture() // empties: 1
	if _, err := l.Refill(2, NewDate(2024, 3, 1)); !errors.Is(err, ErrInsufficientEmpty) {
		t.Fatalf("expected ErrInsufficientEmpty, got %v", err)
	}
	if _, err := l.Refill(0, NewDate(2024, 3, 1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for zero count, got %v", err)
	}
	if _, err := l.Swap(-1, NewDate(2024, 3, 1)); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount for negative swap, got %v", err)
	}
}

func TestGasRefillClipsAtCeiling(t *testing.T) {
	cfg := GasConfig{TotalCylinders: 6, CylindersPerBank: 2}
	l := NewGasLedger(cfg, GasState{CurrentStock: 3, EmptyCylinders: 3}, nil)

	if _, err := l.Refill(3, NewDate(2024, 3, 1)); err != nil {
		t.Fatalf("refill: %v", err)
	}
	// 3+3 would exceed the 4 storable spares (6 total - 2 in the bank).
	if got := l.State().CurrentStock; got != 4 {
		t.Fatalf("stock = %d, want ceiling 4", got)
	}
}

func TestAvgDailyUsage(t *testing.T) {
	cfg := GasConfig{TotalCylinders: 20, CylindersPerBank: 2}
	l := NewGasLedger(cfg, GasState{CurrentStock: 10}, nil)
	today := NewDate(2024, 3, 11)

	if got := l.AvgDailyUsage(today); got != 0 {
		t.Fatalf("no swaps should average 0, got %v", got)
	}

	if _, err := l.Swap(2, NewDate(2024, 3, 1)); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if _, err := l.Swap(3, NewDate(2024, 3, 6)); err != nil {
		t.Fatalf("swap: %v", err)
	}
	// 5 cylinders over the 10 days since the first swap.
	if got := l.AvgDailyUsage(today); got != 0.5 {
		t.Fatalf("avg usage = %v, want 0.5", got)
	}
}

func TestAvgDailyUsageFirstSwapToday(t *testing.T) {
	cfg := GasConfig{TotalCylinders: 20, CylindersPerBank: 2}
	l := NewGasLedger(cfg, GasState{CurrentStock: 10}, nil)
	today := NewDate(2024, 3, 1)
	if _, err := l.Swap(2, today); err != nil {
		t.Fatalf("swap: %v", err)
	}
	// Zero elapsed days counts as one so the rate is finite.
	if got := l.AvgDailyUsage(today); got != 2 {
		t.Fatalf("avg usage = %v, want 2", got)
	}
}

func TestDaysSinceLastSwap(t *testing.T) {
	l := gasFixture()
	today := NewDate(2024, 3, 10)

	if got := l.DaysSinceLastSwap(today); got != -1 {
		t.Fatalf("no swaps should report -1, got %d", got)
	}
	if _, err := l.Swap(1, NewDate(2024, 3, 4)); err != nil {
		t.Fatalf("swap: %v", err)
	}
	if _, err := l.Refill(1, NewDate(2024, 3, 5)); err != nil {
		t.Fatalf("refill: %v", err)
	}
	// Refills don't move the swap clock.
	if got := l.DaysSinceLastSwap(today); got != 6 {
		t.Fatalf("days since last swap = %d, want 6", got)
	}
}

func TestGasLedgerRebuildFromEvents(t *testing.T) {
	cfg := GasConfig{TotalCylinders: 10, CylindersPerBank: 2}
	events := []GasEvent{
		{ID: "1", Kind: GasSwap, Count: 2, Date: NewDate(2024, 3, 1)},
		{ID: "2", Kind: GasRefill, Count: 2, Date: NewDate(2024, 3, 3)},
		{ID: "3", Kind: GasSwap, Count: 1, Date: NewDate(2024, 3, 5)},
	}
	l := NewGasLedger(cfg, GasState{CurrentStock: 4, EmptyCylinders: 1}, events)

	if got := l.DaysSinceLastSwap(NewDate(2024, 3, 8)); got != 3 {
		t.Fatalf("days since last swap = %d, want 3", got)
	}
	// 3 swapped over 7 days since the first swap.
	want := 3.0 / 7.0
	if got := l.AvgDailyUsage(NewDate(2024, 3, 8)); got != want {
		t.Fatalf("avg usage = %v, want %v", got, want)
	}
}
