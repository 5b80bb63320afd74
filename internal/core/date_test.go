package core

import (
	"encoding/json"
	"testing"
)

func TestDaysUntil(t *testing.T) {
	cases := []struct {
		a, b Date
		want int
	}{
		{NewDate(2024, 3, 5), NewDate(2024, 3, 10), 5},
		{NewDate(2024, 3, 10), NewDate(2024, 3, 10), 0},
		{NewDate(2024, 2, 28), NewDate(2024, 3, 1), 2}, // leap year
		{NewDate(2024, 3, 10), NewDate(2024, 3, 5), -5},
	}
	for _, tc := range cases {
		if got := tc.a.DaysUntil(tc.b); got != tc.want {
			t.Fatalf("%s -> %s = %d, want %d", tc.a, tc.b, got, tc.want)
		}
	}
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-03-10")
	if err != nil || d != NewDate(2024, 3, 10) {
		t.Fatalf("parse: %v %v", d, err)
	}
	if d, err := ParseDate(""); err != nil || !d.IsZero() {
		t.Fatalf("empty string should yield the zero date")
	}
	if _, err := ParseDate("10/03/2024"); err == nil {
		t.Fatalf("expected error for wrong layout")
	}
}

func TestDateJSON(t *testing.T) {
	type doc struct {
		D Date `json:"d"`
	}
	out, err := json.Marshal(doc{D: NewDate(2024, 3, 10)})
	if err != nil || string(out) != `{"d":"2024-03-10"}` {
		t.Fatalf("marshal: %s %v", out, err)
	}

	cases := []struct {
		in   string
		want Date
	}{
		{`{"d":"2024-03-10"}`, NewDate(2024, 3, 10)},
		{`{"d":"2024-03-10T15:04:05Z"}`, NewDate(2024, 3, 10)}, // older builds wrote timestamps
		{`{"d":""}`, Date{}},
		{`{"d":null}`, Date{}},
	}
	for _, tc := range cases {
		var got doc
		if err := json.Unmarshal([]byte(tc.in), &got); err != nil {
			t.Fatalf("%s: %v", tc.in, err)
		}
		if got.D != tc.want {
			t.Fatalf("%s parsed as %v, want %v", tc.in, got.D, tc.want)
		}
	}
}
