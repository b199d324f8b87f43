// ABOUTME: Tests for the Date calendar type.
// ABOUTME: Covers parsing, arithmetic, JSON and SQL round trips.
package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain date", input: "2025-03-14", want: "2025-03-14"},
		{name: "rfc3339", input: "2025-03-14T22:10:00Z", want: "2025-03-14"},
		{name: "empty", input: "", want: ""},
		{name: "day first", input: "14/03/2025", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseDate(%q) expected error", tt.input)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %q, want %q", tt.input, got.String(), tt.want)
			}
		})
	}
}

func TestDateArithmetic(t *testing.T) {
	d := NewDate(2025, time.February, 27)

	if got := d.AddDays(2).String(); got != "2025-03-01" {
		t.Errorf("AddDays(2) = %s, want 2025-03-01", got)
	}
	if got := d.DaysUntil(NewDate(2025, time.March, 2)); got != 3 {
		t.Errorf("DaysUntil = %d, want 3", got)
	}
	if got := d.DaysUntil(NewDate(2025, time.February, 26)); got != -1 {
		t.Errorf("DaysUntil past = %d, want -1", got)
	}
	if !d.Within(d, d) {
		t.Error("Within should be inclusive on both ends")
	}
	if d.AddDays(1).Within(d.AddDays(-3), d) {
		t.Error("day after range should not be within")
	}
}

func TestDateOfUsesLocation(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)
	ts := time.Date(2025, 5, 2, 1, 30, 0, 0, time.UTC)

	if got := DateOf(ts, loc).String(); got != "2025-05-01" {
		t.Errorf("DateOf in BRT = %s, want 2025-05-01", got)
	}
	if got := DateOf(ts, time.UTC).String(); got != "2025-05-02" {
		t.Errorf("DateOf in UTC = %s, want 2025-05-02", got)
	}
}

func TestDateJSON(t *testing.T) {
	type payload struct {
		Start Date `json:"start"`
		End   Date `json:"end"`
	}

	in := payload{Start: NewDate(2025, time.January, 5)}
	data, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	if string(data) != `{"start":"2025-01-05","end":null}` {
		t.Errorf("unexpected JSON: %s", data)
	}

	var out payload
	if err := json.Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	if !out.Start.Equal(in.Start) || !out.End.IsZero() {
		t.Errorf("round trip mismatch: %+v", out)
	}
}

func TestDateScanValue(t *testing.T) {
	var d Date
	if err := d.Scan("2024-12-31"); err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	v, err := d.Value()
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != "2024-12-31" {
		t.Errorf("Value = %v, want 2024-12-31", v)
	}

	if err := d.Scan(nil); err != nil {
		t.Fatalf("Scan(nil) failed: %v", err)
	}
	if v, _ := d.Value(); v != nil {
		t.Errorf("zero Date should store NULL, got %v", v)
	}
}
