package core

import (
	"encoding/json"
	"testing"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "valid", input: "2025-03-08", want: "2025-03-08"},
		{name: "invalid format", input: "08/03/2025", wantErr: true},
		{name: "invalid day", input: "2025-02-30", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDate(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDate(%q) expected error, got %s", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDate(%q) unexpected error: %v", tt.input, err)
			}
			if got.String() != tt.want {
				t.Errorf("ParseDate(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestDateMonthKey(t *testing.T) {
	d := NewDate(2025, 3, 31)
	if got := d.MonthKey(); got != "2025-03" {
		t.Errorf("MonthKey() = %s, want 2025-03", got)
	}
	if got := (Date{}).MonthKey(); got != "" {
		t.Errorf("zero date MonthKey() = %q, want empty", got)
	}
}

func TestDateJSON(t *testing.T) {
	type wrapper struct {
		D Date `json:"d"`
	}

	out, err := json.Marshal(wrapper{D: NewDate(2025, 2, 28)})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(out) != `{"d":"2025-02-28"}` {
		t.Errorf("marshal = %s", out)
	}

	out, err = json.Marshal(wrapper{})
	if err != nil {
		t.Fatalf("marshal zero: %v", err)
	}
	if string(out) != `{"d":null}` {
		t.Errorf("marshal zero = %s", out)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"d":"2025-12-01"}`), &w); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if w.D.String() != "2025-12-01" {
		t.Errorf("unmarshal = %s", w.D)
	}

	if err := json.Unmarshal([]byte(`{"d":null}`), &w); err != nil {
		t.Fatalf("unmarshal null: %v", err)
	}
	if !w.D.IsZero() {
		t.Errorf("unmarshal null should give zero date, got %s", w.D)
	}
}

func TestParseMonthKey(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    MonthKey
		wantErr bool
	}{
		{name: "valid", input: "2025-03", want: "2025-03"},
		{name: "full date rejected", input: "2025-03-01", wantErr: true},
		{name: "month out of range", input: "2025-13", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseMonthKey(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseMonthKey(%q) expected error, got %s", tt.input, got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseMonthKey(%q) unexpected error: %v", tt.input, err)
			}
			if got != tt.want {
				t.Errorf("ParseMonthKey(%q) = %s, want %s", tt.input, got, tt.want)
			}
		})
	}
}

func TestMonthKeyAddMonths(t *testing.T) {
	tests := []struct {
		name  string
		key   MonthKey
		n     int
		want  MonthKey
	}{
		{name: "forward", key: "2025-03", n: 1, want: "2025-04"},
		{name: "backward", key: "2025-01", n: -1, want: "2024-12"},
		{name: "across year", key: "2025-11", n: 3, want: "2026-02"},
		{name: "zero", key: "2025-06", n: 0, want: "2025-06"},
		{name: "many months back", key: "2025-06", n: -18, want: "2023-12"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.key.AddMonths(tt.n)
			if got != tt.want {
				t.Errorf("%s.AddMonths(%d) = %s, want %s", tt.key, tt.n, got, tt.want)
			}
		})
	}
}

func TestMonthKeyDateOn(t *testing.T) {
	if got := MonthKey("2025-02").DateOn(28); got.String() != "2025-02-28" {
		t.Errorf("DateOn(28) = %s", got)
	}
	if got := MonthKey("").DateOn(10); !got.IsZero() {
		t.Errorf("empty key DateOn should be zero, got %s", got)
	}
}
