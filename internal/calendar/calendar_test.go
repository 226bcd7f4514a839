package calendar

import (
	"testing"

	"contas/internal/core"
)

func TestClampDay(t *testing.T) {
	tests := []struct {
		name string
		day  int
		want int
	}{
		{name: "negative", day: -5, want: 1},
		{name: "zero", day: 0, want: 1},
		{name: "one", day: 1, want: 1},
		{name: "middle", day: 15, want: 15},
		{name: "twenty-eight", day: 28, want: 28},
		{name: "twenty-nine", day: 29, want: 28},
		{name: "thirty-one", day: 31, want: 28},
		{name: "way over", day: 400, want: 28},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ClampDay(tt.day)
			if got != tt.want {
				t.Errorf("ClampDay(%d) = %d, want %d", tt.day, got, tt.want)
			}
			if got < 1 || got > 28 {
				t.Errorf("ClampDay(%d) = %d, outside [1,28]", tt.day, got)
			}
		})
	}
}

func TestStatementMonth(t *testing.T) {
	tests := []struct {
		name       string
		date       core.Date
		closingDay int
		want       core.MonthKey
	}{
		{
			name:       "on closing day stays in current month",
			date:       core.NewDate(2025, 3, 8),
			closingDay: 8,
			want:       "2025-03",
		},
		{
			name:       "day after closing rolls to next month",
			date:       core.NewDate(2025, 3, 9),
			closingDay: 8,
			want:       "2025-04",
		},
		{
			name:       "well before closing",
			date:       core.NewDate(2025, 3, 1),
			closingDay: 8,
			want:       "2025-03",
		},
		{
			name:       "december rollover",
			date:       core.NewDate(2025, 12, 20),
			closingDay: 8,
			want:       "2026-01",
		},
		{
			name:       "closing day 31 behaves as 28",
			date:       core.NewDate(2025, 1, 29),
			closingDay: 31,
			want:       "2025-02",
		},
		{
			name:       "day 28 with closing day 31 stays",
			date:       core.NewDate(2025, 1, 28),
			closingDay: 31,
			want:       "2025-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := StatementMonth(tt.date, tt.closingDay)
			if got != tt.want {
				t.Errorf("StatementMonth(%s, %d) = %s, want %s", tt.date, tt.closingDay, got, tt.want)
			}
		})
	}
}

func TestDueDate(t *testing.T) {
	tests := []struct {
		name         string
		statement    core.MonthKey
		dueDay       int
		offsetMonths int
		want         string
	}{
		{
			name:         "offset one month",
			statement:    "2025-03",
			dueDay:       15,
			offsetMonths: 1,
			want:         "2025-04-15",
		},
		{
			name:         "no offset",
			statement:    "2025-03",
			dueDay:       10,
			offsetMonths: 0,
			want:         "2025-03-10",
		},
		{
			name:         "due day clamped",
			statement:    "2025-01",
			dueDay:       31,
			offsetMonths: 1,
			want:         "2025-02-28",
		},
		{
			name:         "year rollover",
			statement:    "2025-12",
			dueDay:       5,
			offsetMonths: 1,
			want:         "2026-01-05",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDate(tt.statement, tt.dueDay, tt.offsetMonths)
			if got.String() != tt.want {
				t.Errorf("DueDate(%s, %d, %d) = %s, want %s", tt.statement, tt.dueDay, tt.offsetMonths, got, tt.want)
			}
		})
	}
}

func TestDueDateForBill(t *testing.T) {
	tests := []struct {
		name   string
		month  core.MonthKey
		dueDay int
		want   string
	}{
		{name: "plain", month: "2025-05", dueDay: 10, want: "2025-05-10"},
		{name: "february clamp", month: "2025-02", dueDay: 31, want: "2025-02-28"},
		{name: "day below range", month: "2025-02", dueDay: 0, want: "2025-02-01"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DueDateForBill(tt.month, tt.dueDay)
			if got.String() != tt.want {
				t.Errorf("DueDateForBill(%s, %d) = %s, want %s", tt.month, tt.dueDay, got, tt.want)
			}
		})
	}
}

func TestChargeDateForStatementMonth(t *testing.T) {
	tests := []struct {
		name       string
		statement  core.MonthKey
		chargeDay  int
		closingDay int
		want       string
	}{
		{
			name:       "charge before closing stays in statement month",
			statement:  "2025-06",
			chargeDay:  5,
			closingDay: 8,
			want:       "2025-06-05",
		},
		{
			name:       "charge after closing lands in previous month",
			statement:  "2025-06",
			chargeDay:  12,
			closingDay: 8,
			want:       "2025-05-12",
		},
		{
			name:       "charge on closing day stays",
			statement:  "2025-06",
			chargeDay:  8,
			closingDay: 8,
			want:       "2025-06-08",
		},
		{
			name:       "january boundary",
			statement:  "2025-01",
			chargeDay:  20,
			closingDay: 10,
			want:       "2024-12-20",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ChargeDateForStatementMonth(tt.statement, tt.chargeDay, tt.closingDay)
			if got.String() != tt.want {
				t.Errorf("ChargeDateForStatementMonth(%s, %d, %d) = %s, want %s",
					tt.statement, tt.chargeDay, tt.closingDay, got, tt.want)
			}
		})
	}
}

// The inverse function must agree with StatementMonth for every charge day,
// closing day and month, including the clamped 29-31 range.
func TestChargeDateRoundTrip(t *testing.T) {
	months := []core.MonthKey{"2024-02", "2025-01", "2025-02", "2025-06", "2025-12"}
	for _, month := range months {
		for chargeDay := 1; chargeDay <= 31; chargeDay++ {
			for closingDay := 1; closingDay <= 31; closingDay++ {
				date := ChargeDateForStatementMonth(month, chargeDay, closingDay)
				got := StatementMonth(date, closingDay)
				if got != month {
					t.Fatalf("round trip failed: month=%s chargeDay=%d closingDay=%d date=%s got=%s",
						month, chargeDay, closingDay, date, got)
				}
			}
		}
	}
}

func TestShiftMonths(t *testing.T) {
	tests := []struct {
		name   string
		date   core.Date
		months int
		want   string
	}{
		{name: "zero shift", date: core.NewDate(2025, 1, 15), months: 0, want: "2025-01-15"},
		{name: "one month", date: core.NewDate(2025, 1, 15), months: 1, want: "2025-02-15"},
		{name: "across year", date: core.NewDate(2025, 11, 10), months: 3, want: "2026-02-10"},
		{name: "day 31 capped at 28", date: core.NewDate(2025, 1, 31), months: 1, want: "2025-02-28"},
		{name: "day 29 capped even when target has it", date: core.NewDate(2025, 3, 29), months: 2, want: "2025-05-28"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ShiftMonths(tt.date, tt.months)
			if got.String() != tt.want {
				t.Errorf("ShiftMonths(%s, %d) = %s, want %s", tt.date, tt.months, got, tt.want)
			}
		})
	}
}
