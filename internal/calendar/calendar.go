// Package calendar implements the billing-cycle date rules: mapping a
// purchase date to a card statement month, a due date, and the inverse
// (a charge date that lands in a target statement month).
//
// Every function is pure and total. Day numbers are clamped to 1-28 before
// any arithmetic, so February never produces an invalid date and days 29-31
// are never representable as a closing, due or charge day.
package calendar

import (
	"contas/internal/core"
)

// ClampDay clamps any day number to the closed range [1,28].
func ClampDay(day int) int {
	if day < 1 {
		return 1
	}
	if day > 28 {
		return 28
	}
	return day
}

// StatementMonth maps a card purchase date to its invoice month. A purchase
// strictly after the (clamped) closing day rolls into the next month; a
// purchase on the closing day itself stays in the current one.
func StatementMonth(date core.Date, closingDay int) core.MonthKey {
	month := date.MonthKey()
	if date.Day() > ClampDay(closingDay) {
		return month.AddMonths(1)
	}
	return month
}

// DueDate returns the card bill due date: the statement month shifted by
// offsetMonths, on the clamped due day.
func DueDate(statementMonth core.MonthKey, dueDay, offsetMonths int) core.Date {
	return statementMonth.AddMonths(offsetMonths).DateOn(ClampDay(dueDay))
}

// DueDateForBill returns the due date of a non-card recurring bill, whose
// due month is the accounting month itself.
func DueDateForBill(month core.MonthKey, dueDay int) core.Date {
	return month.DateOn(ClampDay(dueDay))
}

// ChargeDateForStatementMonth is the inverse of StatementMonth: it picks a
// purchase date on chargeDay such that the purchase lands in the target
// statement month. When the charge day falls after the closing day the
// purchase must happen in the month before the target.
func ChargeDateForStatementMonth(statementMonth core.MonthKey, chargeDay, closingDay int) core.Date {
	month := statementMonth
	if ClampDay(chargeDay) > ClampDay(closingDay) {
		month = statementMonth.AddMonths(-1)
	}
	return month.DateOn(ClampDay(chargeDay))
}

// ShiftMonths moves a date forward by whole months, keeping the day of
// month but capping it at 28. Used to schedule installment i on
// purchaseDate + (i-1) months.
func ShiftMonths(date core.Date, months int) core.Date {
	day := date.Day()
	if day > 28 {
		day = 28
	}
	return date.MonthKey().AddMonths(months).DateOn(day)
}
