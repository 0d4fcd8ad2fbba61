// Package finance computes balances and portfolio aggregates for the loan
// book. Every function here is a pure computation over a snapshot of records:
// no I/O, no clocks (the evaluation instant is always a parameter), no
// rounding (formatting belongs to callers).
package finance

import (
	"math"
	"time"

	"prestiti/internal/core"
)

const (
	millisPerDay  = int64(24 * time.Hour / time.Millisecond)
	millisPerWeek = 7 * millisPerDay
)

// ElapsedPeriods counts the whole compounding periods between start and asOf.
// Daily and weekly loans divide elapsed wall-clock milliseconds; monthly loans
// use the calendar-month difference, which keeps a loan started January 31st
// in step with one started February 1st. Never negative.
func ElapsedPeriods(freq core.Frequency, start, asOf time.Time) int {
	var periods int64
	switch freq {
	case core.Daily:
		periods = asOf.Sub(start).Milliseconds() / millisPerDay
	case core.Weekly:
		periods = asOf.Sub(start).Milliseconds() / millisPerWeek
	case core.Monthly:
		months := int64(asOf.Year()-start.Year()) * 12
		months -= int64(start.Month())
		months += int64(asOf.Month())
		periods = months
	}
	if periods <= 0 {
		return 0
	}
	return int(periods)
}

// TotalDue is the amount the loan has grown to at asOf:
// principal × (1+rate)^periods, with the stored per-period rate used as-is.
func TotalDue(loan core.Loan, asOf time.Time) float64 {
	periods := ElapsedPeriods(loan.Frequency, loan.StartDate, asOf)
	return loan.Principal * math.Pow(1+loan.InterestRate, float64(periods))
}

// OutstandingBalance is the total due minus everything paid, floored at zero.
// Overpayment clamps; it is not tracked as a credit.
func OutstandingBalance(loan core.Loan, totalPaid float64, asOf time.Time) float64 {
	balance := TotalDue(loan, asOf) - totalPaid
	if balance < 0 {
		return 0
	}
	return balance
}

// IsOverdue reports whether the loan's end date has passed while a balance
// remains. Open-ended loans are never overdue regardless of balance.
func IsOverdue(loan core.Loan, outstandingBalance float64, asOf time.Time) bool {
	if outstandingBalance <= 0 {
		return false
	}
	return loan.EndDate != nil && loan.EndDate.Before(asOf)
}
