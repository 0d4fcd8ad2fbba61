package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"prestiti/internal/core"
	"prestiti/internal/finance"
	"prestiti/internal/log"
)

// LoanStore is the storage surface the overdue scanner needs.
type LoanStore interface {
	ListLoans(ctx context.Context) ([]core.Loan, error)
	ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.Payment, error)
}

// OverdueScanner periodically walks the loan book and reports loans past
// their end date with money still owed.
type OverdueScanner struct {
	storage LoanStore
	now     func() time.Time
}

func NewOverdueScanner(storage LoanStore) *OverdueScanner {
	return &OverdueScanner{
		storage: storage,
		now:     time.Now,
	}
}

// Run scans on the given interval until the context is cancelled. The first
// scan happens immediately.
func (s *OverdueScanner) Run(ctx context.Context, interval time.Duration) error {
	if _, err := s.Scan(ctx); err != nil {
		slog.ErrorContext(ctx, "Overdue scan failed", "error", err)
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "Stopping overdue scanner", "reason", ctx.Err())
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.Scan(ctx); err != nil {
				slog.ErrorContext(ctx, "Overdue scan failed", "error", err)
			}
		}
	}
}

// Scan walks all loans once and returns how many are overdue.
func (s *OverdueScanner) Scan(ctx context.Context) (int, error) {
	loans, err := s.storage.ListLoans(ctx)
	if err != nil {
		return 0, fmt.Errorf("list loans: %w", err)
	}

	asOf := s.now()
	overdue := 0
	for _, loan := range loans {
		payments, err := s.storage.ListPaymentsByLoan(ctx, loan.ID)
		if err != nil {
			return overdue, fmt.Errorf("list payments for loan %d: %w", loan.ID, err)
		}

		details := finance.LoanDetailsFor(loan, payments, asOf)
		if !details.IsOverdue {
			continue
		}

		overdue++
		slog.WarnContext(ctx, "Loan is overdue",
			log.FieldLoanID, loan.ID,
			log.FieldClientID, loan.ClientID,
			log.FieldOutstanding, details.OutstandingBalance,
			"end_date", loan.EndDate)
	}

	slog.InfoContext(ctx, "Overdue scan completed",
		log.FieldOperation, log.OpScan,
		"loans", len(loans),
		"overdue", overdue)
	return overdue, nil
}
