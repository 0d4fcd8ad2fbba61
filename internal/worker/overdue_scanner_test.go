package worker

import (
	"context"
	"testing"
	"time"

	"prestiti/internal/core"
)

type fakeLoanStore struct {
	loans    []core.Loan
	payments map[int64][]core.Payment
}

func (f *fakeLoanStore) ListLoans(context.Context) ([]core.Loan, error) {
	return f.loans, nil
}

func (f *fakeLoanStore) ListPaymentsByLoan(_ context.Context, loanID int64) ([]core.Payment, error) {
	return f.payments[loanID], nil
}

func TestScanCountsOverdueLoans(t *testing.T) {
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	pastEnd := start.AddDate(0, 1, 0)
	futureEnd := start.AddDate(1, 0, 0)
	asOf := start.AddDate(0, 2, 0)

	store := &fakeLoanStore{
		loans: []core.Loan{
			// Past end date, nothing paid: overdue.
			{ID: 1, ClientID: 1, Principal: 1000, InterestRate: 0.1, Frequency: core.Monthly,
				StartDate: start, EndDate: &pastEnd},
			// Past end date but fully settled: not overdue.
			{ID: 2, ClientID: 1, Principal: 1000, InterestRate: 0.1, Frequency: core.Monthly,
				StartDate: start, EndDate: &pastEnd},
			// End date in the future: not overdue.
			{ID: 3, ClientID: 1, Principal: 1000, InterestRate: 0.1, Frequency: core.Monthly,
				StartDate: start, EndDate: &futureEnd},
			// No end date: never overdue.
			{ID: 4, ClientID: 1, Principal: 1000, InterestRate: 0.1, Frequency: core.Monthly,
				StartDate: start},
		},
		payments: map[int64][]core.Payment{
			2: {{ID: 10, LoanID: 2, Amount: 5000, PaymentDate: asOf}},
		},
	}

	scanner := NewOverdueScanner(store)
	scanner.now = func() time.Time { return asOf }

	overdue, err := scanner.Scan(context.Background())
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if overdue != 1 {
		t.Errorf("overdue = %d, want 1", overdue)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	scanner := NewOverdueScanner(&fakeLoanStore{})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- scanner.Run(ctx, time.Hour) }()

	cancel()
	select {
	case err := <-done:
		if err != context.Canceled {
			t.Errorf("Run returned %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after cancel")
	}
}
