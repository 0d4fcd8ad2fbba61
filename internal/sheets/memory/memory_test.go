package memory

import (
	"context"
	"testing"
	"time"

	"prestiti/internal/core"
	ports "prestiti/internal/sheets"
)

var (
	_ ports.PaymentWriter  = (*Store)(nil)
	_ ports.PaymentDeleter = (*Store)(nil)
)

func payment(id int64) core.Payment {
	return core.Payment{ID: id, LoanID: 1, Amount: 100,
		PaymentDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)}
}

func TestAppendAndDelete(t *testing.T) {
	store := New()
	ctx := context.Background()

	ref, err := store.AppendPayment(ctx, payment(1))
	if err != nil {
		t.Fatalf("append: %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}
	if _, err := store.AppendPayment(ctx, payment(2)); err != nil {
		t.Fatalf("append: %v", err)
	}

	if err := store.DeletePayment(ctx, 1); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rows := store.Rows()
	if len(rows) != 1 || rows[0].ID != 2 {
		t.Errorf("rows = %v, want only payment 2", rows)
	}
}

func TestAppendRejectsInvalid(t *testing.T) {
	store := New()
	bad := core.Payment{LoanID: 1, Amount: 0, PaymentDate: time.Now()}
	if _, err := store.AppendPayment(context.Background(), bad); err == nil {
		t.Error("AppendPayment should reject a zero amount")
	}
}

func TestDeleteUnknownIsNoop(t *testing.T) {
	store := New()
	if err := store.DeletePayment(context.Background(), 99); err != nil {
		t.Errorf("delete unknown payment: %v", err)
	}
}
