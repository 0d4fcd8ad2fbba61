package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"prestiti/internal/amqp"
	"prestiti/internal/core"
	"prestiti/internal/sheets/memory"
	"prestiti/internal/storage"
)

type fakeSyncStore struct {
	payments   map[int64]core.Payment
	pending    []storage.PendingSyncPayment
	synced     []int64
	syncErrors []int64
	getErr     error
}

func (f *fakeSyncStore) GetPayment(_ context.Context, id int64) (*core.Payment, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if p, ok := f.payments[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *fakeSyncStore) GetPendingSyncPayments(_ context.Context, limit int) ([]storage.PendingSyncPayment, error) {
	if limit > len(f.pending) {
		limit = len(f.pending)
	}
	return f.pending[:limit], nil
}

func (f *fakeSyncStore) MarkPaymentSynced(_ context.Context, id int64) error {
	f.synced = append(f.synced, id)
	return nil
}

func (f *fakeSyncStore) MarkPaymentSyncError(_ context.Context, id int64) error {
	f.syncErrors = append(f.syncErrors, id)
	return nil
}

type failingWriter struct{}

func (failingWriter) AppendPayment(context.Context, core.Payment) (string, error) {
	return "", errors.New("sheet unavailable")
}

func testPayment(id int64) core.Payment {
	return core.Payment{ID: id, LoanID: 1, Amount: 250,
		PaymentDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}
}

func TestHandleSyncMessageMirrorsPayment(t *testing.T) {
	store := &fakeSyncStore{payments: map[int64]core.Payment{7: testPayment(7)}}
	sheet := memory.New()
	worker := NewSyncWorker(store, sheet, sheet, 10)

	msg := amqp.NewPaymentSyncMessage(7, 1, false)
	if err := worker.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	rows := sheet.Rows()
	if len(rows) != 1 || rows[0].ID != 7 {
		t.Errorf("sheet rows = %v, want payment 7", rows)
	}
	if len(store.synced) != 1 || store.synced[0] != 7 {
		t.Errorf("synced = %v, want [7]", store.synced)
	}
}

func TestHandleSyncMessageSkipsMissingPayment(t *testing.T) {
	store := &fakeSyncStore{payments: map[int64]core.Payment{}}
	sheet := memory.New()
	worker := NewSyncWorker(store, sheet, sheet, 10)

	msg := amqp.NewPaymentSyncMessage(99, 1, false)
	if err := worker.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("missing payment should not error: %v", err)
	}
	if len(sheet.Rows()) != 0 {
		t.Error("missing payment must not reach the sheet")
	}
}

func TestHandleSyncMessageDelete(t *testing.T) {
	store := &fakeSyncStore{payments: map[int64]core.Payment{7: testPayment(7)}}
	sheet := memory.New()
	worker := NewSyncWorker(store, sheet, sheet, 10)

	if _, err := sheet.AppendPayment(context.Background(), testPayment(7)); err != nil {
		t.Fatalf("seed sheet: %v", err)
	}

	msg := amqp.NewPaymentSyncMessage(7, 1, true)
	if err := worker.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("handle delete message: %v", err)
	}
	if len(sheet.Rows()) != 0 {
		t.Errorf("sheet rows = %v, want empty", sheet.Rows())
	}
}

func TestHandleDeleteWithoutDeleter(t *testing.T) {
	store := &fakeSyncStore{}
	worker := NewSyncWorker(store, memory.New(), nil, 10)

	msg := amqp.NewPaymentSyncMessage(7, 1, true)
	if err := worker.HandleSyncMessage(context.Background(), msg); err != nil {
		t.Fatalf("delete without deleter should be a no-op: %v", err)
	}
}

func TestSyncFailureMarksError(t *testing.T) {
	store := &fakeSyncStore{payments: map[int64]core.Payment{7: testPayment(7)}}
	worker := NewSyncWorker(store, failingWriter{}, nil, 10)

	msg := amqp.NewPaymentSyncMessage(7, 1, false)
	if err := worker.HandleSyncMessage(context.Background(), msg); err == nil {
		t.Fatal("expected sheet failure to propagate")
	}
	if len(store.syncErrors) != 1 || store.syncErrors[0] != 7 {
		t.Errorf("sync errors = %v, want [7]", store.syncErrors)
	}
	if len(store.synced) != 0 {
		t.Errorf("synced = %v, want empty", store.synced)
	}
}

func TestProcessPendingPayments(t *testing.T) {
	store := &fakeSyncStore{
		payments: map[int64]core.Payment{
			1: testPayment(1),
			2: testPayment(2),
		},
		pending: []storage.PendingSyncPayment{{ID: 1, LoanID: 1}, {ID: 2, LoanID: 1}},
	}
	sheet := memory.New()
	worker := NewSyncWorker(store, sheet, sheet, 10)

	if err := worker.ProcessPendingPayments(context.Background()); err != nil {
		t.Fatalf("process pending: %v", err)
	}
	if len(sheet.Rows()) != 2 {
		t.Errorf("sheet rows = %d, want 2", len(sheet.Rows()))
	}
	if len(store.synced) != 2 {
		t.Errorf("synced = %v, want two ids", store.synced)
	}
}

func TestStartupSyncCheckEmptyQueue(t *testing.T) {
	store := &fakeSyncStore{}
	worker := NewSyncWorker(store, memory.New(), nil, 10)

	if err := worker.StartupSyncCheck(context.Background()); err != nil {
		t.Fatalf("startup check with empty queue: %v", err)
	}
}
