package worker

import (
	"context"
	"fmt"
	"log/slog"

	"prestiti/internal/amqp"
	"prestiti/internal/core"
	"prestiti/internal/sheets"
	"prestiti/internal/storage"
)

// SyncStore is the storage surface the sync worker needs.
type SyncStore interface {
	GetPayment(ctx context.Context, id int64) (*core.Payment, error)
	GetPendingSyncPayments(ctx context.Context, limit int) ([]storage.PendingSyncPayment, error)
	MarkPaymentSynced(ctx context.Context, id int64) error
	MarkPaymentSyncError(ctx context.Context, id int64) error
}

// SyncWorker mirrors payments from SQLite to the Google Sheets ledger.
type SyncWorker struct {
	storage   SyncStore
	writer    sheets.PaymentWriter
	deleter   sheets.PaymentDeleter
	batchSize int
}

func NewSyncWorker(storage SyncStore, writer sheets.PaymentWriter, deleter sheets.PaymentDeleter, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		writer:    writer,
		deleter:   deleter,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single payment sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"loan_id", msg.LoanID,
		"deleted", msg.Deleted)

	if msg.Deleted {
		return w.handleDelete(ctx, msg.ID)
	}

	payment, err := w.storage.GetPayment(ctx, msg.ID)
	if err != nil {
		return fmt.Errorf("get payment from storage: %w", err)
	}
	if payment == nil {
		// Deleted between publish and consume, the delete message will follow.
		slog.WarnContext(ctx, "Payment no longer exists, skipping sync", "id", msg.ID)
		return nil
	}

	return w.syncPaymentToSheet(ctx, *payment)
}

func (w *SyncWorker) handleDelete(ctx context.Context, id int64) error {
	if w.deleter == nil {
		slog.WarnContext(ctx, "No payment deleter configured, skipping sheet deletion", "id", id)
		return nil
	}

	if err := w.deleter.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment from sheet: %w", err)
	}

	slog.InfoContext(ctx, "Payment removed from sheet", "id", id)
	return nil
}

func (w *SyncWorker) syncPaymentToSheet(ctx context.Context, p core.Payment) error {
	ref, err := w.writer.AppendPayment(ctx, p)
	if err != nil {
		if markErr := w.storage.MarkPaymentSyncError(ctx, p.ID); markErr != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", p.ID, "error", markErr)
		}
		return fmt.Errorf("append payment to sheet: %w", err)
	}

	if err := w.storage.MarkPaymentSynced(ctx, p.ID); err != nil {
		return fmt.Errorf("mark payment synced: %w", err)
	}

	slog.InfoContext(ctx, "Payment mirrored to sheet",
		"id", p.ID,
		"loan_id", p.LoanID,
		"row_ref", ref)
	return nil
}

// ProcessPendingPayments drains payments that were written while the broker
// or worker was down. This is a backup mechanism in case AMQP messages are
// lost.
func (w *SyncWorker) ProcessPendingPayments(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncPayments(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending payments: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending payments", "count", len(pending))

	for _, row := range pending {
		payment, err := w.storage.GetPayment(ctx, row.ID)
		if err != nil {
			slog.ErrorContext(ctx, "Failed to get payment", "id", row.ID, "error", err)
			if err := w.storage.MarkPaymentSyncError(ctx, row.ID); err != nil {
				slog.ErrorContext(ctx, "Failed to mark sync error", "id", row.ID, "error", err)
			}
			continue
		}
		if payment == nil {
			continue
		}

		if err := w.syncPaymentToSheet(ctx, *payment); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment", "id", row.ID, "error", err)
			continue
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending batch at worker startup to recover
// from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingSyncPayments(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending payments for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending payments found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending payments on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, row := range pending {
		payment, err := w.storage.GetPayment(ctx, row.ID)
		if err != nil || payment == nil {
			if err != nil {
				slog.ErrorContext(ctx, "Failed to get payment for startup sync",
					"id", row.ID, "error", err)
				errorCount++
			}
			continue
		}

		if err := w.syncPaymentToSheet(ctx, *payment); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment during startup",
				"id", row.ID, "error", err)
			errorCount++
			continue
		}

		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}
