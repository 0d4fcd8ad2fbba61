package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"prestiti/internal/core"
	"prestiti/internal/log"
	"prestiti/internal/storage"
	"prestiti/internal/watch"
)

// Store is the write surface of the ledger repository.
type Store interface {
	InsertClient(ctx context.Context, c core.Client) (int64, error)
	UpdateClient(ctx context.Context, c core.Client) error
	DeleteClient(ctx context.Context, id int64) error

	InsertLoan(ctx context.Context, l core.Loan) (int64, error)
	UpdateLoan(ctx context.Context, l core.Loan) error
	DeleteLoan(ctx context.Context, id int64) error

	InsertPayment(ctx context.Context, p core.Payment) (int64, error)
	GetPayment(ctx context.Context, id int64) (*core.Payment, error)
	DeletePayment(ctx context.Context, id int64) error
}

// Publisher queues payment changes for the sheet sync worker.
type Publisher interface {
	PublishPaymentSync(ctx context.Context, id, loanID int64, deleted bool) error
}

// LedgerService orchestrates ledger writes across SQLite, the watch hub and
// AMQP. Writes go to SQLite first; live views are only notified after the
// write committed, and a failed publish never fails the request.
type LedgerService struct {
	store     Store
	hub       *watch.Hub
	publisher Publisher
}

func NewLedgerService(store Store, hub *watch.Hub, publisher Publisher) *LedgerService {
	return &LedgerService{
		store:     store,
		hub:       hub,
		publisher: publisher,
	}
}

// CreateClient validates and saves a new client.
func (s *LedgerService) CreateClient(ctx context.Context, c core.Client) (int64, error) {
	if err := c.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.InsertClient(ctx, c)
	if err != nil {
		return 0, fmt.Errorf("save client: %w", err)
	}

	s.hub.Notify(watch.TopicClients)
	return id, nil
}

func (s *LedgerService) UpdateClient(ctx context.Context, c core.Client) error {
	if err := c.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateClient(ctx, c); err != nil {
		return fmt.Errorf("update client: %w", err)
	}

	s.hub.Notify(watch.TopicClients)
	return nil
}

// DeleteClient removes a client. Loans and payments go with it via the
// foreign-key cascade, so every topic is notified.
func (s *LedgerService) DeleteClient(ctx context.Context, id int64) error {
	if err := s.store.DeleteClient(ctx, id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}

	s.hub.Notify(watch.TopicClients, watch.TopicLoans, watch.TopicPayments)
	return nil
}

// CreateLoan validates and saves a new loan.
func (s *LedgerService) CreateLoan(ctx context.Context, l core.Loan) (int64, error) {
	if err := l.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.InsertLoan(ctx, l)
	if err != nil {
		return 0, fmt.Errorf("save loan: %w", err)
	}

	s.hub.Notify(watch.TopicLoans)
	return id, nil
}

func (s *LedgerService) UpdateLoan(ctx context.Context, l core.Loan) error {
	if err := l.Validate(); err != nil {
		return err
	}

	if err := s.store.UpdateLoan(ctx, l); err != nil {
		return fmt.Errorf("update loan: %w", err)
	}

	s.hub.Notify(watch.TopicLoans)
	return nil
}

// DeleteLoan removes a loan and, via cascade, its payments.
func (s *LedgerService) DeleteLoan(ctx context.Context, id int64) error {
	if err := s.store.DeleteLoan(ctx, id); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}

	s.hub.Notify(watch.TopicLoans, watch.TopicPayments)
	return nil
}

// RecordPayment validates and saves a payment, then queues it for the sheet
// sync worker.
func (s *LedgerService) RecordPayment(ctx context.Context, p core.Payment) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}

	id, err := s.store.InsertPayment(ctx, p)
	if err != nil {
		return 0, fmt.Errorf("save payment: %w", err)
	}

	s.hub.Notify(watch.TopicPayments)

	if err := s.publishSyncMessage(ctx, id, p.LoanID, false); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment sync message",
			log.FieldPaymentID, id, log.FieldError, err,
			log.FieldComponent, log.ComponentLedger)
		// Don't fail the request, the payment is saved locally and the
		// pending-sync queue will pick it up.
	}

	return id, nil
}

// DeletePayment removes a payment and queues a deletion for the sheet.
func (s *LedgerService) DeletePayment(ctx context.Context, id int64) error {
	payment, err := s.store.GetPayment(ctx, id)
	if err != nil {
		return fmt.Errorf("load payment: %w", err)
	}
	if payment == nil {
		return storage.ErrNotFound
	}

	if err := s.store.DeletePayment(ctx, id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}

	s.hub.Notify(watch.TopicPayments)

	if err := s.publishSyncMessage(ctx, id, payment.LoanID, true); err != nil {
		slog.ErrorContext(ctx, "Failed to publish payment delete message",
			log.FieldPaymentID, id, log.FieldError, err,
			log.FieldComponent, log.ComponentLedger)
	}

	return nil
}

func (s *LedgerService) publishSyncMessage(ctx context.Context, id, loanID int64, deleted bool) error {
	if s.publisher == nil {
		slog.WarnContext(ctx, "Publisher not available, skipping sync message")
		return nil
	}

	return s.publisher.PublishPaymentSync(ctx, id, loanID, deleted)
}

// Close closes the underlying storage and publisher connections.
func (s *LedgerService) Close() error {
	var errs []error

	if closer, ok := s.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if closer, ok := s.publisher.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("publisher: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close ledger service: %v", errs)
	}

	return nil
}
