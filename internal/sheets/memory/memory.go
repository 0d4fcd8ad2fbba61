// Package memory provides an in-memory ledger mirror for local development
// and tests.
package memory

import (
	"context"
	"fmt"
	"sync"

	"prestiti/internal/core"
)

type Store struct {
	mu   sync.Mutex
	rows []core.Payment
}

func New() *Store {
	return &Store{}
}

// AppendPayment stores the payment and returns a synthetic row reference.
func (s *Store) AppendPayment(_ context.Context, p core.Payment) (string, error) {
	if err := p.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = append(s.rows, p)
	return fmt.Sprintf("mem:%d", len(s.rows)), nil
}

// DeletePayment removes the row with the given payment ID. Deleting a payment
// that was never mirrored is not an error.
func (s *Store) DeletePayment(_ context.Context, paymentID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, row := range s.rows {
		if row.ID == paymentID {
			s.rows = append(s.rows[:i], s.rows[i+1:]...)
			return nil
		}
	}
	return nil
}

// Rows returns a copy of the mirrored payments.
func (s *Store) Rows() []core.Payment {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]core.Payment(nil), s.rows...)
}
