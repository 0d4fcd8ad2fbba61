package sheets

import (
	"context"

	"prestiti/internal/core"
)

// Ports for outbound ledger-mirror adapters.
type (
	PaymentWriter interface {
		AppendPayment(ctx context.Context, p core.Payment) (rowRef string, err error)
	}

	// PaymentDeleter removes a mirrored payment row by its payment ID.
	PaymentDeleter interface {
		DeletePayment(ctx context.Context, paymentID int64) error
	}
)
