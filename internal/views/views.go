// Package views derives the read models of the loan book — loan details,
// client summaries, area summaries, and the dashboard — from the record
// store, either as one-shot snapshots or as live streams that recompute on
// every relevant change.
package views

import (
	"context"
	"fmt"
	"time"

	"prestiti/internal/core"
	"prestiti/internal/finance"
	"prestiti/internal/watch"
)

// Store is the record-store surface the views need. *storage.SQLiteRepository
// satisfies it.
type Store interface {
	GetClient(ctx context.Context, id int64) (*core.Client, error)
	ListClients(ctx context.Context) ([]core.Client, error)
	GetLoan(ctx context.Context, id int64) (*core.Loan, error)
	ListLoans(ctx context.Context) ([]core.Loan, error)
	ListLoansByClient(ctx context.Context, clientID int64) ([]core.Loan, error)
	ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.Payment, error)
}

type Service struct {
	store Store
	hub   *watch.Hub
	now   func() time.Time
}

func NewService(store Store, hub *watch.Hub) *Service {
	return &Service{store: store, hub: hub, now: time.Now}
}

// --- one-shot snapshots ---

// LoanDetails computes the current view of one loan. A nil result means the
// loan does not exist; that is an explicit not-found value, not an error.
func (s *Service) LoanDetails(ctx context.Context, loanID int64) (*core.LoanDetails, error) {
	loan, err := s.store.GetLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	if loan == nil {
		return nil, nil
	}
	payments, err := s.store.ListPaymentsByLoan(ctx, loanID)
	if err != nil {
		return nil, err
	}
	details := finance.LoanDetailsFor(*loan, payments, s.now())
	return &details, nil
}

// ClientSummary rolls one client's loans up. Nil when the client is absent.
func (s *Service) ClientSummary(ctx context.Context, clientID int64) (*core.ClientSummary, error) {
	client, err := s.store.GetClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, nil
	}
	loans, err := s.store.ListLoansByClient(ctx, clientID)
	if err != nil {
		return nil, err
	}
	paymentsByLoan, err := s.paymentsForLoans(ctx, loans)
	if err != nil {
		return nil, err
	}
	summary := finance.ClientSummaryFor(*client, loans, paymentsByLoan, s.now())
	return &summary, nil
}

// AreaSummaries always returns one entry per defined region.
func (s *Service) AreaSummaries(ctx context.Context) ([]core.AreaSummary, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return nil, err
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return nil, err
	}
	paymentsByLoan, err := s.paymentsForLoans(ctx, loans)
	if err != nil {
		return nil, err
	}
	return finance.AreaSummaries(clients, loans, paymentsByLoan, s.now()), nil
}

// Dashboard computes the portfolio-wide roll-up.
func (s *Service) Dashboard(ctx context.Context) (core.DashboardState, error) {
	clients, err := s.store.ListClients(ctx)
	if err != nil {
		return core.DashboardState{}, err
	}
	loans, err := s.store.ListLoans(ctx)
	if err != nil {
		return core.DashboardState{}, err
	}
	paymentsByLoan, err := s.paymentsForLoans(ctx, loans)
	if err != nil {
		return core.DashboardState{}, err
	}

	asOf := s.now()
	details := make([]core.LoanDetails, 0, len(loans))
	for _, loan := range loans {
		details = append(details, finance.LoanDetailsFor(loan, paymentsByLoan[loan.ID], asOf))
	}
	areas := finance.AreaSummaries(clients, loans, paymentsByLoan, asOf)
	return finance.PortfolioSummary(details, areas), nil
}

func (s *Service) paymentsForLoans(ctx context.Context, loans []core.Loan) (map[int64][]core.Payment, error) {
	out := make(map[int64][]core.Payment, len(loans))
	for _, loan := range loans {
		payments, err := s.store.ListPaymentsByLoan(ctx, loan.ID)
		if err != nil {
			return nil, fmt.Errorf("payments for loan %d: %w", loan.ID, err)
		}
		out[loan.ID] = payments
	}
	return out, nil
}

// --- live streams ---
//
// Each stream subscribes to exactly the change topics its snapshot reads.
// Views that read payments inside an aggregation also subscribe to the
// payments topic, so a payment insert or delete always wakes them even when
// no loan row changed.

func (s *Service) WatchClients(ctx context.Context) *watch.Stream[[]core.Client] {
	return watch.NewStream(ctx, s.hub, []watch.Topic{watch.TopicClients}, s.store.ListClients)
}

func (s *Service) WatchClientLoans(ctx context.Context, clientID int64) *watch.Stream[[]core.Loan] {
	return watch.NewStream(ctx, s.hub, []watch.Topic{watch.TopicLoans},
		func(ctx context.Context) ([]core.Loan, error) {
			return s.store.ListLoansByClient(ctx, clientID)
		})
}

func (s *Service) WatchLoanPayments(ctx context.Context, loanID int64) *watch.Stream[[]core.Payment] {
	return watch.NewStream(ctx, s.hub, []watch.Topic{watch.TopicPayments},
		func(ctx context.Context) ([]core.Payment, error) {
			return s.store.ListPaymentsByLoan(ctx, loanID)
		})
}

func (s *Service) WatchLoanDetails(ctx context.Context, loanID int64) *watch.Stream[*core.LoanDetails] {
	return watch.NewStream(ctx, s.hub, []watch.Topic{watch.TopicLoans, watch.TopicPayments},
		func(ctx context.Context) (*core.LoanDetails, error) {
			return s.LoanDetails(ctx, loanID)
		})
}

func (s *Service) WatchClientSummary(ctx context.Context, clientID int64) *watch.Stream[*core.ClientSummary] {
	return watch.NewStream(ctx, s.hub,
		[]watch.Topic{watch.TopicClients, watch.TopicLoans, watch.TopicPayments},
		func(ctx context.Context) (*core.ClientSummary, error) {
			return s.ClientSummary(ctx, clientID)
		})
}

func (s *Service) WatchAreaSummaries(ctx context.Context) *watch.Stream[[]core.AreaSummary] {
	return watch.NewStream(ctx, s.hub,
		[]watch.Topic{watch.TopicClients, watch.TopicLoans, watch.TopicPayments},
		s.AreaSummaries)
}

func (s *Service) WatchDashboard(ctx context.Context) *watch.Stream[core.DashboardState] {
	return watch.NewStream(ctx, s.hub,
		[]watch.Topic{watch.TopicClients, watch.TopicLoans, watch.TopicPayments},
		s.Dashboard)
}
