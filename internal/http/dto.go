// Package http provides the JSON API and SSE streams for the loan ledger.
//
// This file defines the wire representations. Core types stay free of
// serialization concerns; dates travel as RFC 3339 strings, enums as their
// symbolic names.
package http

import (
	"fmt"
	"strings"
	"time"

	"prestiti/internal/core"
)

type clientPayload struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Address string `json:"address,omitempty"`
	Region  string `json:"region"`
}

type loanPayload struct {
	ID           int64   `json:"id"`
	ClientID     int64   `json:"client_id"`
	Principal    float64 `json:"principal"`
	InterestRate float64 `json:"interest_rate"`
	Frequency    string  `json:"frequency"`
	StartDate    string  `json:"start_date"`
	EndDate      *string `json:"end_date,omitempty"`
}

type paymentPayload struct {
	ID          int64   `json:"id"`
	LoanID      int64   `json:"loan_id"`
	Amount      float64 `json:"amount"`
	PaymentDate string  `json:"payment_date"`
}

type loanDetailsPayload struct {
	Loan               loanPayload      `json:"loan"`
	Payments           []paymentPayload `json:"payments"`
	TotalPaid          float64          `json:"total_paid"`
	OutstandingBalance float64          `json:"outstanding_balance"`
	IsOverdue          bool             `json:"is_overdue"`
}

type clientSummaryPayload struct {
	Client                    clientPayload `json:"client"`
	TotalPrincipalLoaned      float64       `json:"total_principal_loaned"`
	TotalAmountPaid           float64       `json:"total_amount_paid"`
	CurrentOutstandingBalance float64       `json:"current_outstanding_balance"`
	NumberOfLoans             int           `json:"number_of_loans"`
}

type areaSummaryPayload struct {
	Region                   string  `json:"region"`
	TotalOutstandingExposure float64 `json:"total_outstanding_exposure"`
	ActiveLoansCount         int     `json:"active_loans_count"`
	TotalLoansInArea         int     `json:"total_loans_in_area"`
}

type dashboardPayload struct {
	TotalPrincipalLoaned      float64              `json:"total_principal_loaned"`
	TotalCurrentlyOutstanding float64              `json:"total_currently_outstanding"`
	TotalRepaid               float64              `json:"total_repaid"`
	ActiveLoansCount          int                  `json:"active_loans_count"`
	OverdueLoansCount         int                  `json:"overdue_loans_count"`
	AreaSummaries             []areaSummaryPayload `json:"area_summaries"`
	LoanDetails               []loanDetailsPayload `json:"loan_details"`
}

type idResponse struct {
	ID int64 `json:"id"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// --- request decoding ---

func (p clientPayload) toCore(id int64) (core.Client, error) {
	region, err := core.ParseRegion(p.Region)
	if err != nil {
		return core.Client{}, err
	}
	return core.Client{
		ID:      id,
		Name:    strings.TrimSpace(p.Name),
		Contact: strings.TrimSpace(p.Contact),
		Address: strings.TrimSpace(p.Address),
		Region:  region,
	}, nil
}

func (p loanPayload) toCore(id int64) (core.Loan, error) {
	frequency, err := core.ParseFrequency(p.Frequency)
	if err != nil {
		return core.Loan{}, err
	}

	start, err := parseDate(p.StartDate)
	if err != nil {
		return core.Loan{}, fmt.Errorf("invalid start_date: %w", err)
	}

	var end *time.Time
	if p.EndDate != nil && strings.TrimSpace(*p.EndDate) != "" {
		t, err := parseDate(*p.EndDate)
		if err != nil {
			return core.Loan{}, fmt.Errorf("invalid end_date: %w", err)
		}
		end = &t
	}

	return core.Loan{
		ID:           id,
		ClientID:     p.ClientID,
		Principal:    p.Principal,
		InterestRate: p.InterestRate,
		Frequency:    frequency,
		StartDate:    start,
		EndDate:      end,
	}, nil
}

func (p paymentPayload) toCore(loanID int64) (core.Payment, error) {
	date, err := parseDate(p.PaymentDate)
	if err != nil {
		return core.Payment{}, fmt.Errorf("invalid payment_date: %w", err)
	}
	return core.Payment{
		LoanID:      loanID,
		Amount:      p.Amount,
		PaymentDate: date,
	}, nil
}

// parseDate accepts RFC 3339 timestamps and bare dates.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", s)
}

// --- response encoding ---

func fromClient(c core.Client) clientPayload {
	return clientPayload{
		ID:      c.ID,
		Name:    c.Name,
		Contact: c.Contact,
		Address: c.Address,
		Region:  string(c.Region),
	}
}

func fromClients(clients []core.Client) []clientPayload {
	out := make([]clientPayload, 0, len(clients))
	for _, c := range clients {
		out = append(out, fromClient(c))
	}
	return out
}

func fromLoan(l core.Loan) loanPayload {
	p := loanPayload{
		ID:           l.ID,
		ClientID:     l.ClientID,
		Principal:    l.Principal,
		InterestRate: l.InterestRate,
		Frequency:    string(l.Frequency),
		StartDate:    l.StartDate.UTC().Format(time.RFC3339),
	}
	if l.EndDate != nil {
		end := l.EndDate.UTC().Format(time.RFC3339)
		p.EndDate = &end
	}
	return p
}

func fromLoans(loans []core.Loan) []loanPayload {
	out := make([]loanPayload, 0, len(loans))
	for _, l := range loans {
		out = append(out, fromLoan(l))
	}
	return out
}

func fromPayment(p core.Payment) paymentPayload {
	return paymentPayload{
		ID:          p.ID,
		LoanID:      p.LoanID,
		Amount:      p.Amount,
		PaymentDate: p.PaymentDate.UTC().Format(time.RFC3339),
	}
}

func fromPayments(payments []core.Payment) []paymentPayload {
	out := make([]paymentPayload, 0, len(payments))
	for _, p := range payments {
		out = append(out, fromPayment(p))
	}
	return out
}

func fromLoanDetails(d core.LoanDetails) loanDetailsPayload {
	return loanDetailsPayload{
		Loan:               fromLoan(d.Loan),
		Payments:           fromPayments(d.Payments),
		TotalPaid:          d.TotalPaid,
		OutstandingBalance: d.OutstandingBalance,
		IsOverdue:          d.IsOverdue,
	}
}

func fromClientSummary(s core.ClientSummary) clientSummaryPayload {
	return clientSummaryPayload{
		Client:                    fromClient(s.Client),
		TotalPrincipalLoaned:      s.TotalPrincipalLoaned,
		TotalAmountPaid:           s.TotalAmountPaid,
		CurrentOutstandingBalance: s.CurrentOutstandingBalance,
		NumberOfLoans:             s.NumberOfLoans,
	}
}

func fromAreaSummaries(areas []core.AreaSummary) []areaSummaryPayload {
	out := make([]areaSummaryPayload, 0, len(areas))
	for _, a := range areas {
		out = append(out, areaSummaryPayload{
			Region:                   string(a.Region),
			TotalOutstandingExposure: a.TotalOutstandingExposure,
			ActiveLoansCount:         a.ActiveLoansCount,
			TotalLoansInArea:         a.TotalLoansInArea,
		})
	}
	return out
}

func fromDashboard(d core.DashboardState) dashboardPayload {
	details := make([]loanDetailsPayload, 0, len(d.LoanDetails))
	for _, ld := range d.LoanDetails {
		details = append(details, fromLoanDetails(ld))
	}
	return dashboardPayload{
		TotalPrincipalLoaned:      d.TotalPrincipalLoaned,
		TotalCurrentlyOutstanding: d.TotalCurrentlyOutstanding,
		TotalRepaid:               d.TotalRepaid,
		ActiveLoansCount:          d.ActiveLoansCount,
		OverdueLoansCount:         d.OverdueLoansCount,
		AreaSummaries:             fromAreaSummaries(d.AreaSummaries),
		LoanDetails:               details,
	}
}
