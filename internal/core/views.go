package core

// Derived views. None of these are persisted; every instance is recomputed
// from the current record set and discarded.

// LoanDetails is the computed state of a single loan: its payments in
// date-descending order plus the balance figures as of "now".
type LoanDetails struct {
	Loan               Loan
	Payments           []Payment
	TotalPaid          float64
	OutstandingBalance float64
	IsOverdue          bool
}

// ClientSummary rolls a client's loans up into exposure figures.
// TotalAmountPaid covers only loans currently attached to the client;
// payments on loans deleted in the past are not retroactively included.
type ClientSummary struct {
	Client                    Client
	TotalPrincipalLoaned      float64
	TotalAmountPaid           float64
	CurrentOutstandingBalance float64
	NumberOfLoans             int
}

// AreaSummary aggregates loans by the region of their owning client.
type AreaSummary struct {
	Region                   Region
	TotalOutstandingExposure float64
	ActiveLoansCount         int
	TotalLoansInArea         int
}

// DashboardState is the portfolio-wide roll-up.
// TotalRepaid sums payments over every loan, settled or not.
type DashboardState struct {
	TotalPrincipalLoaned      float64
	TotalCurrentlyOutstanding float64
	TotalRepaid               float64
	ActiveLoansCount          int
	OverdueLoansCount         int
	AreaSummaries             []AreaSummary
	LoanDetails               []LoanDetails
}
