package finance

import (
	"time"

	"prestiti/internal/core"
)

// LoanDetailsFor combines a loan with its payments into the computed view.
// Payment order is preserved as given; only the sum matters here.
func LoanDetailsFor(loan core.Loan, payments []core.Payment, asOf time.Time) core.LoanDetails {
	var totalPaid float64
	for _, p := range payments {
		totalPaid += p.Amount
	}
	outstanding := OutstandingBalance(loan, totalPaid, asOf)
	return core.LoanDetails{
		Loan:               loan,
		Payments:           payments,
		TotalPaid:          totalPaid,
		OutstandingBalance: outstanding,
		IsOverdue:          IsOverdue(loan, outstanding, asOf),
	}
}

// ClientSummaryFor rolls the client's current loans up into exposure figures.
// paymentsByLoan maps loan id to that loan's payments; loans absent from the
// map count as unpaid.
func ClientSummaryFor(client core.Client, loans []core.Loan, paymentsByLoan map[int64][]core.Payment, asOf time.Time) core.ClientSummary {
	summary := core.ClientSummary{
		Client:        client,
		NumberOfLoans: len(loans),
	}
	for _, loan := range loans {
		details := LoanDetailsFor(loan, paymentsByLoan[loan.ID], asOf)
		summary.TotalPrincipalLoaned += loan.Principal
		summary.TotalAmountPaid += details.TotalPaid
		summary.CurrentOutstandingBalance += details.OutstandingBalance
	}
	return summary
}

// AreaSummaries partitions loans by their owning client's region and reports
// one entry per defined region, zero-filled when empty. A loan whose client
// cannot be resolved contributes to no region.
func AreaSummaries(clients []core.Client, loans []core.Loan, paymentsByLoan map[int64][]core.Payment, asOf time.Time) []core.AreaSummary {
	regionByClient := make(map[int64]core.Region, len(clients))
	for _, c := range clients {
		regionByClient[c.ID] = c.Region
	}

	byRegion := make(map[core.Region]*core.AreaSummary)
	regions := core.Regions()
	for _, r := range regions {
		byRegion[r] = &core.AreaSummary{Region: r}
	}

	for _, loan := range loans {
		region, ok := regionByClient[loan.ClientID]
		if !ok {
			continue // orphaned loan, e.g. mid-cascade snapshot
		}
		summary := byRegion[region]
		summary.TotalLoansInArea++

		details := LoanDetailsFor(loan, paymentsByLoan[loan.ID], asOf)
		if details.OutstandingBalance > 0 {
			summary.ActiveLoansCount++
			summary.TotalOutstandingExposure += details.OutstandingBalance
		}
	}

	out := make([]core.AreaSummary, 0, len(regions))
	for _, r := range regions {
		out = append(out, *byRegion[r])
	}
	return out
}

// PortfolioSummary reduces all loan details and area summaries into the
// dashboard roll-up. TotalRepaid deliberately sums payments across every
// loan, settled or not.
func PortfolioSummary(allLoanDetails []core.LoanDetails, areaSummaries []core.AreaSummary) core.DashboardState {
	state := core.DashboardState{
		AreaSummaries: areaSummaries,
		LoanDetails:   allLoanDetails,
	}
	for _, details := range allLoanDetails {
		state.TotalPrincipalLoaned += details.Loan.Principal
		state.TotalCurrentlyOutstanding += details.OutstandingBalance
		state.TotalRepaid += details.TotalPaid
		if details.OutstandingBalance > 0 {
			state.ActiveLoansCount++
		}
		if details.IsOverdue {
			state.OverdueLoansCount++
		}
	}
	return state
}
