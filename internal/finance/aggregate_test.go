package finance

import (
	"testing"
	"time"

	"prestiti/internal/core"
)

func TestLoanDetailsFor(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 2, 0)
	loan := core.Loan{ID: 7, ClientID: 1, Principal: 10000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0}
	payments := []core.Payment{
		{ID: 1, LoanID: 7, Amount: 3000, PaymentDate: t0.AddDate(0, 1, 0)},
		{ID: 2, LoanID: 7, Amount: 2000, PaymentDate: t0.AddDate(0, 0, 10)},
	}

	details := LoanDetailsFor(loan, payments, asOf)
	if !almostEqual(details.TotalPaid, 5000) {
		t.Errorf("TotalPaid = %v, want 5000", details.TotalPaid)
	}
	if !almostEqual(details.OutstandingBalance, 7100) {
		t.Errorf("OutstandingBalance = %v, want 7100", details.OutstandingBalance)
	}
	if details.IsOverdue {
		t.Error("open-ended loan flagged overdue")
	}
	if len(details.Payments) != 2 {
		t.Errorf("Payments len = %d, want 2", len(details.Payments))
	}
}

func TestLoanDetailsOrderIndependent(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 2, 0)
	loan := core.Loan{ID: 7, ClientID: 1, Principal: 10000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0}
	a := core.Payment{ID: 1, LoanID: 7, Amount: 3000, PaymentDate: t0}
	b := core.Payment{ID: 2, LoanID: 7, Amount: 2000, PaymentDate: t0}

	fwd := LoanDetailsFor(loan, []core.Payment{a, b}, asOf)
	rev := LoanDetailsFor(loan, []core.Payment{b, a}, asOf)
	if fwd.OutstandingBalance != rev.OutstandingBalance || fwd.TotalPaid != rev.TotalPaid {
		t.Errorf("payment order changed result: %+v vs %+v", fwd, rev)
	}
}

func TestClientSummaryFor(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 2, 0)
	client := core.Client{ID: 1, Name: "Ravi Kumar", Contact: "x", Region: core.Plains}
	loans := []core.Loan{
		{ID: 1, ClientID: 1, Principal: 10000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 2, ClientID: 1, Principal: 4000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
	}
	paymentsByLoan := map[int64][]core.Payment{
		1: {{ID: 1, LoanID: 1, Amount: 5000, PaymentDate: asOf}},
		// loan 2 unpaid
	}

	got := ClientSummaryFor(client, loans, paymentsByLoan, asOf)
	if got.NumberOfLoans != 2 {
		t.Errorf("NumberOfLoans = %d, want 2", got.NumberOfLoans)
	}
	if !almostEqual(got.TotalPrincipalLoaned, 14000) {
		t.Errorf("TotalPrincipalLoaned = %v, want 14000", got.TotalPrincipalLoaned)
	}
	if !almostEqual(got.TotalAmountPaid, 5000) {
		t.Errorf("TotalAmountPaid = %v, want 5000", got.TotalAmountPaid)
	}
	// 12100-5000 + 4840-0
	if !almostEqual(got.CurrentOutstandingBalance, 7100+4840) {
		t.Errorf("CurrentOutstandingBalance = %v, want %v", got.CurrentOutstandingBalance, 7100+4840.0)
	}
}

func TestClientSummaryOrderIndependent(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 1, 0)
	client := core.Client{ID: 1, Name: "n", Contact: "c", Region: core.City}
	loans := []core.Loan{
		{ID: 1, ClientID: 1, Principal: 1000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 2, ClientID: 1, Principal: 2000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 3, ClientID: 1, Principal: 3000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
	}
	payments := map[int64][]core.Payment{
		2: {{ID: 1, LoanID: 2, Amount: 100, PaymentDate: asOf}},
	}

	fwd := ClientSummaryFor(client, loans, payments, asOf)
	rev := ClientSummaryFor(client, []core.Loan{loans[2], loans[0], loans[1]}, payments, asOf)
	if fwd.CurrentOutstandingBalance != rev.CurrentOutstandingBalance ||
		fwd.TotalPrincipalLoaned != rev.TotalPrincipalLoaned ||
		fwd.TotalAmountPaid != rev.TotalAmountPaid {
		t.Errorf("loan order changed summary: %+v vs %+v", fwd, rev)
	}
}

func TestAreaSummaries(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 2, 0)

	// Two clients in PLAINS, one in CITY, none in HILLS.
	clients := []core.Client{
		{ID: 1, Name: "a", Contact: "c", Region: core.Plains},
		{ID: 2, Name: "b", Contact: "c", Region: core.Plains},
		{ID: 3, Name: "c", Contact: "c", Region: core.City},
	}
	loans := []core.Loan{
		{ID: 1, ClientID: 1, Principal: 10000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 2, ClientID: 2, Principal: 5000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 3, ClientID: 3, Principal: 2000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 4, ClientID: 99, Principal: 7777, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0}, // orphan
	}
	// Loan 2 fully settled: counts toward totalLoansInArea but not active.
	paymentsByLoan := map[int64][]core.Payment{
		2: {{ID: 1, LoanID: 2, Amount: 6050, PaymentDate: asOf}},
	}

	got := AreaSummaries(clients, loans, paymentsByLoan, asOf)
	if len(got) != 3 {
		t.Fatalf("len = %d, want one entry per region", len(got))
	}

	byRegion := map[core.Region]core.AreaSummary{}
	for _, s := range got {
		byRegion[s.Region] = s
	}

	plains := byRegion[core.Plains]
	if plains.TotalLoansInArea != 2 || plains.ActiveLoansCount != 1 {
		t.Errorf("plains = %+v, want 2 loans / 1 active", plains)
	}
	if !almostEqual(plains.TotalOutstandingExposure, 12100) {
		t.Errorf("plains exposure = %v, want 12100", plains.TotalOutstandingExposure)
	}

	city := byRegion[core.City]
	if city.TotalLoansInArea != 1 || city.ActiveLoansCount != 1 {
		t.Errorf("city = %+v, want 1 loan / 1 active", city)
	}

	hills := byRegion[core.Hills]
	if hills.TotalLoansInArea != 0 || hills.ActiveLoansCount != 0 || hills.TotalOutstandingExposure != 0 {
		t.Errorf("hills not zero-filled: %+v", hills)
	}
}

func TestAreaSummariesOrderIndependent(t *testing.T) {
	t0 := date(2024, time.January, 15)
	asOf := t0.AddDate(0, 1, 0)
	clients := []core.Client{
		{ID: 1, Name: "a", Contact: "c", Region: core.City},
		{ID: 2, Name: "b", Contact: "c", Region: core.Hills},
	}
	loans := []core.Loan{
		{ID: 1, ClientID: 1, Principal: 100, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
		{ID: 2, ClientID: 2, Principal: 200, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0},
	}

	fwd := AreaSummaries(clients, loans, nil, asOf)
	rev := AreaSummaries([]core.Client{clients[1], clients[0]}, []core.Loan{loans[1], loans[0]}, nil, asOf)
	for i := range fwd {
		if fwd[i] != rev[i] {
			t.Errorf("entry %d differs: %+v vs %+v", i, fwd[i], rev[i])
		}
	}
}

func TestPortfolioSummary(t *testing.T) {
	t0 := date(2024, time.January, 15)
	end := t0.AddDate(0, 1, 0)
	asOf := t0.AddDate(0, 2, 0)

	overdue := core.Loan{ID: 1, ClientID: 1, Principal: 10000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0, EndDate: &end}
	settled := core.Loan{ID: 2, ClientID: 1, Principal: 1000, InterestRate: 0.10, Frequency: core.Monthly, StartDate: t0}

	details := []core.LoanDetails{
		LoanDetailsFor(overdue, []core.Payment{{ID: 1, LoanID: 1, Amount: 5000, PaymentDate: asOf}}, asOf),
		LoanDetailsFor(settled, []core.Payment{{ID: 2, LoanID: 2, Amount: 1210, PaymentDate: asOf}}, asOf),
	}
	areas := AreaSummaries(nil, nil, nil, asOf)

	got := PortfolioSummary(details, areas)
	if !almostEqual(got.TotalPrincipalLoaned, 11000) {
		t.Errorf("TotalPrincipalLoaned = %v, want 11000", got.TotalPrincipalLoaned)
	}
	if !almostEqual(got.TotalCurrentlyOutstanding, 7100) {
		t.Errorf("TotalCurrentlyOutstanding = %v, want 7100", got.TotalCurrentlyOutstanding)
	}
	// Repaid sums over all loans, including the settled one.
	if !almostEqual(got.TotalRepaid, 6210) {
		t.Errorf("TotalRepaid = %v, want 6210", got.TotalRepaid)
	}
	if got.ActiveLoansCount != 1 {
		t.Errorf("ActiveLoansCount = %d, want 1", got.ActiveLoansCount)
	}
	if got.OverdueLoansCount != 1 {
		t.Errorf("OverdueLoansCount = %d, want 1", got.OverdueLoansCount)
	}
	if len(got.AreaSummaries) != 3 {
		t.Errorf("AreaSummaries len = %d, want 3", len(got.AreaSummaries))
	}
}
