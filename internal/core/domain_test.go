package core

import (
	"testing"
	"time"
)

func TestClientValidate(t *testing.T) {
	valid := Client{Name: "Ravi Kumar", Contact: "+91 98000 00000", Region: Plains}

	tests := []struct {
		name    string
		mutate  func(c Client) Client
		wantErr error
	}{
		{"valid", func(c Client) Client { return c }, nil},
		{"empty name", func(c Client) Client { c.Name = "  "; return c }, ErrEmptyName},
		{"empty contact", func(c Client) Client { c.Contact = ""; return c }, ErrEmptyContact},
		{"bad region", func(c Client) Client { c.Region = "MOON"; return c }, ErrInvalidRegion},
		{"address optional", func(c Client) Client { c.Address = ""; return c }, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoanValidate(t *testing.T) {
	start := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 6, 0)
	valid := Loan{
		ClientID:     1,
		Principal:    10000,
		InterestRate: 0.10,
		Frequency:    Monthly,
		StartDate:    start,
	}

	tests := []struct {
		name    string
		mutate  func(l Loan) Loan
		wantErr error
	}{
		{"valid open-ended", func(l Loan) Loan { return l }, nil},
		{"valid with end date", func(l Loan) Loan { l.EndDate = &end; return l }, nil},
		{"no client", func(l Loan) Loan { l.ClientID = 0; return l }, ErrMissingClient},
		{"zero principal", func(l Loan) Loan { l.Principal = 0; return l }, ErrInvalidPrincipal},
		{"negative principal", func(l Loan) Loan { l.Principal = -5; return l }, ErrInvalidPrincipal},
		{"zero rate", func(l Loan) Loan { l.InterestRate = 0; return l }, ErrInvalidRate},
		{"bad frequency", func(l Loan) Loan { l.Frequency = "HOURLY"; return l }, ErrInvalidFrequency},
		{"zero start", func(l Loan) Loan { l.StartDate = time.Time{}; return l }, ErrZeroStartDate},
		{"end before start", func(l Loan) Loan { e := start.AddDate(0, 0, -1); l.EndDate = &e; return l }, ErrEndBeforeStart},
		{"end equals start", func(l Loan) Loan { e := start; l.EndDate = &e; return l }, ErrEndBeforeStart},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.mutate(valid).Validate()
			if err != tt.wantErr {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPaymentValidate(t *testing.T) {
	valid := Payment{LoanID: 1, Amount: 500, PaymentDate: time.Date(2024, 4, 1, 0, 0, 0, 0, time.UTC)}

	if err := valid.Validate(); err != nil {
		t.Fatalf("valid payment: %v", err)
	}
	if err := (Payment{LoanID: 0, Amount: 500, PaymentDate: valid.PaymentDate}).Validate(); err != ErrMissingLoan {
		t.Errorf("missing loan = %v, want %v", err, ErrMissingLoan)
	}
	if err := (Payment{LoanID: 1, Amount: 0, PaymentDate: valid.PaymentDate}).Validate(); err != ErrInvalidAmount {
		t.Errorf("zero amount = %v, want %v", err, ErrInvalidAmount)
	}
}

func TestParseEnums(t *testing.T) {
	if r, err := ParseRegion(" city "); err != nil || r != City {
		t.Errorf("ParseRegion(city) = %v, %v", r, err)
	}
	if _, err := ParseRegion("OCEAN"); err != ErrInvalidRegion {
		t.Errorf("ParseRegion(OCEAN) err = %v, want %v", err, ErrInvalidRegion)
	}
	if f, err := ParseFrequency("weekly"); err != nil || f != Weekly {
		t.Errorf("ParseFrequency(weekly) = %v, %v", f, err)
	}
	if _, err := ParseFrequency(""); err != ErrInvalidFrequency {
		t.Errorf("ParseFrequency(empty) err = %v, want %v", err, ErrInvalidFrequency)
	}
}

func TestRegionsComplete(t *testing.T) {
	rs := Regions()
	if len(rs) != 3 {
		t.Fatalf("Regions() len = %d, want 3", len(rs))
	}
	for _, r := range rs {
		if !r.Valid() {
			t.Errorf("region %s reported invalid", r)
		}
	}
}
