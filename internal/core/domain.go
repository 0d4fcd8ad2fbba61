package core

import (
	"errors"
	"strings"
	"time"
)

const (
	City   Region = "CITY"
	Plains Region = "PLAINS"
	Hills  Region = "HILLS"
)

const (
	Daily   Frequency = "DAILY"
	Weekly  Frequency = "WEEKLY"
	Monthly Frequency = "MONTHLY"
)

type (
	// Region is the geographic/market area a client belongs to. Stored by
	// symbolic name so reordering the enumeration never corrupts data.
	Region string

	// Frequency defines a loan's compounding/repayment period.
	Frequency string

	Client struct {
		ID      int64
		Name    string
		Contact string
		Address string // optional
		Region  Region
	}

	Loan struct {
		ID       int64
		ClientID int64
		// Principal is the amount originally lent.
		Principal float64
		// InterestRate is the per-period rate as a fraction (0.10 = 10%
		// per period). The period is defined by Frequency; the rate is
		// never annualized or rescaled.
		InterestRate float64
		Frequency    Frequency
		StartDate    time.Time
		// EndDate is nil for open-ended loans.
		EndDate *time.Time
	}

	Payment struct {
		ID          int64
		LoanID      int64
		Amount      float64
		PaymentDate time.Time
	}
)

var (
	ErrEmptyName        = errors.New("empty client name")
	ErrEmptyContact     = errors.New("empty client contact")
	ErrInvalidRegion    = errors.New("invalid region")
	ErrInvalidPrincipal = errors.New("principal must be positive")
	ErrInvalidRate      = errors.New("interest rate must be positive")
	ErrInvalidFrequency = errors.New("invalid frequency")
	ErrMissingClient    = errors.New("missing client reference")
	ErrMissingLoan      = errors.New("missing loan reference")
	ErrInvalidAmount    = errors.New("payment amount must be positive")
	ErrZeroStartDate    = errors.New("start date cannot be zero")
	ErrEndBeforeStart   = errors.New("end date must be after start date")
)

// Regions lists every defined region, in presentation order. Aggregations
// emit one entry per element even when a region holds no data.
func Regions() []Region {
	return []Region{City, Plains, Hills}
}

func (r Region) Valid() bool {
	switch r {
	case City, Plains, Hills:
		return true
	}
	return false
}

func (f Frequency) Valid() bool {
	switch f {
	case Daily, Weekly, Monthly:
		return true
	}
	return false
}

// ParseRegion resolves a stored symbolic name back to a Region.
func ParseRegion(s string) (Region, error) {
	r := Region(strings.ToUpper(strings.TrimSpace(s)))
	if !r.Valid() {
		return "", ErrInvalidRegion
	}
	return r, nil
}

// ParseFrequency resolves a stored symbolic name back to a Frequency.
func ParseFrequency(s string) (Frequency, error) {
	f := Frequency(strings.ToUpper(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", ErrInvalidFrequency
	}
	return f, nil
}

func (c Client) Validate() error {
	if len(strings.TrimSpace(c.Name)) == 0 {
		return ErrEmptyName
	}
	if len(c.Name) > 200 {
		return errors.New("client name too long (max 200 characters)")
	}
	if len(strings.TrimSpace(c.Contact)) == 0 {
		return ErrEmptyContact
	}
	if !c.Region.Valid() {
		return ErrInvalidRegion
	}
	return nil
}

func (l Loan) Validate() error {
	if l.ClientID <= 0 {
		return ErrMissingClient
	}
	if l.Principal <= 0 {
		return ErrInvalidPrincipal
	}
	if l.InterestRate <= 0 {
		return ErrInvalidRate
	}
	if !l.Frequency.Valid() {
		return ErrInvalidFrequency
	}
	if l.StartDate.IsZero() {
		return ErrZeroStartDate
	}
	if l.EndDate != nil && !l.EndDate.After(l.StartDate) {
		return ErrEndBeforeStart
	}
	return nil
}

func (p Payment) Validate() error {
	if p.LoanID <= 0 {
		return ErrMissingLoan
	}
	if p.Amount <= 0 {
		return ErrInvalidAmount
	}
	if p.PaymentDate.IsZero() {
		return errors.New("payment date cannot be zero")
	}
	return nil
}
