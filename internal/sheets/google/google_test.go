package google

import (
	"context"
	"testing"
	"time"

	"prestiti/internal/core"
)

func TestParseCellID(t *testing.T) {
	tests := []struct {
		name   string
		cell   any
		wantID int64
		wantOK bool
	}{
		{name: "string id", cell: "42", wantID: 42, wantOK: true},
		{name: "padded string", cell: " 7 ", wantID: 7, wantOK: true},
		{name: "float from sheets api", cell: float64(13), wantID: 13, wantOK: true},
		{name: "int64", cell: int64(99), wantID: 99, wantOK: true},
		{name: "header cell", cell: "ID", wantOK: false},
		{name: "empty string", cell: "", wantOK: false},
		{name: "nil", cell: nil, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := parseCellID(tt.cell)
			if ok != tt.wantOK {
				t.Fatalf("parseCellID(%v) ok = %v, want %v", tt.cell, ok, tt.wantOK)
			}
			if ok && id != tt.wantID {
				t.Errorf("parseCellID(%v) = %d, want %d", tt.cell, id, tt.wantID)
			}
		})
	}
}

func TestAppendPaymentWithoutService(t *testing.T) {
	client := &Client{spreadsheetID: "sheet", paymentsSheet: "Payments"}

	p := core.Payment{LoanID: 1, Amount: 100, PaymentDate: time.Now()}
	if _, err := client.AppendPayment(context.Background(), p); err == nil {
		t.Error("AppendPayment should fail without an initialized service")
	}
}

func TestAppendPaymentRejectsInvalid(t *testing.T) {
	client := &Client{spreadsheetID: "sheet", paymentsSheet: "Payments"}

	p := core.Payment{LoanID: 1, Amount: -5, PaymentDate: time.Now()}
	if _, err := client.AppendPayment(context.Background(), p); err == nil {
		t.Error("AppendPayment should reject an invalid payment")
	}
}

func TestDeletePaymentWithoutService(t *testing.T) {
	client := &Client{spreadsheetID: "sheet", paymentsSheet: "Payments"}

	if err := client.DeletePayment(context.Background(), 1); err == nil {
		t.Error("DeletePayment should fail without an initialized service")
	}
}

func TestNewFromEnvRequiresSpreadsheetID(t *testing.T) {
	t.Setenv("GOOGLE_SPREADSHEET_ID", "")

	if _, err := NewFromEnv(context.Background()); err == nil {
		t.Error("NewFromEnv should fail without GOOGLE_SPREADSHEET_ID")
	}
}
