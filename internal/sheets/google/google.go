package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"prestiti/internal/core"
	ports "prestiti/internal/sheets"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

// Client mirrors the payment ledger to a Google spreadsheet. Each payment is
// one row: payment ID, loan ID, amount, payment date.
type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	paymentsSheet string

	mu      sync.Mutex
	sheetID int64
	haveID  bool
}

// Ensure interface conformance
var (
	_ ports.PaymentWriter  = (*Client)(nil)
	_ ports.PaymentDeleter = (*Client)(nil)
)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID plus service account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or
// GOOGLE_APPLICATION_CREDENTIALS).
// Optional: GOOGLE_SHEET_NAME (default "Payments").
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	paymentsSheet := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if paymentsSheet == "" {
		paymentsSheet = "Payments"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		paymentsSheet: paymentsSheet,
	}, nil
}

// newSheetsService initializes a Sheets Service using Service Account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE,
// or GOOGLE_APPLICATION_CREDENTIALS.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON"))
	serviceAccountFile := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))

	if serviceAccountJSON == "" && serviceAccountFile == "" {
		serviceAccountFile = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}

	var credentialsJSON []byte
	var err error

	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	slog.InfoContext(ctx, "Google Sheets service created", "scope", gsheet.SpreadsheetsScope)
	return service, nil
}

// AppendPayment writes the payment as the next row of the payments sheet and
// returns the written range as a reference.
func (c *Client) AppendPayment(ctx context.Context, p core.Payment) (string, error) {
	if err := p.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	// Find the next empty row by reading the ID column.
	rng := fmt.Sprintf("%s!A:A", c.paymentsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to get sheet dimensions for %s: %w", c.paymentsSheet, err)
	}
	nextRow := len(resp.Values) + 1

	dataRange := fmt.Sprintf("%s!A%d:D%d", c.paymentsSheet, nextRow, nextRow)
	vr := &gsheet.ValueRange{Values: [][]any{{
		p.ID,
		p.LoanID,
		p.Amount,
		p.PaymentDate.UTC().Format(time.RFC3339),
	}}}

	_, err = c.svc.Spreadsheets.Values.Update(c.spreadsheetID, dataRange, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to update %s: %w", dataRange, err)
	}

	return dataRange, nil
}

// DeletePayment finds the row whose ID column matches the payment and removes
// it with a DeleteDimension request.
func (c *Client) DeletePayment(ctx context.Context, paymentID int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:A", c.paymentsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("read %s: %w", rng, err)
	}

	rowIndex := -1
	for i, row := range resp.Values {
		if len(row) == 0 {
			continue
		}
		id, ok := parseCellID(row[0])
		if ok && id == paymentID {
			rowIndex = i
			break
		}
	}
	if rowIndex < 0 {
		// Never mirrored or already removed, nothing to do.
		slog.WarnContext(ctx, "Payment row not found in sheet", "payment_id", paymentID)
		return nil
	}

	sheetID, err := c.resolveSheetID(ctx)
	if err != nil {
		return err
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{
		Requests: []*gsheet.Request{{
			DeleteDimension: &gsheet.DeleteDimensionRequest{
				Range: &gsheet.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "ROWS",
					StartIndex: int64(rowIndex),
					EndIndex:   int64(rowIndex + 1),
				},
			},
		}},
	}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in sheet %s: %w", rowIndex+1, c.paymentsSheet, err)
	}

	slog.InfoContext(ctx, "Payment row removed from sheet",
		"payment_id", paymentID,
		"row", rowIndex+1)
	return nil
}

// resolveSheetID maps the configured sheet title to its numeric ID, caching
// the result.
func (c *Client) resolveSheetID(ctx context.Context) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.haveID {
		return c.sheetID, nil
	}

	meta, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("get spreadsheet metadata: %w", err)
	}
	for _, sheet := range meta.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == c.paymentsSheet {
			c.sheetID = sheet.Properties.SheetId
			c.haveID = true
			return c.sheetID, nil
		}
	}
	return 0, fmt.Errorf("sheet %q not found in spreadsheet", c.paymentsSheet)
}

func parseCellID(cell any) (int64, bool) {
	switch v := cell.(type) {
	case string:
		id, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		return id, err == nil
	case float64:
		return int64(v), true
	case int64:
		return v, true
	default:
		return 0, false
	}
}
