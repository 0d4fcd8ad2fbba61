// Package storage persists clients, loans, and payments in SQLite.
//
// Encoding rules: enumerations are stored by symbolic name, timestamps as
// signed 64-bit epoch milliseconds, monetary amounts as REAL. Deleting a
// client cascades to its loans and their payments via foreign keys.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // pure Go SQLite driver

	"prestiti/internal/core"
)

// ErrNotFound marks update/read targets whose id does not exist.
var ErrNotFound = errors.New("record not found")

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(dbPath string) (*SQLiteRepository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	// Foreign keys are per-connection in SQLite, so they are switched on in
	// the DSN rather than with a one-off PRAGMA exec.
	dsn := fmt.Sprintf("file:%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &SQLiteRepository{db: db}, nil
}

func (r *SQLiteRepository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// --- clients ---

func (r *SQLiteRepository) InsertClient(ctx context.Context, c core.Client) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO clients (name, contact, address, region) VALUES (?, ?, ?, ?)",
		c.Name, c.Contact, nullString(c.Address), string(c.Region),
	)
	if err != nil {
		return 0, fmt.Errorf("insert client: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("client insert id: %w", err)
	}
	slog.InfoContext(ctx, "Client saved", "client_id", id, "name", c.Name, "region", c.Region)
	return id, nil
}

func (r *SQLiteRepository) UpdateClient(ctx context.Context, c core.Client) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE clients SET name = ?, contact = ?, address = ?, region = ? WHERE client_id = ?",
		c.Name, c.Contact, nullString(c.Address), string(c.Region), c.ID,
	)
	if err != nil {
		return fmt.Errorf("update client: %w", err)
	}
	return requireRow(res, "client", c.ID)
}

// DeleteClient removes the client and, by cascade, all its loans and their
// payments. Deleting an absent id is a no-op.
func (r *SQLiteRepository) DeleteClient(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM clients WHERE client_id = ?", id); err != nil {
		return fmt.Errorf("delete client: %w", err)
	}
	slog.InfoContext(ctx, "Client deleted", "client_id", id)
	return nil
}

// GetClient returns nil when the id does not exist; absence is not an error.
func (r *SQLiteRepository) GetClient(ctx context.Context, id int64) (*core.Client, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT client_id, name, contact, address, region FROM clients WHERE client_id = ?", id)
	c, err := scanClient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get client: %w", err)
	}
	return c, nil
}

func (r *SQLiteRepository) ListClients(ctx context.Context) ([]core.Client, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT client_id, name, contact, address, region FROM clients ORDER BY name ASC")
	if err != nil {
		return nil, fmt.Errorf("list clients: %w", err)
	}
	defer rows.Close()

	var out []core.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("scan client: %w", err)
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clients: %w", err)
	}
	return out, nil
}

// --- loans ---

func (r *SQLiteRepository) InsertLoan(ctx context.Context, l core.Loan) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO loans (client_id, principal, interest_rate, frequency, start_date, end_date) VALUES (?, ?, ?, ?, ?, ?)",
		l.ClientID, l.Principal, l.InterestRate, string(l.Frequency), l.StartDate.UnixMilli(), nullMillis(l.EndDate),
	)
	if err != nil {
		return 0, fmt.Errorf("insert loan: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("loan insert id: %w", err)
	}
	slog.InfoContext(ctx, "Loan saved",
		"loan_id", id, "client_id", l.ClientID, "principal", l.Principal, "frequency", l.Frequency)
	return id, nil
}

func (r *SQLiteRepository) UpdateLoan(ctx context.Context, l core.Loan) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE loans SET client_id = ?, principal = ?, interest_rate = ?, frequency = ?, start_date = ?, end_date = ? WHERE loan_id = ?",
		l.ClientID, l.Principal, l.InterestRate, string(l.Frequency), l.StartDate.UnixMilli(), nullMillis(l.EndDate), l.ID,
	)
	if err != nil {
		return fmt.Errorf("update loan: %w", err)
	}
	return requireRow(res, "loan", l.ID)
}

func (r *SQLiteRepository) DeleteLoan(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM loans WHERE loan_id = ?", id); err != nil {
		return fmt.Errorf("delete loan: %w", err)
	}
	slog.InfoContext(ctx, "Loan deleted", "loan_id", id)
	return nil
}

func (r *SQLiteRepository) GetLoan(ctx context.Context, id int64) (*core.Loan, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT loan_id, client_id, principal, interest_rate, frequency, start_date, end_date FROM loans WHERE loan_id = ?", id)
	l, err := scanLoan(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get loan: %w", err)
	}
	return l, nil
}

func (r *SQLiteRepository) ListLoans(ctx context.Context) ([]core.Loan, error) {
	return r.queryLoans(ctx,
		"SELECT loan_id, client_id, principal, interest_rate, frequency, start_date, end_date FROM loans ORDER BY start_date DESC")
}

func (r *SQLiteRepository) ListLoansByClient(ctx context.Context, clientID int64) ([]core.Loan, error) {
	return r.queryLoans(ctx,
		"SELECT loan_id, client_id, principal, interest_rate, frequency, start_date, end_date FROM loans WHERE client_id = ? ORDER BY start_date DESC",
		clientID)
}

func (r *SQLiteRepository) queryLoans(ctx context.Context, query string, args ...any) ([]core.Loan, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list loans: %w", err)
	}
	defer rows.Close()

	var out []core.Loan
	for rows.Next() {
		l, err := scanLoan(rows)
		if err != nil {
			return nil, fmt.Errorf("scan loan: %w", err)
		}
		out = append(out, *l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate loans: %w", err)
	}
	return out, nil
}

// --- payments ---

// InsertPayment records a payment. Payments are immutable once recorded;
// there is deliberately no update operation.
func (r *SQLiteRepository) InsertPayment(ctx context.Context, p core.Payment) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO payments (loan_id, amount, payment_date) VALUES (?, ?, ?)",
		p.LoanID, p.Amount, p.PaymentDate.UnixMilli(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}
	slog.InfoContext(ctx, "Payment recorded", "payment_id", id, "loan_id", p.LoanID, "amount", p.Amount)
	return id, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM payments WHERE payment_id = ?", id); err != nil {
		return fmt.Errorf("delete payment: %w", err)
	}
	slog.InfoContext(ctx, "Payment deleted", "payment_id", id)
	return nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (*core.Payment, error) {
	var (
		p      core.Payment
		millis int64
	)
	err := r.db.QueryRowContext(ctx,
		"SELECT payment_id, loan_id, amount, payment_date FROM payments WHERE payment_id = ?", id,
	).Scan(&p.ID, &p.LoanID, &p.Amount, &millis)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get payment: %w", err)
	}
	p.PaymentDate = time.UnixMilli(millis).UTC()
	return &p, nil
}

func (r *SQLiteRepository) ListPaymentsByLoan(ctx context.Context, loanID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT payment_id, loan_id, amount, payment_date FROM payments WHERE loan_id = ? ORDER BY payment_date DESC",
		loanID)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()

	var out []core.Payment
	for rows.Next() {
		var (
			p      core.Payment
			millis int64
		)
		if err := rows.Scan(&p.ID, &p.LoanID, &p.Amount, &millis); err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		p.PaymentDate = time.UnixMilli(millis).UTC()
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate payments: %w", err)
	}
	return out, nil
}

// --- sheets sync queue ---

// PendingSyncPayment is the minimal row the sync worker needs to mirror a
// payment to the ledger sheet.
type PendingSyncPayment struct {
	ID     int64
	LoanID int64
}

// GetPendingSyncPayments lists payments not yet mirrored to the sheet,
// oldest first, skipping rows already marked with a sync error.
func (r *SQLiteRepository) GetPendingSyncPayments(ctx context.Context, limit int) ([]PendingSyncPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT payment_id, loan_id FROM payments WHERE synced = 0 AND sync_error = 0 ORDER BY payment_id ASC LIMIT ?",
		limit)
	if err != nil {
		return nil, fmt.Errorf("get pending sync payments: %w", err)
	}
	defer rows.Close()

	var out []PendingSyncPayment
	for rows.Next() {
		var p PendingSyncPayment
		if err := rows.Scan(&p.ID, &p.LoanID); err != nil {
			return nil, fmt.Errorf("scan pending payment: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pending payments: %w", err)
	}
	return out, nil
}

func (r *SQLiteRepository) MarkPaymentSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE payments SET synced = 1, sync_error = 0 WHERE payment_id = ?", id); err != nil {
		return fmt.Errorf("mark payment synced: %w", err)
	}
	slog.InfoContext(ctx, "Payment marked as synced", "payment_id", id)
	return nil
}

func (r *SQLiteRepository) MarkPaymentSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		"UPDATE payments SET sync_error = 1 WHERE payment_id = ?", id); err != nil {
		return fmt.Errorf("mark payment sync error: %w", err)
	}
	slog.WarnContext(ctx, "Payment marked with sync error", "payment_id", id)
	return nil
}

// --- helpers ---

type rowScanner interface {
	Scan(dest ...any) error
}

func scanClient(row rowScanner) (*core.Client, error) {
	var (
		c       core.Client
		address sql.NullString
		region  string
	)
	if err := row.Scan(&c.ID, &c.Name, &c.Contact, &address, &region); err != nil {
		return nil, err
	}
	c.Address = address.String
	parsed, err := core.ParseRegion(region)
	if err != nil {
		return nil, fmt.Errorf("client %d: %w", c.ID, err)
	}
	c.Region = parsed
	return &c, nil
}

func scanLoan(row rowScanner) (*core.Loan, error) {
	var (
		l           core.Loan
		frequency   string
		startMillis int64
		endMillis   sql.NullInt64
	)
	if err := row.Scan(&l.ID, &l.ClientID, &l.Principal, &l.InterestRate, &frequency, &startMillis, &endMillis); err != nil {
		return nil, err
	}
	parsed, err := core.ParseFrequency(frequency)
	if err != nil {
		return nil, fmt.Errorf("loan %d: %w", l.ID, err)
	}
	l.Frequency = parsed
	l.StartDate = time.UnixMilli(startMillis).UTC()
	if endMillis.Valid {
		end := time.UnixMilli(endMillis.Int64).UTC()
		l.EndDate = &end
	}
	return &l, nil
}

func requireRow(res sql.Result, entity string, id int64) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update %s rows affected: %w", entity, err)
	}
	if n == 0 {
		return fmt.Errorf("update %s %d: %w", entity, id, ErrNotFound)
	}
	return nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func nullMillis(t *time.Time) sql.NullInt64 {
	if t == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: t.UnixMilli(), Valid: true}
}
