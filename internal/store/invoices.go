package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bookkeeper/internal/domain"
)

const invoiceColumns = `invoice_id, vendor_id, amount, paid, entered_at, sender_email, attachment_ref, claim_id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanInvoice(row rowScanner) (domain.Invoice, error) {
	var inv domain.Invoice
	var amount string
	var paid int
	var enteredAt int64
	if err := row.Scan(
		&inv.ID,
		&inv.VendorID,
		&amount,
		&paid,
		&enteredAt,
		&inv.SenderEmail,
		&inv.AttachmentRef,
		&inv.ClaimID,
	); err != nil {
		return domain.Invoice{}, err
	}
	d, err := unmarshalAmount(amount)
	if err != nil {
		return domain.Invoice{}, err
	}
	inv.Amount = d
	inv.Paid = paid != 0
	inv.EnteredAt = fromMillis(enteredAt)
	return inv, nil
}

// LookupInvoice returns the invoice with the given ID.
// found is false (with a nil error) when the ledger has no such invoice.
func (s *Store) LookupInvoice(ctx context.Context, id string) (inv domain.Invoice, found bool, err error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		WHERE invoice_id = ?
	`, id)
	inv, err = scanInvoice(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Invoice{}, false, nil
	}
	if err != nil {
		return domain.Invoice{}, false, fmt.Errorf("lookup invoice: %w", err)
	}
	return inv, true, nil
}

// InsertInvoice records an invoice in the ledger.
// Returns inserted=false with a nil error if the invoice ID already exists.
//
// Uses ON CONFLICT(invoice_id) DO NOTHING so that the uniqueness check and
// the write happen in one statement. Of any number of concurrent callers
// inserting the same ID, exactly one observes inserted=true.
//
// Note: The vendor referenced by VendorID must exist (foreign key constraint).
func (s *Store) InsertInvoice(ctx context.Context, inv domain.Invoice) (inserted bool, err error) {
	if inv.ID == "" {
		return false, fmt.Errorf("insert invoice: invoice id is required")
	}
	amount, err := marshalAmount(inv.Amount)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (`+invoiceColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(invoice_id) DO NOTHING
	`,
		inv.ID,
		inv.VendorID,
		amount,
		boolToInt(inv.Paid),
		toMillis(inv.EnteredAt),
		inv.SenderEmail,
		inv.AttachmentRef,
		inv.ClaimID,
	)
	if err != nil {
		return false, fmt.Errorf("insert invoice: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert invoice: rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// MarkInvoicePaid flips an invoice's paid flag. This is the payment
// process's entry point; the engine never calls it.
// Returns ErrNotFound if the invoice does not exist.
func (s *Store) MarkInvoicePaid(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE invoices SET paid = 1 WHERE invoice_id = ?
	`, id)
	if err != nil {
		return fmt.Errorf("mark invoice paid: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("mark invoice paid: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("mark invoice paid %q: %w", id, ErrNotFound)
	}
	return nil
}

// ListInvoices returns all invoices ordered by entry time, then ID.
// Returns an empty slice (not nil) if the ledger is empty.
func (s *Store) ListInvoices(ctx context.Context) ([]domain.Invoice, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+invoiceColumns+`
		FROM invoices
		ORDER BY entered_at ASC, invoice_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	defer rows.Close()

	invoices := []domain.Invoice{}
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, fmt.Errorf("scan invoice: %w", err)
		}
		invoices = append(invoices, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate invoices: %w", err)
	}
	return invoices, nil
}

// CountInvoices returns the number of invoices in the ledger.
func (s *Store) CountInvoices(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM invoices`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}
