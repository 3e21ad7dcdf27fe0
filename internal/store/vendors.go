package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/bookkeeper/internal/domain"
)

// LookupVendor returns the vendor with the given ID.
// found is false (with a nil error) when no such vendor exists.
func (s *Store) LookupVendor(ctx context.Context, id string) (v domain.Vendor, found bool, err error) {
	var active int
	err = s.db.QueryRowContext(ctx, `
		SELECT vendor_id, name, email, active
		FROM vendors
		WHERE vendor_id = ?
	`, id).Scan(&v.ID, &v.Name, &v.Email, &active)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Vendor{}, false, nil
	}
	if err != nil {
		return domain.Vendor{}, false, fmt.Errorf("lookup vendor: %w", err)
	}
	v.Active = active != 0
	return v, true, nil
}

// PutVendor registers a vendor or updates its name, email and active flag.
// The vendor ID itself never changes.
func (s *Store) PutVendor(ctx context.Context, v domain.Vendor) error {
	if v.ID == "" {
		return fmt.Errorf("put vendor: vendor id is required")
	}
	if v.Email == "" {
		return fmt.Errorf("put vendor: email is required")
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO vendors (vendor_id, name, email, active)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(vendor_id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			active = excluded.active
	`, v.ID, v.Name, v.Email, boolToInt(v.Active))
	if err != nil {
		return fmt.Errorf("put vendor: %w", err)
	}
	return nil
}

// SetVendorActive flips a vendor's active flag.
// Returns ErrNotFound if the vendor does not exist.
func (s *Store) SetVendorActive(ctx context.Context, id string, active bool) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE vendors SET active = ? WHERE vendor_id = ?
	`, boolToInt(active), id)
	if err != nil {
		return fmt.Errorf("set vendor active: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set vendor active: rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("set vendor active %q: %w", id, ErrNotFound)
	}
	return nil
}

// ListVendors returns all vendors ordered by ID.
// Returns an empty slice (not nil) if the registry is empty.
func (s *Store) ListVendors(ctx context.Context) ([]domain.Vendor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT vendor_id, name, email, active
		FROM vendors
		ORDER BY vendor_id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query vendors: %w", err)
	}
	defer rows.Close()

	vendors := []domain.Vendor{}
	for rows.Next() {
		var v domain.Vendor
		var active int
		if err := rows.Scan(&v.ID, &v.Name, &v.Email, &active); err != nil {
			return nil, fmt.Errorf("scan vendor: %w", err)
		}
		v.Active = active != 0
		vendors = append(vendors, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate vendors: %w", err)
	}
	return vendors, nil
}
