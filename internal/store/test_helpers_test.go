package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/bookkeeper/internal/domain"
)

// createTestStore creates a new file-backed store in a temp dir.
func createTestStore(t *testing.T) *Store {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

// seedVendor registers an active vendor with a derived email.
func seedVendor(t *testing.T, s *Store, id string) domain.Vendor {
	t.Helper()
	v := domain.Vendor{ID: id, Name: "Vendor " + id, Email: id + "@example.com", Active: true}
	if err := s.PutVendor(context.Background(), v); err != nil {
		t.Fatalf("PutVendor(%q) failed: %v", id, err)
	}
	return v
}

// createTestInvoice creates an unpaid invoice with minimal required fields.
func createTestInvoice(id, vendorID, amount string) domain.Invoice {
	return domain.Invoice{
		ID:        id,
		VendorID:  vendorID,
		Amount:    decimal.RequireFromString(amount),
		EnteredAt: time.Date(2026, 1, 15, 9, 30, 0, 0, time.UTC),
	}
}

// getTableColumns returns column names for a table.
func getTableColumns(t *testing.T, db *sql.DB, table string) []string {
	t.Helper()
	rows, err := db.Query("SELECT name FROM pragma_table_info(?)", table)
	if err != nil {
		t.Fatalf("table_info(%s) failed: %v", table, err)
	}
	defer rows.Close()

	var cols []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			t.Fatalf("scan column: %v", err)
		}
		cols = append(cols, name)
	}
	return cols
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
