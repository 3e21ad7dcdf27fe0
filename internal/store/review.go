package store

import (
	"context"
	"fmt"

	"github.com/roach88/bookkeeper/internal/domain"
)

// EnqueueReview appends a rejected claim to the review queue.
// The entry's Seq is assigned by the database; the caller's value is ignored.
func (s *Store) EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error {
	claimJSON, err := marshalClaim(entry.Claim)
	if err != nil {
		return fmt.Errorf("enqueue review: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO review_queue (enqueued_at, reason, detail, claim_digest, claim)
		VALUES (?, ?, ?, ?, ?)
	`,
		toMillis(entry.EnqueuedAt),
		string(entry.Reason),
		entry.Detail,
		entry.ClaimDigest,
		claimJSON,
	)
	if err != nil {
		return fmt.Errorf("enqueue review: %w", err)
	}
	return nil
}

// ListReviews returns queued review entries in append order.
// A limit of zero or less returns every entry.
func (s *Store) ListReviews(ctx context.Context, limit int) ([]domain.ReviewEntry, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, enqueued_at, reason, detail, claim_digest, claim
		FROM review_queue
		ORDER BY seq ASC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("query reviews: %w", err)
	}
	defer rows.Close()

	entries := []domain.ReviewEntry{}
	for rows.Next() {
		var e domain.ReviewEntry
		var enqueuedAt int64
		var reason, claimJSON string
		if err := rows.Scan(&e.Seq, &enqueuedAt, &reason, &e.Detail, &e.ClaimDigest, &claimJSON); err != nil {
			return nil, fmt.Errorf("scan review: %w", err)
		}
		claim, err := unmarshalClaim(claimJSON)
		if err != nil {
			return nil, err
		}
		e.EnqueuedAt = fromMillis(enqueuedAt)
		e.Reason = domain.Reason(reason)
		e.Claim = claim
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate reviews: %w", err)
	}
	return entries, nil
}

// CountReviews returns the number of queued review entries.
func (s *Store) CountReviews(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM review_queue`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count reviews: %w", err)
	}
	return n, nil
}
