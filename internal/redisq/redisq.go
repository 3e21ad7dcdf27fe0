// Package redisq implements the review sink on a Redis Stream.
//
// Each rejected claim becomes one XADD entry. The stream is append-only and
// Redis assigns the entry ID, so concurrent producers never collide. Review
// tooling reads the stream with XRANGE; Seq on returned entries is the
// 1-based position in the stream.
package redisq

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/roach88/bookkeeper/internal/domain"
)

// Stream field names.
const (
	fieldEnqueuedAt  = "enqueued_at"
	fieldReason      = "reason"
	fieldDetail      = "detail"
	fieldClaimDigest = "claim_digest"
	fieldClaim       = "claim"
	fieldVersion     = "v"
)

// Sink appends review entries to a Redis Stream.
type Sink struct {
	rdb    *redis.Client
	stream string
}

// New creates a sink writing to stream.
func New(rdb *redis.Client, stream string) *Sink {
	return &Sink{rdb: rdb, stream: stream}
}

// Dial connects to addr and verifies the server answers.
func Dial(ctx context.Context, addr, stream string) (*Sink, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		rdb.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return New(rdb, stream), nil
}

// Close releases the client connection.
func (s *Sink) Close() error {
	return s.rdb.Close()
}

// Stream returns the stream key.
func (s *Sink) Stream() string {
	return s.stream
}

// EnqueueReview appends one entry to the stream.
func (s *Sink) EnqueueReview(ctx context.Context, entry domain.ReviewEntry) error {
	values, err := encodeEntry(entry)
	if err != nil {
		return fmt.Errorf("enqueue review: %w", err)
	}
	if err := s.rdb.XAdd(ctx, &redis.XAddArgs{
		Stream: s.stream,
		Values: values,
	}).Err(); err != nil {
		return fmt.Errorf("enqueue review: xadd %s: %w", s.stream, err)
	}
	return nil
}

// ListReviews returns up to limit entries from the head of the stream.
// A limit of zero or less returns every entry.
func (s *Sink) ListReviews(ctx context.Context, limit int) ([]domain.ReviewEntry, error) {
	var msgs []redis.XMessage
	var err error
	if limit > 0 {
		msgs, err = s.rdb.XRangeN(ctx, s.stream, "-", "+", int64(limit)).Result()
	} else {
		msgs, err = s.rdb.XRange(ctx, s.stream, "-", "+").Result()
	}
	if err != nil {
		return nil, fmt.Errorf("list reviews: xrange %s: %w", s.stream, err)
	}

	entries := make([]domain.ReviewEntry, 0, len(msgs))
	for i, msg := range msgs {
		entry, err := decodeEntry(msg.Values)
		if err != nil {
			return nil, fmt.Errorf("list reviews: entry %s: %w", msg.ID, err)
		}
		entry.Seq = int64(i + 1)
		entries = append(entries, entry)
	}
	return entries, nil
}

// CountReviews returns the stream length.
func (s *Sink) CountReviews(ctx context.Context) (int, error) {
	n, err := s.rdb.XLen(ctx, s.stream).Result()
	if err != nil {
		return 0, fmt.Errorf("count reviews: xlen %s: %w", s.stream, err)
	}
	return int(n), nil
}

func encodeEntry(entry domain.ReviewEntry) (map[string]any, error) {
	claim, err := json.Marshal(entry.Claim)
	if err != nil {
		return nil, fmt.Errorf("marshal claim: %w", err)
	}
	return map[string]any{
		fieldEnqueuedAt:  entry.EnqueuedAt.UTC().Format(time.RFC3339Nano),
		fieldReason:      string(entry.Reason),
		fieldDetail:      entry.Detail,
		fieldClaimDigest: entry.ClaimDigest,
		fieldClaim:       string(claim),
		fieldVersion:     domain.SchemaVersion,
	}, nil
}

func decodeEntry(values map[string]any) (domain.ReviewEntry, error) {
	get := func(key string) (string, error) {
		raw, ok := values[key]
		if !ok {
			return "", fmt.Errorf("missing field %q", key)
		}
		s, ok := raw.(string)
		if !ok {
			return "", fmt.Errorf("field %q: expected string, got %T", key, raw)
		}
		return s, nil
	}

	var entry domain.ReviewEntry
	// Entries written before the version field existed are read as v1.
	if _, ok := values[fieldVersion]; ok {
		v, err := get(fieldVersion)
		if err != nil {
			return entry, err
		}
		if v != domain.SchemaVersion {
			return entry, fmt.Errorf("unsupported entry version %q", v)
		}
	}

	at, err := get(fieldEnqueuedAt)
	if err != nil {
		return entry, err
	}
	entry.EnqueuedAt, err = time.Parse(time.RFC3339Nano, at)
	if err != nil {
		return entry, fmt.Errorf("field %q: %w", fieldEnqueuedAt, err)
	}

	reason, err := get(fieldReason)
	if err != nil {
		return entry, err
	}
	entry.Reason = domain.Reason(reason)
	if !entry.Reason.Valid() {
		return entry, fmt.Errorf("field %q: unknown reason %q", fieldReason, reason)
	}

	if entry.Detail, err = get(fieldDetail); err != nil {
		return entry, err
	}
	if entry.ClaimDigest, err = get(fieldClaimDigest); err != nil {
		return entry, err
	}

	claim, err := get(fieldClaim)
	if err != nil {
		return entry, err
	}
	if err := json.Unmarshal([]byte(claim), &entry.Claim); err != nil {
		return entry, fmt.Errorf("field %q: %w", fieldClaim, err)
	}
	return entry, nil
}
