package store

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/roach88/bookkeeper/internal/domain"
)

func toMillis(t time.Time) int64 {
	return t.UTC().UnixMilli()
}

func fromMillis(ms int64) time.Time {
	return time.UnixMilli(ms).UTC()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// marshalAmount validates and serializes an amount as a decimal string.
func marshalAmount(d decimal.Decimal) (string, error) {
	if d.IsNegative() {
		return "", ErrInvalidAmount
	}
	return d.String(), nil
}

func unmarshalAmount(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, fmt.Errorf("unmarshal amount %q: %w", s, err)
	}
	return d, nil
}

func marshalClaim(c domain.Claim) (string, error) {
	data, err := json.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("marshal claim: %w", err)
	}
	return string(data), nil
}

func unmarshalClaim(s string) (domain.Claim, error) {
	var c domain.Claim
	if err := json.Unmarshal([]byte(s), &c); err != nil {
		return domain.Claim{}, fmt.Errorf("unmarshal claim: %w", err)
	}
	return c, nil
}
