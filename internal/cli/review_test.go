package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewListEmpty(t *testing.T) {
	out := mustExecute(t, tempDB(t), "review", "list")
	assert.Contains(t, out, "Review queue is empty.")
}

func TestReviewList(t *testing.T) {
	db := seededDB(t)
	mustExecute(t, db, "reconcile", writeFile(t, "claims.yaml", testClaims))

	out := mustExecute(t, db, "review", "list")
	assert.Contains(t, out, "[1] ")
	assert.Contains(t, out, "[4] ")
	assert.Contains(t, out, "from evil@y.com")

	out = mustExecute(t, db, "review", "list", "--limit", "2")
	assert.Contains(t, out, "(2 of 4 shown)")

	out = mustExecute(t, db, "--format", "json", "review", "list", "--limit", "1")
	var resp struct {
		Data struct {
			Total   int `json:"total"`
			Entries []struct {
				Seq         int64  `json:"seq"`
				Reason      string `json:"reason"`
				ClaimDigest string `json:"claim_digest"`
			} `json:"entries"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, 4, resp.Data.Total)
	require.Len(t, resp.Data.Entries, 1)
	assert.Equal(t, int64(1), resp.Data.Entries[0].Seq)
	assert.NotEmpty(t, resp.Data.Entries[0].ClaimDigest)
}

func TestReviewListVerboseShowsDigest(t *testing.T) {
	db := seededDB(t)
	mustExecute(t, db, "reconcile", writeFile(t, "claims.yaml", testClaims))

	run := execute(t, db, "", "--verbose", "review", "list", "--limit", "1")
	require.NoError(t, run.err)
	assert.Contains(t, run.stderr, "Digest: ")
}
