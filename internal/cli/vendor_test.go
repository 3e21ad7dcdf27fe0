package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/domain"
)

func TestVendorAddAndList(t *testing.T) {
	db := tempDB(t)

	out := mustExecute(t, db, "vendor", "add", "V1", "--email", "a@x.com", "--name", "Acme")
	assert.Contains(t, out, "Vendor V1 registered (a@x.com, active)")

	out = mustExecute(t, db, "vendor", "add", "V2", "--email", "b@x.com", "--inactive")
	assert.Contains(t, out, "Vendor V2 registered (b@x.com, inactive)")

	out = mustExecute(t, db, "--format", "json", "vendor", "list")
	var resp struct {
		Status string          `json:"status"`
		Data   []domain.Vendor `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 2)
	assert.Equal(t, domain.Vendor{ID: "V1", Name: "Acme", Email: "a@x.com", Active: true}, resp.Data[0])
	assert.False(t, resp.Data[1].Active)
}

func TestVendorAddRequiresEmail(t *testing.T) {
	run := execute(t, tempDB(t), "", "vendor", "add", "V1")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "required flag")
	assert.Contains(t, run.err.Error(), "email")
}

func TestVendorListEmpty(t *testing.T) {
	out := mustExecute(t, tempDB(t), "vendor", "list")
	assert.Contains(t, out, "No vendors registered.")
}

func TestVendorSetActive(t *testing.T) {
	db := seededDB(t)

	out := mustExecute(t, db, "vendor", "set-active", "V2", "true")
	assert.Contains(t, out, "Vendor V2 is now active")

	out = mustExecute(t, db, "vendor", "list")
	assert.Contains(t, out, "V2")
	assert.NotContains(t, out, "inactive")
}

func TestVendorSetActiveErrors(t *testing.T) {
	db := seededDB(t)

	run := execute(t, db, "", "vendor", "set-active", "V9", "false")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "vendor not found: V9")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))

	run = execute(t, db, "", "vendor", "set-active", "V1", "maybe")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), `invalid active flag "maybe"`)
}
