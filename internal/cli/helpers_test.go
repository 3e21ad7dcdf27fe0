package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// cliRun captures one command execution.
type cliRun struct {
	stdout string
	stderr string
	err    error
}

// execute runs the root command with args against db. stdin may be empty.
func execute(t *testing.T, db, stdin string, args ...string) cliRun {
	t.Helper()
	t.Setenv("BOOKKEEPER_REVIEW_SINK", "sqlite")

	out := &bytes.Buffer{}
	errOut := &bytes.Buffer{}
	cmd := NewRootCommand()
	cmd.SetOut(out)
	cmd.SetErr(errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(append([]string{"--db", db, "--env-file", ""}, args...))

	err := cmd.Execute()
	return cliRun{stdout: out.String(), stderr: errOut.String(), err: err}
}

// mustExecute is execute that fails the test on error.
func mustExecute(t *testing.T, db string, args ...string) string {
	t.Helper()
	run := execute(t, db, "", args...)
	require.NoError(t, run.err, "stdout=%s stderr=%s", run.stdout, run.stderr)
	return run.stdout
}

func tempDB(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "books.db")
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

const testSeed = `
vendors:
  - vendor_id: V1
    name: Acme
    email: a@x.com
  - vendor_id: V2
    email: b@x.com
    active: false
invoices:
  - invoice_id: I2
    vendor_id: V1
    amount: "75.00"
    paid: true
`

// seededDB returns a database loaded with testSeed.
func seededDB(t *testing.T) string {
	t.Helper()
	db := tempDB(t)
	mustExecute(t, db, "seed", writeFile(t, "seed.yaml", testSeed))
	return db
}
