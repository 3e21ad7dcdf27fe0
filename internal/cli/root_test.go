package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/bookkeeper/internal/domain"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "bookkeeper", cmd.Use)
	assert.Contains(t, cmd.Long, "review")
}

func TestVersionFlag(t *testing.T) {
	run := execute(t, tempDB(t), "", "--version")
	require.NoError(t, run.err)
	assert.Contains(t, run.stdout, domain.EngineVersion)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"migrate"},
		{"vendor", "add"},
		{"vendor", "list"},
		{"vendor", "set-active"},
		{"invoice", "list"},
		{"invoice", "mark-paid"},
		{"seed"},
		{"reconcile"},
		{"run"},
		{"review", "list"},
		{"test"},
	}

	for _, path := range commands {
		name := path[len(path)-1]
		t.Run(name, func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err, "Command %v should exist", path)
			require.NotNil(t, subCmd)
			assert.Equal(t, name, subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	verboseFlag := cmd.PersistentFlags().Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "v", verboseFlag.Shorthand)
	assert.Equal(t, "false", verboseFlag.DefValue)

	formatFlag := cmd.PersistentFlags().Lookup("format")
	require.NotNil(t, formatFlag)
	assert.Equal(t, "text", formatFlag.DefValue)

	dbFlag := cmd.PersistentFlags().Lookup("db")
	require.NotNil(t, dbFlag)
	assert.Equal(t, "", dbFlag.DefValue)

	sinkFlag := cmd.PersistentFlags().Lookup("review-sink")
	require.NotNil(t, sinkFlag)
}

func TestEngineCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	for _, name := range []string{"reconcile", "run"} {
		t.Run(name, func(t *testing.T) {
			sub, _, err := cmd.Find([]string{name})
			require.NoError(t, err)
			require.NotNil(t, sub.Flags().Lookup("workers"))
			require.NotNil(t, sub.Flags().Lookup("store-timeout"))
		})
	}
}

func TestTestCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	testCmd, _, err := cmd.Find([]string{"test"})
	require.NoError(t, err)

	updateFlag := testCmd.Flags().Lookup("update")
	require.NotNil(t, updateFlag)
	assert.Equal(t, "false", updateFlag.DefValue)

	require.NotNil(t, testCmd.Flags().Lookup("filter"))
	require.NotNil(t, testCmd.Flags().Lookup("golden-dir"))
}

func TestFormatValidation(t *testing.T) {
	assert.True(t, isValidFormat("text"))
	assert.True(t, isValidFormat("json"))

	assert.False(t, isValidFormat("xml"))
	assert.False(t, isValidFormat(""))
	assert.False(t, isValidFormat("TEXT"))
}

func TestFormatValidationIntegration(t *testing.T) {
	run := execute(t, tempDB(t), "", "--format", "invalid", "migrate")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "invalid format")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestInvalidReviewSinkFlag(t *testing.T) {
	run := execute(t, tempDB(t), "", "--review-sink", "kafka", "review", "list")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "invalid --review-sink")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}

func TestInvalidEnvironment(t *testing.T) {
	t.Setenv("BOOKKEEPER_WORKERS", "0")
	run := execute(t, tempDB(t), "", "migrate")
	require.Error(t, run.err)
	assert.Contains(t, run.err.Error(), "invalid configuration")
	assert.Equal(t, ExitCommandError, GetExitCode(run.err))
}
