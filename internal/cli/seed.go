package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/intake"
)

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <file>",
		Short: "Load vendors and invoices from a seed file",
		Long: `Load a registry seed file (YAML or JSON) into the database.

Vendors are registered or updated. Invoices are inserted once; invoices
already in the ledger are skipped.

Example:
  bookkeeper seed ./onboarding.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(rootOpts, args[0], cmd)
		},
	}
}

func runSeed(opts *RootOptions, path string, cmd *cobra.Command) error {
	seed, err := intake.LoadSeed(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid seed file", err)
	}

	ctx := commandContext(cmd)
	st, err := openStore(opts)
	if err != nil {
		return err
	}
	defer closeStore(st)

	report, err := intake.ApplySeed(ctx, st, seed, time.Now())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to apply seed", err)
	}

	f := newFormatter(cmd, opts)
	if opts.Format == "json" {
		return f.Success(map[string]int{
			"vendors":  report.Vendors,
			"invoices": report.Invoices,
			"skipped":  report.Skipped,
		})
	}
	fmt.Fprintf(f.Writer, "Seeded %d vendors, %d invoices (%d already present)\n",
		report.Vendors, report.Invoices, report.Skipped)
	return nil
}
