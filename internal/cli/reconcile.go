package cli

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/domain"
	"github.com/roach88/bookkeeper/internal/engine"
	"github.com/roach88/bookkeeper/internal/intake"
	"github.com/roach88/bookkeeper/internal/store"
)

// EngineOptions holds flags shared by commands that run the engine.
type EngineOptions struct {
	*RootOptions
	Workers      int
	StoreTimeout time.Duration
}

// bindEngineFlags registers --workers and --store-timeout.
func bindEngineFlags(cmd *cobra.Command, opts *EngineOptions) {
	cmd.Flags().IntVar(&opts.Workers, "workers", 0, "concurrent reconciliations (default $BOOKKEEPER_WORKERS)")
	cmd.Flags().DurationVar(&opts.StoreTimeout, "store-timeout", 0, "bound on each store call (default $BOOKKEEPER_STORE_TIMEOUT)")
}

// resolve fills unset flags from the loaded configuration.
func (o *EngineOptions) resolve(cmd *cobra.Command) {
	if !cmd.Flags().Changed("workers") {
		o.Workers = o.Config.Workers
	}
	if !cmd.Flags().Changed("store-timeout") {
		o.StoreTimeout = o.Config.StoreTimeout
	}
}

func (o *EngineOptions) newEngine(st *store.Store, sink engine.ReviewSink) *engine.Engine {
	return engine.New(st, st, sink,
		engine.WithStoreTimeout(o.StoreTimeout),
		engine.WithSettleTimeout(o.Config.SettleTimeout),
	)
}

// ClaimReport is the CLI view of one claim's outcome.
type ClaimReport struct {
	ClaimID   string `json:"claim_id"`
	VendorID  string `json:"vendor_id"`
	InvoiceID string `json:"invoice_id"`
	Outcome   string `json:"outcome"` // "accepted" | "rejected" | "failed"
	Reason    string `json:"reason,omitempty"`
	Detail    string `json:"detail,omitempty"`
	Error     string `json:"error,omitempty"`
}

// outcomeFailed marks claims that must be resubmitted.
const outcomeFailed = "failed"

func newClaimReport(r engine.Result) ClaimReport {
	report := ClaimReport{
		ClaimID:   r.Claim.ID,
		VendorID:  r.Claim.VendorID,
		InvoiceID: r.Claim.InvoiceID,
	}
	if r.Err != nil {
		report.Outcome = outcomeFailed
		report.Error = r.Err.Error()
		return report
	}
	report.Outcome = string(r.Verdict.Outcome)
	report.Reason = string(r.Verdict.Reason)
	report.Detail = r.Verdict.Detail
	return report
}

// Line renders the report as one line of text output.
func (r ClaimReport) Line() string {
	line := fmt.Sprintf("%-8s %s %s/%s", r.Outcome, r.ClaimID, r.VendorID, r.InvoiceID)
	switch {
	case r.Error != "":
		line += ": " + r.Error
	case r.Reason != "":
		line += ": " + domain.Reason(r.Reason).Message()
		if r.Detail != "" {
			line += " " + r.Detail
		}
	}
	return line
}

// ReconcileReport is the result of reconciling one claim batch.
type ReconcileReport struct {
	Claims   []ClaimReport  `json:"claims"`
	Accepted int            `json:"accepted"`
	Rejected int            `json:"rejected"`
	Failed   int            `json:"failed"`
	ByReason map[string]int `json:"by_reason,omitempty"`
}

// NewReconcileCommand creates the reconcile command.
func NewReconcileCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &EngineOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "reconcile <claims-file>",
		Short: "Reconcile a batch of invoice claims",
		Long: `Reconcile every claim in a claim batch file (YAML or JSON).

Each claim is either recorded in the ledger or queued for review with a
reason. Claims that could not be processed at all are reported as failed
and should be resubmitted.

Exit codes:
  0 - Every claim was accepted or queued for review
  1 - One or more claims could not be processed
  2 - Command error (invalid claims file, store unreachable, etc.)

Examples:
  bookkeeper reconcile ./inbox.yaml
  bookkeeper reconcile ./inbox.yaml --workers 8 --format json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.resolve(cmd)
			return runReconcile(opts, args[0], cmd)
		},
	}
	bindEngineFlags(cmd, opts)

	return cmd
}

func runReconcile(opts *EngineOptions, path string, cmd *cobra.Command) error {
	claims, err := intake.LoadClaims(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid claims file", err)
	}

	ctx, stop := withSignals(commandContext(cmd))
	defer stop()

	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	sink, closeSink, err := openReviewQueue(ctx, opts.RootOptions, st)
	if err != nil {
		return err
	}
	defer closeSink()

	eng := opts.newEngine(st, sink)
	results := eng.ReconcileAll(ctx, claims, opts.Workers)
	summary := engine.Summarize(results)

	report := ReconcileReport{
		Claims:   make([]ClaimReport, len(results)),
		Accepted: summary.Accepted,
		Rejected: summary.Rejected,
		Failed:   summary.Failed,
	}
	for i, r := range results {
		report.Claims[i] = newClaimReport(r)
	}
	if len(summary.ByReason) > 0 {
		report.ByReason = make(map[string]int, len(summary.ByReason))
		for reason, n := range summary.ByReason {
			report.ByReason[string(reason)] = n
		}
	}

	f := newFormatter(cmd, opts.RootOptions)
	if opts.Format == "json" {
		if err := f.Success(report); err != nil {
			return err
		}
	} else {
		outputReconcileText(f, report)
	}

	if report.Failed > 0 {
		return NewExitError(ExitFailure, fmt.Sprintf("%d claim(s) could not be processed", report.Failed))
	}
	return nil
}

func outputReconcileText(f *OutputFormatter, report ReconcileReport) {
	w := f.Writer
	for _, c := range report.Claims {
		fmt.Fprintln(w, c.Line())
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Summary: %d accepted, %d rejected, %d failed, %d total\n",
		report.Accepted, report.Rejected, report.Failed, len(report.Claims))

	reasons := make([]string, 0, len(report.ByReason))
	for reason := range report.ByReason {
		reasons = append(reasons, reason)
	}
	sort.Strings(reasons)
	for _, reason := range reasons {
		fmt.Fprintf(w, "  %-22s %d\n", reason, report.ByReason[reason])
	}
}
