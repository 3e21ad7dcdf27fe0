package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/domain"
)

// ReviewListOptions holds flags for review list.
type ReviewListOptions struct {
	*RootOptions
	Limit int
}

// ReviewList is the JSON payload of review list.
type ReviewList struct {
	Total   int                  `json:"total"`
	Entries []domain.ReviewEntry `json:"entries"`
}

// NewReviewCommand creates the review command group.
func NewReviewCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "review",
		Short: "Inspect the review queue",
	}
	cmd.AddCommand(newReviewListCommand(rootOpts))
	return cmd
}

func newReviewListCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReviewListOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List queued review entries, oldest first",
		Long: `List rejected claims waiting for human review, oldest first.

Reads from the configured review sink (SQLite or Redis).

Examples:
  bookkeeper review list
  bookkeeper review list --limit 20 --format json
  bookkeeper review list --review-sink redis`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReviewList(opts, cmd)
		},
	}
	cmd.Flags().IntVar(&opts.Limit, "limit", 0, "maximum entries to show (0 for all)")

	return cmd
}

func runReviewList(opts *ReviewListOptions, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	queue, closeQueue, err := openReviewQueue(ctx, opts.RootOptions, st)
	if err != nil {
		return err
	}
	defer closeQueue()

	entries, err := queue.ListReviews(ctx, opts.Limit)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list reviews", err)
	}
	total, err := queue.CountReviews(ctx)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to count reviews", err)
	}

	f := newFormatter(cmd, opts.RootOptions)
	if opts.Format == "json" {
		return f.Success(ReviewList{Total: total, Entries: entries})
	}
	if total == 0 {
		fmt.Fprintln(f.Writer, "Review queue is empty.")
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(f.Writer, "[%d] %s %-22s %s %s/%s from %s\n",
			e.Seq, e.EnqueuedAt.UTC().Format(time.RFC3339), e.Reason,
			e.Claim.ID, e.Claim.VendorID, e.Claim.InvoiceID, e.Claim.Sender)
		if e.Detail != "" {
			fmt.Fprintf(f.Writer, "     Detail: %s\n", e.Detail)
		}
		f.VerboseLog("     Digest: %s", e.ClaimDigest)
	}
	if len(entries) < total {
		fmt.Fprintf(f.Writer, "(%d of %d shown)\n", len(entries), total)
	}
	return nil
}
