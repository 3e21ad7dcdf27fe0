package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/store"
)

// NewInvoiceCommand creates the invoice command group.
func NewInvoiceCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "invoice",
		Short: "Inspect the ledger and record payments",
	}
	cmd.AddCommand(newInvoiceListCommand(rootOpts))
	cmd.AddCommand(newInvoiceMarkPaidCommand(rootOpts))
	return cmd
}

func newInvoiceListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List recorded invoices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore(st)

			invoices, err := st.ListInvoices(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list invoices", err)
			}

			f := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return f.Success(invoices)
			}
			if len(invoices) == 0 {
				fmt.Fprintln(f.Writer, "Ledger is empty.")
				return nil
			}
			for _, inv := range invoices {
				status := "unpaid"
				if inv.Paid {
					status = "paid"
				}
				fmt.Fprintf(f.Writer, "%-16s %-12s %12s %-6s %s\n",
					inv.ID, inv.VendorID, inv.Amount.StringFixed(2), status,
					inv.EnteredAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func newInvoiceMarkPaidCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "mark-paid <invoice-id>",
		Short: "Record that an invoice has been paid",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore(st)

			if err := st.MarkInvoicePaid(ctx, args[0]); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return NewExitError(ExitCommandError, fmt.Sprintf("invoice not found: %s", args[0]))
				}
				return WrapExitError(ExitCommandError, "failed to mark invoice paid", err)
			}

			f := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return f.Success(map[string]any{"invoice_id": args[0], "paid": true})
			}
			fmt.Fprintf(f.Writer, "Invoice %s marked paid\n", args[0])
			return nil
		},
	}
}
