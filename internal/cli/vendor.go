package cli

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/roach88/bookkeeper/internal/domain"
	"github.com/roach88/bookkeeper/internal/store"
)

// VendorAddOptions holds flags for vendor add.
type VendorAddOptions struct {
	*RootOptions
	Name     string
	Email    string
	Inactive bool
}

// NewVendorCommand creates the vendor command group.
func NewVendorCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "vendor",
		Short: "Manage the vendor registry",
	}
	cmd.AddCommand(newVendorAddCommand(rootOpts))
	cmd.AddCommand(newVendorListCommand(rootOpts))
	cmd.AddCommand(newVendorSetActiveCommand(rootOpts))
	return cmd
}

func newVendorAddCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VendorAddOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "add <vendor-id>",
		Short: "Register or update a vendor",
		Long: `Register a vendor, or replace an existing vendor's name, email and
active flag.

Examples:
  bookkeeper vendor add V1 --email billing@acme.example --name "Acme"
  bookkeeper vendor add V2 --email ap@newco.example --inactive`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVendorAdd(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Email, "email", "", "registered sender email (required)")
	cmd.Flags().StringVar(&opts.Name, "name", "", "display name")
	cmd.Flags().BoolVar(&opts.Inactive, "inactive", false, "register the vendor as not yet active")
	_ = cmd.MarkFlagRequired("email")

	return cmd
}

func runVendorAdd(opts *VendorAddOptions, id string, cmd *cobra.Command) error {
	ctx := commandContext(cmd)
	st, err := openStore(opts.RootOptions)
	if err != nil {
		return err
	}
	defer closeStore(st)

	v := domain.Vendor{ID: id, Name: opts.Name, Email: opts.Email, Active: !opts.Inactive}
	if err := st.PutVendor(ctx, v); err != nil {
		return WrapExitError(ExitCommandError, "failed to register vendor", err)
	}

	f := newFormatter(cmd, opts.RootOptions)
	if opts.Format == "json" {
		return f.Success(v)
	}
	fmt.Fprintf(f.Writer, "Vendor %s registered (%s, %s)\n", v.ID, v.Email, activeLabel(v.Active))
	return nil
}

func newVendorListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List registered vendors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := commandContext(cmd)
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore(st)

			vendors, err := st.ListVendors(ctx)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list vendors", err)
			}

			f := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return f.Success(vendors)
			}
			if len(vendors) == 0 {
				fmt.Fprintln(f.Writer, "No vendors registered.")
				return nil
			}
			for _, v := range vendors {
				fmt.Fprintf(f.Writer, "%-12s %-8s %-32s %s\n", v.ID, activeLabel(v.Active), v.Email, v.Name)
			}
			return nil
		},
	}
}

func newVendorSetActiveCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "set-active <vendor-id> <true|false>",
		Short: "Activate or deactivate a vendor",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			active, err := strconv.ParseBool(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid active flag %q: want true or false", args[1]))
			}

			ctx := commandContext(cmd)
			st, err := openStore(rootOpts)
			if err != nil {
				return err
			}
			defer closeStore(st)

			if err := st.SetVendorActive(ctx, args[0], active); err != nil {
				if errors.Is(err, store.ErrNotFound) {
					return NewExitError(ExitCommandError, fmt.Sprintf("vendor not found: %s", args[0]))
				}
				return WrapExitError(ExitCommandError, "failed to update vendor", err)
			}

			f := newFormatter(cmd, rootOpts)
			if rootOpts.Format == "json" {
				return f.Success(map[string]any{"vendor_id": args[0], "active": active})
			}
			fmt.Fprintf(f.Writer, "Vendor %s is now %s\n", args[0], activeLabel(active))
			return nil
		},
	}
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "inactive"
}
