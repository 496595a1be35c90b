// internal/cli/screen_cmd.go
package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	xerrors "admin-console/internal/pkg/errors"
	"admin-console/internal/resource"

	"github.com/spf13/cobra"
)

func newScreensCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "screens",
		Short: "List the screens the signed-in admin may open",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			if err := ensureProfile(cmd.Context(), console); err != nil {
				return err
			}
			kinds := console.Registry.Visible(console.Gate)
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), kinds)
			}
			printKinds(cmd.OutOrStdout(), kinds)
			return nil
		},
	}
}

func newListCmd(opts *rootOptions) *cobra.Command {
	var (
		page    int
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "list <screen>",
		Short: "Show one page of a screen",
		Example: `  console list users --filter status=banned --page 2
  console list reports -o json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			if err := ensureProfile(ctx, console); err != nil {
				return err
			}
			s, err := console.Registry.Access(console.Gate, args[0], false)
			if err != nil {
				return err
			}

			for _, f := range filters {
				key, value, ok := strings.Cut(f, "=")
				if !ok {
					return fmt.Errorf("%w: filter %q is not key=value", xerrors.ErrInvalidInput, f)
				}
				// Only record the filter; the mount below runs the single fetch.
				if _, err := s.RequestFilterChange(key, value); err != nil {
					return err
				}
			}
			if err := s.Mount(ctx); err != nil {
				return err
			}
			if page > 1 {
				if _, ok := s.RequestPage(page); !ok {
					return fmt.Errorf("%w: page %d is out of range", xerrors.ErrInvalidInput, page)
				}
				if err := s.Refresh(ctx); err != nil {
					return err
				}
			}

			state, err := decodeSnapshot(s.Snapshot())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), state)
			}
			printPage(cmd.OutOrStdout(), args[0], state)
			return nil
		},
	}

	cmd.Flags().IntVar(&page, "page", 1, "Page to show")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "Filter as key=value (repeatable)")
	return cmd
}

func newMutateCmd(opts *rootOptions) *cobra.Command {
	var (
		action string
		data   string
	)

	cmd := &cobra.Command{
		Use:   "mutate <screen> <create|update|delete|status> [id]",
		Short: "Create, update, delete or change the status of one item",
		Example: `  console mutate users status 42 --action ban
  console mutate templates create --data '{"title":"Welcome","body":"Hi"}'
  console mutate payments delete 7`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			m := resource.Mutation{Action: action}
			switch args[1] {
			case "create":
				m.Kind = resource.MutationCreate
			case "update":
				m.Kind = resource.MutationUpdate
			case "delete":
				m.Kind = resource.MutationDelete
			case "status", "status_change":
				m.Kind = resource.MutationStatusChange
			default:
				return fmt.Errorf("%w: %q", xerrors.ErrUnsupportedMutation, args[1])
			}
			if len(args) == 3 {
				m.TargetID = args[2]
			}
			if data != "" {
				if !json.Valid([]byte(data)) {
					return fmt.Errorf("%w: --data is not valid JSON", xerrors.ErrInvalidInput)
				}
				m.Payload = json.RawMessage(data)
			}
			if err := m.Validate(); err != nil {
				return err
			}

			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			ctx := cmd.Context()
			if err := ensureProfile(ctx, console); err != nil {
				return err
			}
			s, err := console.Registry.Access(console.Gate, args[0], true)
			if err != nil {
				return err
			}

			res, err := s.Mutate(ctx, m)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), res)
			}
			if len(res.Data) > 0 && string(res.Data) != "null" {
				fmt.Fprintln(cmd.OutOrStdout(), string(res.Data))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&action, "action", "", "Status action, e.g. ban, unban, refund")
	cmd.Flags().StringVar(&data, "data", "", "JSON payload for create and update")
	return cmd
}
