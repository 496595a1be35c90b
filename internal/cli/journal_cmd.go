// internal/cli/journal_cmd.go
package cli

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	xerrors "admin-console/internal/pkg/errors"

	"github.com/spf13/cobra"
)

const journalPermission = "admins.view"

func newJournalCmd(opts *rootOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Show recent mutation attempts (requires DATABASE_URL)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			console, done, err := opts.openConsole(cmd)
			if err != nil {
				return err
			}
			defer done()

			if console.Journal == nil {
				return errors.New("mutation journal disabled: set DATABASE_URL")
			}
			ctx := cmd.Context()
			if err := ensureProfile(ctx, console); err != nil {
				return err
			}
			if !console.Gate.HasPermission(journalPermission) {
				return fmt.Errorf("%w: journal requires %s", xerrors.ErrForbidden, journalPermission)
			}

			entries, err := console.Journal.ListRecent(ctx, limit)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(cmd.OutOrStdout(), entries)
			}

			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "TIME\tRESOURCE\tKIND\tTARGET\tACTION\tADMIN\tOUTCOME\tERROR")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
					e.CreatedAt.Format(time.RFC3339), e.Resource, e.Kind, e.TargetID, e.Action, e.AdminID, e.Outcome, e.Error)
			}
			return tw.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 50, "Number of entries")
	return cmd
}
