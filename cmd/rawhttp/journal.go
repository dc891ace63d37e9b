package main

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func newJournalCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "journal",
		Short: "Inspect recorded exchanges",
	}

	var limit int
	list := &cobra.Command{
		Use:   "list",
		Short: "List the most recent exchanges",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return errNoJournal
			}
			defer j.Close()

			entries, err := j.List(cmd.Context(), limit)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ID\tSTARTED\tMODE\tHOST\tSTATUS\tDURATION\tERROR")
			for _, e := range entries {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
					e.ID, e.StartedAt.Format(time.RFC3339), e.Mode, e.Host, e.StatusCode, e.Duration, e.Error)
			}
			return tw.Flush()
		},
	}
	list.Flags().IntVarP(&limit, "limit", "n", 20, "Number of exchanges to show; 0 for all")

	show := &cobra.Command{
		Use:   "show <id>",
		Short: "Print the raw request and response of one exchange",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			j, err := a.openJournal()
			if err != nil {
				return err
			}
			if j == nil {
				return errNoJournal
			}
			defer j.Close()

			e, err := j.Get(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("exchange %s: %w", args[0], err)
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "# %s %s %s via %s\n", e.ID, e.Mode, e.Host, e.Endpoint)
			if e.Proxy != "" {
				fmt.Fprintf(w, "# proxy %s\n", e.Proxy)
			}
			if e.Error != "" {
				fmt.Fprintf(w, "# error %s\n", e.Error)
			}
			fmt.Fprintf(w, "%s\n", e.Request)
			fmt.Fprintf(w, "%s", e.Response)
			return nil
		},
	}

	cmd.AddCommand(list, show)
	return cmd
}

var errNoJournal = errors.New("no journal configured; pass --journal or set RAWHTTP_JOURNAL")
