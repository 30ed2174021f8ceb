package commands

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/on-the-ground/effect_ive_engine/internal/app"
)

func tagsCmd(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "tags",
		Short: "List routed effect tags by family",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, tag := range opts.appCtx.Composite.Tags() {
				fmt.Fprintf(w, "%s\t%s\n", tag.Family(), tag)
			}
			return w.Flush()
		},
	}
}

func scenariosCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenarios",
		Short: "List scenarios",
		// No engine is needed to list names.
		PersistentPreRunE:  func(*cobra.Command, []string) error { return nil },
		PersistentPostRunE: func(*cobra.Command, []string) error { return nil },
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, s := range app.Scenarios() {
				fmt.Fprintf(cmd.OutOrStdout(), "%-16s %s\n", s.Name, s.Summary)
			}
			return nil
		},
	}
}
