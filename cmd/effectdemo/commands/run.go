package commands

import (
	"fmt"

	"github.com/prometheus/common/expfmt"
	"github.com/spf13/cobra"

	"github.com/on-the-ground/effect_ive_engine/internal/app"
)

func runCmd(opts *rootOptions) *cobra.Command {
	var showMetrics bool
	cmd := &cobra.Command{
		Use:   "run [scenario...]",
		Short: "Run scenarios, all of them when none is named",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, s := range app.Scenarios() {
					args = append(args, s.Name)
				}
			}
			out := cmd.OutOrStdout()
			for _, name := range args {
				summary, err := opts.appCtx.RunScenario(cmd.Context(), name)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "%s: %s\n", name, summary)
			}
			if !showMetrics {
				return nil
			}
			families, err := opts.registry.Gather()
			if err != nil {
				return err
			}
			for _, mf := range families {
				if _, err := expfmt.MetricFamilyToText(out, mf); err != nil {
					return err
				}
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showMetrics, "metrics", false, "print collected metrics after the run")
	return cmd
}
