package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gymcrowd/qa/scenarios"
)

func newModelCheckCmd(opts *rootOptions) *cobra.Command {
	var path string
	cmd := &cobra.Command{
		Use:   "check SCENARIO.yaml...",
		Short: "Run acceptance scenarios against a model artifact",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, f := range args {
				sc, err := scenarios.Load(f)
				if err != nil {
					return err
				}
				artifact := path
				if artifact == "" {
					artifact = sc.Model
				}
				srv, _, err := loadModel(cmd, opts, artifact)
				if err != nil {
					return err
				}
				rep := scenarios.Run(sc, srv)
				fmt.Fprintf(out, "%s: %d passed, %d failed\n", rep.Scenario, rep.Passed, len(rep.Failures))
				for _, fl := range rep.Failures {
					fmt.Fprintf(out, "  FAIL %s: %s\n", fl.Case, fl.Reason)
				}
				failed += len(rep.Failures)
			}
			if failed > 0 {
				return fmt.Errorf("%d scenario case(s) failed", failed)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&path, "model", "", "model artifact, overrides the scenario and model.path")
	return cmd
}
