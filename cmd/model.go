package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newModelCmd(opts *rootOptions) *cobra.Command {
	modelCmd := &cobra.Command{
		Use:   "model",
		Short: "Model artifact commands",
	}
	var path string
	inspect := &cobra.Command{
		Use:   "inspect",
		Short: "Load the model artifact and report its state",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, lc, err := loadModel(cmd, opts, path)
			if err != nil {
				return err
			}
			info := lc.Info()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "state:    %s\n", lc.State())
			fmt.Fprintf(out, "kind:     %s\n", info.Kind)
			fmt.Fprintf(out, "source:   %s\n", info.Source)
			fmt.Fprintf(out, "features: %d\n", info.NumFeatures)
			if err := lc.LoadError(); err != nil {
				fmt.Fprintf(out, "error:    %v\n", err)
			}
			return nil
		},
	}
	inspect.Flags().StringVar(&path, "model", "", "model artifact, overrides model.path")
	modelCmd.AddCommand(inspect, newModelCheckCmd(opts))
	return modelCmd
}
