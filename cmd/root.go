package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/kilianp07/gymcrowd/config"
	"github.com/kilianp07/gymcrowd/infra/logger"
)

const defaultConfigPath = "config.yaml"

type rootOptions struct {
	cfgPath string
	cfg     *config.Config
}

// NewRootCmd builds the gymcrowd command tree.
func NewRootCmd() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "gymcrowd",
		Short:         "Gym crowd occupancy predictor",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.load(cmd)
		},
	}
	root.PersistentFlags().StringVarP(&opts.cfgPath, "config", "c", defaultConfigPath, "configuration file")
	root.AddCommand(newServeCmd(opts), newPredictCmd(opts), newForecastCmd(opts), newModelCmd(opts), newHistoryCmd(opts))
	return root
}

// Execute runs the CLI.
func Execute() error {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "error:", err)
		return err
	}
	return nil
}

// load reads .env files, the configuration and sets up logging. A missing
// default config file is not an error; settings then come from the
// environment only.
func (o *rootOptions) load(cmd *cobra.Command) error {
	_ = godotenv.Load(".env")
	_ = godotenv.Overload(".env.local")

	path := o.cfgPath
	if !cmd.Flags().Changed("config") {
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			path = ""
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := logger.Configure(logger.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: cmd.ErrOrStderr(),
	}); err != nil {
		return err
	}
	o.cfg = cfg
	return nil
}
