package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gymcrowd/app"
	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/prediction"
	"github.com/kilianp07/gymcrowd/infra/logger"
)

type predictFlags struct {
	in        model.RawInput
	modelPath string
}

func newPredictCmd(opts *rootOptions) *cobra.Command {
	f := &predictFlags{}
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Estimate the headcount for one hour",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			srv, _, err := loadModel(cmd, opts, f.modelPath)
			if err != nil {
				return err
			}
			res, err := srv.Predict(f.in)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, res.CountText())
			fmt.Fprintln(out, res.Status.Message())
			if res.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: model unavailable, estimate comes from the placeholder model (%v)\n", srv.Health().Error)
			}
			return nil
		},
	}
	fl := cmd.Flags()
	fl.IntVar(&f.in.Hour, "hour", 0, "hour of day, 0-23")
	fl.StringVar(&f.in.Day, "day", "", "day of week, e.g. Wednesday")
	fl.StringVar(&f.in.Month, "month", "", "month name, e.g. September")
	fl.Float64Var(&f.in.Temperature, "temperature", 0, "outside temperature in degrees Fahrenheit")
	fl.StringVar(&f.in.SemesterStatus, "semester", model.SemesterDuring, "Start of Semester, During Semester or Semester Break")
	fl.BoolVar(&f.in.IsHoliday, "holiday", false, "the day is a public holiday")
	fl.StringVar(&f.modelPath, "model", "", "model artifact, overrides model.path")
	_ = cmd.MarkFlagRequired("hour")
	_ = cmd.MarkFlagRequired("day")
	_ = cmd.MarkFlagRequired("month")
	_ = cmd.MarkFlagRequired("temperature")
	return cmd
}

// loadModel runs the one-time model load for single-shot commands.
func loadModel(cmd *cobra.Command, opts *rootOptions, override string) (*prediction.Server, *prediction.Lifecycle, error) {
	path := opts.cfg.Model.Path
	if override != "" {
		path = override
	}
	timeout := time.Duration(opts.cfg.Model.LoadTimeoutSeconds) * time.Second
	return app.LoadPredictor(cmd.Context(), app.FileSource(path), timeout,
		prediction.WithLogger(logger.New("predictor")))
}
