package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gymcrowd/core/model"
	"github.com/kilianp07/gymcrowd/core/scheduler"
	"github.com/kilianp07/gymcrowd/pkg/export"
)

func newForecastCmd(opts *rootOptions) *cobra.Command {
	var (
		date, hoursFile, format, modelPath string
		cond                               scheduler.Conditions
	)
	cmd := &cobra.Command{
		Use:   "forecast",
		Short: "Forecast every opening hour of a day and suggest quiet times",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			day := time.Now()
			if date != "" {
				d, err := time.ParseInLocation(time.DateOnly, date, time.Local)
				if err != nil {
					return fmt.Errorf("--date must be YYYY-MM-DD: %w", err)
				}
				day = d
			}
			hours := opts.cfg.Planner
			if hoursFile != "" {
				h, err := scheduler.LoadConfig(hoursFile)
				if err != nil {
					return fmt.Errorf("opening hours: %w", err)
				}
				hours = h
			}
			srv, _, err := loadModel(cmd, opts, modelPath)
			if err != nil {
				return err
			}
			s := scheduler.Scheduler{Config: hours, Predictor: srv}
			plan, err := s.GeneratePlan(day, cond)
			if err != nil {
				return err
			}
			if plan.Degraded {
				fmt.Fprintf(cmd.ErrOrStderr(), "warning: model unavailable, forecast comes from the placeholder model (%v)\n", srv.Health().Error)
			}
			if format == "table" {
				return writePlanTable(cmd.OutOrStdout(), plan)
			}
			return export.Plan(cmd.OutOrStdout(), format, plan)
		},
	}
	fl := cmd.Flags()
	fl.StringVar(&date, "date", "", "day to forecast, YYYY-MM-DD (default today)")
	fl.Float64Var(&cond.Temperature, "temperature", 0, "expected temperature in degrees Fahrenheit")
	fl.StringVar(&cond.SemesterStatus, "semester", model.SemesterDuring, "Start of Semester, During Semester or Semester Break")
	fl.BoolVar(&cond.IsHoliday, "holiday", false, "the day is a public holiday")
	fl.StringVar(&hoursFile, "hours", "", "opening hours file (JSON or YAML), overrides planner settings")
	fl.StringVar(&format, "format", "table", "output format: table, json or csv")
	fl.StringVar(&modelPath, "model", "", "model artifact, overrides model.path")
	_ = cmd.MarkFlagRequired("temperature")
	return cmd
}

func writePlanTable(w io.Writer, plan scheduler.Plan) error {
	fmt.Fprintf(w, "%s %s\n", plan.Day, plan.Date.Format(time.DateOnly))
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "HOUR\tCOUNT\tSTATUS")
	for _, s := range plan.Slots {
		fmt.Fprintf(tw, "%02d:00\t%d\t%s\n", s.Hour, s.Count, s.Status)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	for _, s := range plan.Suggested {
		fmt.Fprintf(w, "suggested: %02d:00 (%s)\n", s.Hour, s.Status.Message())
	}
	return nil
}
