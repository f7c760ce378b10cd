package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/kilianp07/gymcrowd/core/history"
	coremetrics "github.com/kilianp07/gymcrowd/core/metrics"
	"github.com/kilianp07/gymcrowd/core/model"
	_ "github.com/kilianp07/gymcrowd/infra/history"
	_ "github.com/kilianp07/gymcrowd/infra/metrics"
	"github.com/kilianp07/gymcrowd/jobs/backfill"
	"github.com/kilianp07/gymcrowd/pkg/export"
)

type queryFlags struct {
	since, until, status string
	degraded, failed     bool
	limit                int
}

func (f *queryFlags) register(cmd *cobra.Command) {
	fl := cmd.Flags()
	fl.StringVar(&f.since, "since", "", "oldest record, RFC3339")
	fl.StringVar(&f.until, "until", "", "newest record, RFC3339")
	fl.StringVar(&f.status, "status", "", "only Empty, Moderate or Crowded predictions")
	fl.BoolVar(&f.degraded, "degraded", false, "only predictions from the placeholder model")
	fl.BoolVar(&f.failed, "failed", false, "only failed requests")
	fl.IntVar(&f.limit, "limit", 0, "keep the most recent N records (0 = all)")
}

func (f *queryFlags) query() (history.Query, error) {
	q := history.Query{DegradedOnly: f.degraded, FailedOnly: f.failed, Limit: f.limit}
	var err error
	if f.since != "" {
		if q.Start, err = time.Parse(time.RFC3339, f.since); err != nil {
			return q, fmt.Errorf("--since: %w", err)
		}
	}
	if f.until != "" {
		if q.End, err = time.Parse(time.RFC3339, f.until); err != nil {
			return q, fmt.Errorf("--until: %w", err)
		}
	}
	if f.status != "" {
		st, err := model.ParseStatus(f.status)
		if err != nil {
			return q, err
		}
		q.Status = &st
	}
	return q, nil
}

func openStore(opts *rootOptions) (history.Store, error) {
	if !opts.cfg.History.Enabled() {
		return nil, errors.New("prediction history is disabled, set history.backend")
	}
	return history.NewStore(opts.cfg.History.ModuleConfig())
}

func newHistoryCmd(opts *rootOptions) *cobra.Command {
	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "Prediction history commands",
	}
	historyCmd.AddCommand(newHistoryExportCmd(opts), newHistoryBackfillCmd(opts))
	return historyCmd
}

func newHistoryExportCmd(opts *rootOptions) *cobra.Command {
	var (
		qf     queryFlags
		format string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored predictions as CSV or JSON",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			recs, err := store.Query(cmd.Context(), q)
			if err != nil {
				return err
			}
			return export.Records(cmd.OutOrStdout(), format, recs)
		},
	}
	qf.register(cmd)
	cmd.Flags().StringVar(&format, "format", export.FormatCSV, "output format: csv or json")
	return cmd
}

func newHistoryBackfillCmd(opts *rootOptions) *cobra.Command {
	var qf queryFlags
	cmd := &cobra.Command{
		Use:   "backfill",
		Short: "Replay stored predictions into the configured metrics sinks",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			q, err := qf.query()
			if err != nil {
				return err
			}
			if len(opts.cfg.Metrics.Sinks) == 0 {
				return errors.New("no metrics sinks configured")
			}
			sink, err := coremetrics.NewMetricsSink(opts.cfg.Metrics.Sinks)
			if err != nil {
				return err
			}
			store, err := openStore(opts)
			if err != nil {
				return err
			}
			defer store.Close()
			st, err := backfill.Backfill(cmd.Context(), store, q, sink)
			fmt.Fprintf(cmd.OutOrStdout(), "predictions: %d\nfailures: %d\nskipped: %d\n", st.Predictions, st.Failures, st.Skipped)
			return err
		},
	}
	qf.register(cmd)
	return cmd
}
