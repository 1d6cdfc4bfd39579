package main

import (
	"fmt"
	"log/slog"

	"github.com/alejandroviegener/g-challenge/internal/app"
	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/platform/config"
	pg "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"
)

type loadOptions struct {
	source    string
	csvPath   string
	batchSize int
}

// load は取り込み元を新しいインメモリ Registry に読み込み、結果だけを表示します。
func newLoadCmd(root *rootOptions) *cobra.Command {
	var opts loadOptions

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Dry-run the configured loader into a fresh in-memory registry",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := opts.apply(cfg); err != nil {
				return err
			}

			ctx := cmd.Context()
			var pool *pgxpool.Pool
			if cfg.NeedsDatabase() {
				pool, err = pg.NewPool(ctx, cfg.Database, slog.Default())
				if err != nil {
					return err
				}
				defer pool.Close()
			}

			reg := agenda.NewRegistry()
			report, err := app.Load(ctx, cfg, reg, pool, slog.Default())
			if err != nil {
				return err
			}
			if report == nil {
				fmt.Fprintln(cmd.OutOrStdout(), "no loader source configured")
				return nil
			}

			size := reg.Size()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run_id:      %s\n", report.RunID)
			fmt.Fprintf(out, "batches:     %d (succeeded %d, failed %d, unreadable %d)\n",
				report.Batches, report.Succeeded, report.Failed, report.Unreadable)
			fmt.Fprintf(out, "inserted:    %d\n", report.Inserted)
			fmt.Fprintf(out, "registry:    %d employees, %d jobs, %d departments\n",
				size.Employees, size.Jobs, size.Departments)
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.source, "source", "", "override loader.source (csv|postgres)")
	cmd.Flags().StringVar(&opts.csvPath, "csv", "", "CSV file to load (implies --source csv)")
	cmd.Flags().IntVar(&opts.batchSize, "batch-size", 0, "override loader.batch_size")
	return cmd
}

func (o loadOptions) apply(cfg *config.Config) error {
	if o.csvPath != "" {
		cfg.Loader.Source = config.SourceCSV
		cfg.Loader.CSVPath = o.csvPath
	}
	if o.source != "" {
		cfg.Loader.Source = o.source
	}
	if o.batchSize > 0 {
		cfg.Loader.BatchSize = o.batchSize
	}
	if cfg.Loader.Source == config.SourceCSV && cfg.Loader.CSVPath == "" {
		return fmt.Errorf("--csv is required for the csv source")
	}
	if cfg.NeedsDatabase() {
		return cfg.Database.Validate()
	}
	return nil
}
