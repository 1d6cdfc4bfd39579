package main

import (
	"fmt"
	"log/slog"

	repo "github.com/alejandroviegener/g-challenge/internal/adapters/repository/postgres"
	"github.com/alejandroviegener/g-challenge/internal/adapters/source/csvfile"
	pg "github.com/alejandroviegener/g-challenge/internal/platform/db/postgres"
	"github.com/spf13/cobra"
)

func newFeedCmd(root *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "feed",
		Short: "Manage the employee_feed table used by the postgres loader source",
	}
	cmd.AddCommand(newFeedImportCmd(root))
	return cmd
}

// feed import は CSV の正しいチャンクだけを employee_feed に追記します。
func newFeedImportCmd(root *rootOptions) *cobra.Command {
	var (
		file      string
		chunkSize int
	)

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Append the rows of a CSV file to employee_feed",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Database.Validate(); err != nil {
				return err
			}

			ctx := cmd.Context()
			pool, err := pg.NewPool(ctx, cfg.Database, slog.Default())
			if err != nil {
				return err
			}
			defer pool.Close()

			feed := repo.NewFeedRepository(pool, pg.NewTransactionManager(pool))
			out := cmd.OutOrStdout()

			var copied, skipped int64
			for chunk, err := range csvfile.NewFileSource(file).Employees(ctx, chunkSize) {
				if err != nil {
					skipped++
					fmt.Fprintf(out, "skipped chunk: %v\n", err)
					continue
				}
				n, err := feed.Append(ctx, chunk)
				if err != nil {
					return fmt.Errorf("append to employee_feed: %w", err)
				}
				copied += n
			}
			if err := ctx.Err(); err != nil {
				return err
			}

			fmt.Fprintf(out, "copied %d rows into employee_feed (%d chunks skipped)\n", copied, skipped)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file with employees (required)")
	cmd.Flags().IntVar(&chunkSize, "chunk-size", 500, "rows per COPY")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
