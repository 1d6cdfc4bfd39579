package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandroviegener/g-challenge/internal/adapters/grpc/handler"
	"github.com/alejandroviegener/g-challenge/internal/adapters/source/csvfile"
	"github.com/alejandroviegener/g-challenge/internal/adapters/telemetry"
	"github.com/alejandroviegener/g-challenge/internal/core/agenda"
	"github.com/alejandroviegener/g-challenge/internal/core/loader"
	"github.com/spf13/cobra"
)

// remoteInserter は gRPC 越しに InsertBatch を呼び出す loader.BatchInserter です。
type remoteInserter struct {
	client  *handler.AgendaClient
	timeout func() (context.Context, context.CancelFunc)
}

func (r remoteInserter) InsertBatch(batch []agenda.Employee) error {
	ctx, cancel := r.timeout()
	defer cancel()
	return r.client.InsertBatch(ctx, batch)
}

func newInsertCmd(root *rootOptions) *cobra.Command {
	var (
		file      string
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "insert",
		Short: "Send a CSV file to the server in batches",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			client, closeConn, err := root.dial()
			if err != nil {
				return err
			}
			defer closeConn()

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			dst := remoteInserter{
				client: client,
				timeout: func() (context.Context, context.CancelFunc) {
					return context.WithTimeout(ctx, root.timeout)
				},
			}
			tel := telemetry.NewFanout(loader.TelemetryFunc(func(message string) {
				fmt.Fprintln(out, message)
			}))

			report, err := loader.NewService(slog.Default(), nil).Run(ctx, csvfile.NewFileSource(file), dst, tel, batchSize)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "inserted %d employees in %d of %d batches\n", report.Inserted, report.Succeeded, report.Batches)
			return nil
		},
	}

	cmd.Flags().StringVar(&file, "file", "", "CSV file with employees (required)")
	cmd.Flags().IntVar(&batchSize, "batch-size", loader.DefaultBatchSize, "employees per InsertBatch call")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}
