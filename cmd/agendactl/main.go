package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandroviegener/g-challenge/internal/adapters/grpc/handler"
	"github.com/alejandroviegener/g-challenge/internal/platform/config"
	"github.com/alejandroviegener/g-challenge/internal/platform/logging"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

type rootOptions struct {
	configPath string
	addr       string
	timeout    time.Duration
	logLevel   string
}

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:           "agendactl",
		Short:         "Operate the employee agenda registry",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			slog.SetDefault(logging.New(cmd.ErrOrStderr(), opts.logLevel, "text"))
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file (defaults to CONFIG_PATH env or "+config.DefaultPath+")")
	cmd.PersistentFlags().StringVar(&opts.addr, "addr", "localhost:50051", "gRPC address of the agenda server")
	cmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for each remote call")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level (debug|info|warn|error)")

	cmd.AddCommand(
		newLoadCmd(&opts),
		newGetCmd(&opts),
		newSizeCmd(&opts),
		newInsertCmd(&opts),
		newFeedCmd(&opts),
	)
	return cmd
}

func (o *rootOptions) loadConfig() (*config.Config, error) {
	path := o.configPath
	if path == "" {
		path = config.PathFromEnv()
	}
	return config.Load(path)
}

func (o *rootOptions) dial() (*handler.AgendaClient, func() error, error) {
	conn, err := grpc.NewClient(o.addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, nil, fmt.Errorf("dial %s: %w", o.addr, err)
	}
	return handler.NewAgendaClient(conn), conn.Close, nil
}
