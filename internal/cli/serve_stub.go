package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yildizm/loglens/internal/logger"
	"github.com/yildizm/loglens/internal/stub"
)

const shutdownTimeout = 5 * time.Second

func newServeStubCommand(s *state) *cobra.Command {
	var (
		addr  string
		delay time.Duration
	)

	cmd := &cobra.Command{
		Use:   "serve-stub",
		Short: "Run a local analysis backend for development",
		Long: `Serve /upload, /summary and /query from a keyword-based analyzer so the
client can be used without the real backend. It keeps only the most recent
upload in memory.

Use --delay to slow every response down and watch the progress steps.`,
		Example: `  loglens serve-stub
  loglens serve-stub --addr :9000 --delay 3s`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv := stub.New(
				stub.WithLogger(s.log.WithComponent("stub")),
				stub.WithDelay(delay),
			)
			return serveUntilDone(ctx, cmd, srv, addr, s.log)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8000", "listen address")
	cmd.Flags().DurationVar(&delay, "delay", 0, "artificial delay added to every response")
	return cmd
}

// serveUntilDone runs srv until ctx ends, then shuts it down gracefully
func serveUntilDone(ctx context.Context, cmd *cobra.Command, srv *stub.Server, addr string, log *logger.Logger) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(addr)
	}()

	color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Stub backend listening on %s\n", addr)
	fmt.Fprintln(cmd.ErrOrStderr(), "Press Ctrl+C to stop...")

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("stub server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down stub backend")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down stub server: %w", err)
	}
	return nil
}
