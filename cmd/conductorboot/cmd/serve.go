package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/Aman-CERP/conductorboot/internal/output"
)

func newServeCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Resolve modules and keep the embedded index engine running",
		Long: `Resolve the runtime modules like 'resolve', then keep the embedded
index engine serving until interrupted (SIGINT or SIGTERM).

Only the MEMORY backend starts the embedded engine; for other backends
serve prints the resolution and exits.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, dir)
		},
	}

	cmd.Flags().StringVar(&dir, "dir", ".", "Project directory")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, dir string) error {
	b, err := newBoot(cmd, dir)
	if err != nil {
		return err
	}
	defer b.shutdown()

	res, err := b.resolve(ctx)
	if err != nil {
		return err
	}

	out := output.New(cmd.OutOrStdout())
	writeResolution(out, b, res)
	out.Newline()

	if !res.Bootstrapped {
		out.Status("💡", "Embedded index engine not running, nothing to serve")
		return nil
	}

	out.Statusf("🔍", "Embedded index engine serving on %s (Ctrl+C to stop)", b.engine.Addr())

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		select {
		case <-b.engine.Done():
			if err := b.engine.Err(); err != nil {
				return fmt.Errorf("embedded index engine stopped: %w", err)
			}
			return nil
		case <-gctx.Done():
			return nil
		}
	})
	g.Go(func() error {
		<-gctx.Done()
		b.logger.Info("shutting down", slog.String("reason", context.Cause(gctx).Error()))
		b.shutdown()
		return nil
	})

	return g.Wait()
}
