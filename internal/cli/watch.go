package cli

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/felixgeelhaar/covergate/internal/application"
	"github.com/felixgeelhaar/covergate/internal/domain"
	"github.com/felixgeelhaar/covergate/internal/infrastructure/watcher"
)

var newWatcher = func(path string, logger *zap.Logger) (watchSource, error) {
	w, err := watcher.New(watcher.WithLogger(logger.Named("watcher")))
	if err != nil {
		return nil, err
	}
	if err := w.WatchFile(path); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

type watchSource interface {
	application.FileWatcher
	Close() error
}

// runWatch gates until interrupted. Interruption is a clean exit.
func runWatch(cmd *cobra.Command, svc Service, opts application.GateOptions, logger *zap.Logger) error {
	w, err := newWatcher(opts.Config.ReportPath, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	stdout, stderr := cmd.OutOrStdout(), cmd.ErrOrStderr()
	fmt.Fprintf(stdout, "Watching %s for changes... (Ctrl+C to stop)\n", opts.Config.ReportPath)

	callback := func(run int, _ domain.Result, runErr error) {
		fmt.Fprintf(stdout, "--- Run #%d at %s ---\n\n", run, time.Now().Format("15:04:05"))
		if runErr != nil && !errors.Is(runErr, application.ErrGateFailed) {
			fmt.Fprintf(stderr, "gate failed to run: %v\n", runErr)
		}
	}

	err = svc.Watch(ctx, opts, w, callback)
	if ctx.Err() != nil {
		fmt.Fprintln(stdout, "\nStopping watch mode...")
		return nil
	}
	return err
}
