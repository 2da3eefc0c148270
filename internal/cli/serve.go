package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/internal/handler"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the roster HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, rootOpts, func(a *app.App, out *OutputFormatter) error {
				if cmd.Flags().Changed("port") {
					a.Config.Port = port
				}
				ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
				defer stop()
				if err := Serve(ctx, a); err != nil {
					return WrapExitError(ExitCommandError, "server failed", err)
				}
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "listen port (default from PORT)")
	return cmd
}

// Serve runs the HTTP API until ctx is cancelled, then shuts down gracefully.
func Serve(ctx context.Context, a *app.App) error {
	router := handler.NewRouter(a.Config, a.Logger, a.RouterDeps())
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.Config.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.Info("server starting",
			zap.String("addr", srv.Addr),
			zap.String("env", a.Config.Env),
			zap.String("store", a.Config.Store.Driver),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err, ok := <-errCh:
		if ok {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	a.Logger.Info("server shutting down")
	return srv.Shutdown(shutdownCtx)
}
