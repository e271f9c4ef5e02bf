package commands

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/ncobase/docpage/config"
	"github.com/ncobase/docpage/server"
	"github.com/spf13/cobra"
)

// NewServeCommand creates the serve command
func NewServeCommand(configFile *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve cursor-paged JSON over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			cfg, err := config.LoadConfig(*configFile)
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			app, cleanup, err := initApp(ctx, cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			return runServer(ctx, app, newHTTPServer(app))
		},
	}
	return cmd
}

func newHTTPServer(app *App) *http.Server {
	if app.Config.RunMode == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	h := server.NewHandler(app.Backend.Source, app.Config.Source.OrderBy, app.Logger)
	sc := app.Config.Server
	return &http.Server{
		Addr:         net.JoinHostPort(sc.Host, strconv.Itoa(sc.Port)),
		Handler:      server.NewRouter(h, app.Logger),
		ReadTimeout:  sc.ReadTimeout,
		WriteTimeout: sc.WriteTimeout,
	}
}

// runServer serves until ctx is done, then shuts down gracefully.
func runServer(ctx context.Context, app *App, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		app.Logger.Infof(ctx, "listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), app.Config.Server.ShutdownTimeout)
	defer cancel()
	app.Logger.Info(shutdownCtx, "shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown: %w", err)
	}
	return nil
}
