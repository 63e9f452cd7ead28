package cmd

import (
	"context"
	"errors"
	"net"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/manav03panchal/studylog/internal/api"
	"github.com/manav03panchal/studylog/internal/logging"
)

// Serve command flags.
var serveFlagAddr string

// serveCmd represents the serve command.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve records over HTTP",
	Long: `Serve the configured repository over a JSON HTTP API. Another studylog
can use it with --backend remote and remote_url set to this address.

Routes:
  GET    /health
  GET    /metrics
  GET    /records
  POST   /records
  PUT    /records/{id}
  DELETE /records/{id}

Examples:
  studylog serve
  studylog serve --addr :8080 --backend sqlite`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveFlagAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	addr := ctx.Config.Server.ListenAddr
	if serveFlagAddr != "" {
		addr = serveFlagAddr
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Handler:           api.NewRouter(ctx.Repo, ctx.Metrics.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return cmd.Context() },
	}

	if !ctx.IsJSON() {
		ctx.CLIFormatter().Success("Listening on http://" + ln.Addr().String())
	}
	logging.Info("server started", "addr", ln.Addr().String(), logging.KeyBackend, ctx.Config.Storage.Backend)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-cmd.Context().Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), ctx.Config.Server.ShutdownTimeout)
	defer cancel()
	logging.Info("server stopping")
	return srv.Shutdown(shutdownCtx)
}
