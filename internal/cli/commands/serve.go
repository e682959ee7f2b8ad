package commands

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conduit-lang/entitymeta/internal/web/api"
	"github.com/conduit-lang/entitymeta/internal/web/server"
)

func newServeCommand(a *app) *cobra.Command {
	var (
		addr      string
		profiling bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve entity metadata over HTTP",
		Long: `Start the read-only HTTP API:

  GET /healthz
  GET /entities
  GET /entities/{name}
  GET /entities/{name}/ddl?dialect=postgres|sqlite

--pprof adds the runtime profiles under /debug/pprof. The server stops
gracefully on SIGINT or SIGTERM.

Examples:
  entitymeta serve
  entitymeta serve --addr :9090`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.config.Addr()
			}

			router := api.NewRouter(api.Deps{
				Catalog:   a.registry,
				Factory:   a.factory,
				Logger:    a.logger,
				Version:   Version,
				Profiling: profiling,
			})

			srv, err := server.New(server.DefaultConfig(addr, router), a.logger)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return runServer(ctx, srv)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.host:server.port from config)")
	cmd.Flags().BoolVar(&profiling, "pprof", false, "Serve net/http/pprof under /debug/pprof")

	return cmd
}

// Replaced in tests
var runServer = func(ctx context.Context, srv *server.Server) error {
	return srv.Run(ctx)
}
