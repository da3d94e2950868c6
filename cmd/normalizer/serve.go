package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"normalizer/internal/api"
)

func newServeCmd() *cobra.Command {
	var (
		port    string
		origins []string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			shutdown := setupMetrics(cmd.Context(), log)
			defer shutdown()

			if env := os.Getenv("PORT"); env != "" && !cmd.Flags().Changed("port") {
				port = env
			}

			router := api.NewRouter(api.NewHandler(log), origins)
			srv := &http.Server{
				Addr:              ":" + port,
				Handler:           router,
				ReadHeaderTimeout: 5 * time.Second,
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			errCh := make(chan error, 1)
			go func() {
				log.Infof("listening on %s", srv.Addr)
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("server: %w", err)
			case <-ctx.Done():
			}

			log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().StringVar(&port, "port", "8080", "Listen port (PORT env overrides the default)")
	cmd.Flags().StringSliceVar(&origins, "origins", nil, "Allowed CORS origins (default: any)")
	return cmd
}
