// cmd/brandtrust/cmd_serve.go

package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"brandtrust/internal/config"
	"brandtrust/internal/server"
)

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the analysis HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			app, err := buildApp(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer app.close()

			httpServer := server.NewServer(
				cfg.Server,
				app.analyzer,
				app.readArchive(),
				app.events.Conn(),
			)

			errCh := make(chan error, 1)
			go func() {
				log.Info().
					Str("host", cfg.Server.Host).
					Int("port", cfg.Server.Port).
					Msg("HTTP server starting")
				if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- err
				}
			}()

			select {
			case err := <-errCh:
				return err
			case <-cmd.Context().Done():
			}

			log.Info().Msg("shutdown signal received")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
			defer cancel()
			return httpServer.Shutdown(shutdownCtx)
		},
	}
}
