package server

import (
	"context"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/api/router"
	"github/chapool/go-trader/internal/config"
	"github/chapool/go-trader/internal/util/command"
)

func New() *cobra.Command {
	return &cobra.Command{
		Use:   "server",
		Short: "Starts the HTTP server",
		Long: `Starts the HTTP server serving the trade and delegate API.
Stops gracefully on SIGINT/SIGTERM, background confirmations are cancelled.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.DefaultEngineConfigFromEnv()
			if err := command.PromptPassword(&cfg); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return command.WithServer(ctx, cfg, run)
		},
	}
}

func run(ctx context.Context, s *api.Server) error {
	router.Init(s)

	errs := make(chan error, 1)
	go func() {
		if err := s.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errs <- err
		}
		close(errs)
	}()

	log.Info().Str("address", s.Config.Echo.ListenAddress).Msg("Server started")

	select {
	case err := <-errs:
		if err != nil {
			log.Error().Err(err).Msg("Failed to start server")
		}
		return err
	case <-ctx.Done():
		log.Info().Msg("Received shutdown signal")
		return nil
	}
}
