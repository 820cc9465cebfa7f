package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/goccy/go-json"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/go-trader/internal/api"
	"github/chapool/go-trader/internal/config"
	"golang.org/x/term"
)

const shutdownTimeout = 30 * time.Second

// NewSubcommandGroup returns a command that only groups its subcommands and prints help
// when called on its own.
func NewSubcommandGroup(use string, subcommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   use,
		Short: fmt.Sprintf("%s related subcommands", use),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subcommands...)

	return cmd
}

// SetupLogger configures the global zerolog logger from config.
func SetupLogger(cfg config.Engine) {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(cfg.Logger.Level)

	if cfg.Logger.PrettyPrintConsole {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: "15:04:05"})
	}

	if cfg.Logger.Caller {
		log.Logger = log.With().Caller().Logger()
	}
}

// PromptPassword asks for the delegate password on the terminal if none is configured.
// Without a terminal the config is left untouched and the delegate stays locked.
func PromptPassword(cfg *config.Engine) error {
	if cfg.Delegate.Password != "" {
		return nil
	}

	fd := int(os.Stdin.Fd()) //nolint:gosec
	if !term.IsTerminal(fd) {
		return nil
	}

	fmt.Fprint(os.Stderr, "Delegate password: ")
	pw, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return errors.Wrap(err, "failed to read password")
	}

	cfg.Delegate.Password = string(pw)

	return nil
}

// WithServer initializes a server from cfg, runs fn and shuts the server down afterwards.
// The error of fn is returned as is.
func WithServer(ctx context.Context, cfg config.Engine, fn func(ctx context.Context, s *api.Server) error) error {
	SetupLogger(cfg)

	if err := cfg.Validate(); err != nil {
		log.Error().Err(err).Msg("Refusing to start with invalid config")
		return err
	}

	s, err := api.InitNewServer(ctx, cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return err
	}

	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(shutdownCtx); len(errs) > 0 {
			log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		}
	}()

	return fn(ctx, s)
}

// PrintJSON writes v as indented JSON to w.
func PrintJSON(w io.Writer, v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode output")
	}

	_, err = fmt.Fprintln(w, string(b))

	return err
}
