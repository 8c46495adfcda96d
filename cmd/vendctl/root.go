package main

import (
	"context"
	"io"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/ashmitsharp/vendlens-api/internal/app"
	"github.com/ashmitsharp/vendlens-api/internal/config"
	"github.com/ashmitsharp/vendlens-api/internal/logger"
)

// buildFunc wires the services for one command run
type buildFunc func(ctx context.Context, log zerolog.Logger) (*app.App, error)

// buildFromEnv loads .env and the process environment, as the API server does
func buildFromEnv(ctx context.Context, log zerolog.Logger) (*app.App, error) {
	_ = godotenv.Load()

	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	return app.Build(ctx, cfg, log)
}

type rootOptions struct {
	verbose bool
	build   buildFunc
}

// newRootCmd assembles the command tree
func newRootCmd(build buildFunc) *cobra.Command {
	opts := &rootOptions{build: build}

	root := &cobra.Command{
		Use:           "vendctl",
		Short:         "Import vending machine sales exports and inspect the results",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "Enable debug logging")

	root.AddCommand(
		newImportCmd(opts),
		newCostsCmd(opts),
		newSummaryCmd(opts),
	)
	return root
}

// open builds the app with a logger writing to the command's stderr
func (o *rootOptions) open(cmd *cobra.Command) (context.Context, *app.App, error) {
	log := newCLILogger(cmd.ErrOrStderr(), o.verbose)
	ctx := logger.WithContext(cmd.Context(), log)

	a, err := o.build(ctx, log)
	if err != nil {
		return nil, nil, err
	}
	return ctx, a, nil
}

func newCLILogger(w io.Writer, verbose bool) zerolog.Logger {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	return zerolog.New(zerolog.ConsoleWriter{Out: w, NoColor: true}).Level(level).With().Timestamp().Logger()
}
