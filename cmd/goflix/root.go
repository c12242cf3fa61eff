package main

import (
	"fmt"

	appctx "github.com/bassista/go_flix/internal/app"
	"github.com/bassista/go_flix/internal/config"
	"github.com/bassista/go_flix/internal/logger"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	confPath string
	logLevel string
	output   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "goflix",
		Short:         "Movie discovery backend over the TMDB API",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.confPath, "config", "./config", "directory containing config.yaml")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "log level (overrides configuration)")
	cmd.PersistentFlags().StringVarP(&opts.output, "output", "o", "table", "output format for query commands: table or json")

	cmd.AddCommand(
		newServeCmd(opts),
		newTrendingCmd(opts),
		newSearchCmd(opts),
		newMovieCmd(opts),
		newFavoritesCmd(opts),
	)
	return cmd
}

// loadApp reads the configuration, applies the log level and builds the services.
// The caller owns the returned App and must call Shutdown.
func loadApp(opts *rootOptions) (*appctx.App, error) {
	cfg, err := config.LoadConfig(opts.confPath)
	if err != nil {
		return nil, fmt.Errorf("configuration error: %w", err)
	}

	level := cfg.Misc.LogLevel
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	if err := logger.SetLevel(level); err != nil {
		logger.WithComponent("main").Warnf("invalid log level '%s', keeping '%s'", level, logger.Logger.GetLevel())
	}

	app, err := appctx.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("cannot init app: %w", err)
	}
	return app, nil
}
