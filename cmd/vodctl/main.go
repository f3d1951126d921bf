package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/blakestevenson/vodboard/internal/catalog"
	"github.com/blakestevenson/vodboard/internal/config"
	"github.com/blakestevenson/vodboard/internal/logging"
	"github.com/blakestevenson/vodboard/internal/secrets"
	"github.com/blakestevenson/vodboard/internal/servers"
	"github.com/blakestevenson/vodboard/internal/status"
	"github.com/blakestevenson/vodboard/internal/storage"
	"github.com/blakestevenson/vodboard/internal/xtream"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// app holds what every subcommand needs, built once before the command runs
type app struct {
	cfg       *config.Config
	logger    *zap.Logger
	backend   *storage.Backend
	servers   servers.Service
	checker   *status.Checker
	newClient xtream.Factory
	pipeline  catalog.Pipeline
}

var (
	verbose bool
	state   app
)

var rootCmd = &cobra.Command{
	Use:   "vodctl",
	Short: "vodctl browses stored IPTV panels and writes aria2c download lists",
	Long: `vodctl works against the same database as the vodboard server. It lists stored
panels, re-checks their status, searches their VOD catalogs and writes aria2c
command files for selected movies.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if state.backend != nil {
			state.backend.Close()
		}
		if state.logger != nil {
			_ = state.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log progress to stderr")
	rootCmd.AddCommand(serversCmd, categoriesCmd, moviesCmd, exportCmd)
}

func setup(cmd *cobra.Command, args []string) error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	sugar, err := logging.NewCLILogger(verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	logger := sugar.Desugar()

	backend, err := storage.Open(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}

	key, err := cfg.CredentialKeyBytes()
	if err != nil {
		backend.Close()
		return err
	}
	box, err := secrets.NewBox(key)
	if err != nil {
		backend.Close()
		return err
	}

	newClient := xtream.NewFactory(
		xtream.WithHTTPClient(&http.Client{Timeout: cfg.XtreamTimeout}),
		xtream.WithUserAgent(cfg.XtreamUserAgent),
		xtream.WithRateLimit(cfg.XtreamRateLimit),
		xtream.WithLogger(logger),
	)
	prober := status.NewProber(newClient, logger)
	svc := servers.NewService(backend.Servers, box, prober, backend.Audit, logger)

	state = app{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		servers:   svc,
		checker:   status.NewChecker(svc, prober, backend.Audit, logger, 0),
		newClient: newClient,
		pipeline: catalog.Pipeline{
			Search: catalog.SearchOptions{Threshold: cfg.SearchThreshold, Distance: cfg.SearchDistance},
			Locale: cfg.Locale(),
		},
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
