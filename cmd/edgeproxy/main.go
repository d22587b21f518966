package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ashpect/edgeproxy/pkg/config"
	"github.com/ashpect/edgeproxy/pkg/server"
	"github.com/ashpect/edgeproxy/pkg/utils"
)

// this is set by the release build
var version string

func main() {
	if version == "" {
		version = "DEV"
	}

	if err := newRootCmd().Execute(); err != nil {
		var cfgErr *config.ConfigError
		if errors.As(err, &cfgErr) {
			fmt.Fprintf(os.Stderr, "Configuration error: %s\n", cfgErr.Msg)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configFile string

	root := &cobra.Command{
		Use:           "edgeproxy",
		Short:         "Caching reverse proxy for a single upstream API",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadConfig(configFile)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}
	root.Flags().StringVarP(&configFile, "config", "c", "", "optional TOML config file (environment variables take precedence)")

	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), version)
		},
	})
	return root
}

func run(parent context.Context, cfg *config.SystemCfg) error {
	logger, closeLog, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Version:    version,
	})
	if err != nil {
		return &config.ConfigError{Key: "LOG_LEVEL", Msg: err.Error()}
	}
	defer closeLog()

	logger.Info().Msgf("Starting edgeproxy %s", version)
	logger.Info().Str("upstream", cfg.Proxy.UpstreamURL).Msg("Upstream")
	logger.Info().Int("ttl_seconds", cfg.Cache.TTLSeconds).Int("max_capacity", cfg.Cache.MaxCapacity).Msg("Cache")

	srv, err := server.New(cfg, logger)
	if err != nil {
		return err
	}
	defer srv.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.ListenAndServe(ctx)
}
