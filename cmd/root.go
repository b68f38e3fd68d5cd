// Package cmd implements the validflux command line interface.
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rotblauer/ValidFlux/internal/config"
	"github.com/rotblauer/ValidFlux/internal/logger"
)

// Shared state for all commands, set by Execute
var (
	cfg *config.Config
	log logger.Logger
)

var rootCmd = &cobra.Command{
	Use:   "validflux",
	Short: "Validate InfluxDB backups for restore readiness",
	Long: `validflux inspects an InfluxDB backup — a directory or a tar archive —
and determines whether it is structurally sufficient to drive a restore,
without performing one.

Supports all three backup format generations:
  1.x legacy:   meta.00, db.rp.shard.index files
  1.x portable: <ts>.manifest, <ts>.meta, <ts>.s<N>.tar.gz
  2.x:          manifest.json, bolt/kv, shard dirs with .tsm/.wal files`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		applyPersistentFlags()
		if cfg.NoColor {
			logger.DisableColors()
		}
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&persistentLogLevel, "log-level", "", "Log level (debug, info, warn, error)")
	pf.StringVar(&persistentLogFormat, "log-format", "", "Log format (text, json)")
	pf.BoolVar(&persistentNoColor, "no-color", false, "Disable colored output")
	pf.BoolVar(&persistentDebug, "debug", false, "Enable debug logging")
}

var (
	persistentLogLevel  string
	persistentLogFormat string
	persistentNoColor   bool
	persistentDebug     bool
)

// Execute runs the CLI with the given configuration and logger.
func Execute(ctx context.Context, c *config.Config, l logger.Logger) error {
	cfg = c
	log = l

	return rootCmd.ExecuteContext(ctx)
}

// applyPersistentFlags folds parsed persistent flags into cfg and rebuilds
// the logger when they change its behavior.
func applyPersistentFlags() {
	if persistentLogLevel != "" {
		cfg.LogLevel = persistentLogLevel
	}
	if persistentLogFormat != "" {
		cfg.LogFormat = persistentLogFormat
	}
	if persistentNoColor {
		cfg.NoColor = true
	}
	if persistentDebug {
		cfg.Debug = true
		cfg.LogLevel = "debug"
	}
	log = logger.New(cfg.LogLevel, cfg.LogFormat)
}

// versionString formats the build identity for the version command.
func versionString() string {
	return fmt.Sprintf("validflux %s (built %s, commit %s)", cfg.Version, cfg.BuildTime, cfg.GitCommit)
}
