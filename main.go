// validflux — InfluxDB backup validation tool.
// Inspects backup directories and archives and reports whether they are
// structurally sufficient to drive a restore.
package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rotblauer/ValidFlux/cmd"
	"github.com/rotblauer/ValidFlux/internal/config"
	"github.com/rotblauer/ValidFlux/internal/exitcode"
	"github.com/rotblauer/ValidFlux/internal/logger"
)

// Build information (set by ldflags)
var (
	version   = "1.2.0"
	buildTime = "unknown"
	gitCommit = "unknown"
)

func main() {
	// Cancel on interrupt so a half-read archive handle is released cleanly
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg := config.New()
	cfg.Version = version
	cfg.BuildTime = buildTime
	cfg.GitCommit = gitCommit

	logLevel := cfg.LogLevel
	if cfg.Debug && logLevel != "debug" {
		logLevel = "debug"
	}
	log := logger.New(logLevel, cfg.LogFormat)

	if err := cmd.Execute(ctx, cfg, log); err != nil {
		// a failed validation already rendered its report
		if !errors.Is(err, cmd.ErrValidationFailed) {
			log.Error("validflux failed", "error", err)
		}
		os.Exit(exitcode.FromError(err))
	}
}
