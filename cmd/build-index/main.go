// Package main provides the entry point for the index build demo.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/thebtf/docfind/internal/cli"
	"github.com/thebtf/docfind/internal/config"
	"github.com/thebtf/docfind/internal/logging"
)

func main() {
	cfg, path, err := config.Load()
	if err != nil {
		_ = logging.Setup(config.DefaultLogLevel)
		log.Warn().Err(err).Msg("Failed to load config, using defaults")
		cfg = config.Default()
	} else if err := logging.Setup(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Msg("Invalid log level, using info")
	}
	if path != "" {
		log.Debug().Str("path", path).Msg("Loaded settings")
	}

	// Only -watch runs long enough for a signal to matter.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	_, err = cli.RunBuildIndex(ctx, os.Args[1:], cfg, nil)
	if err != nil {
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			fmt.Fprintln(os.Stderr, usageErr.Error())
		} else {
			log.Error().Err(err).Msg("Index build failed")
		}
	}
	stop()
	os.Exit(cli.ExitCode(err))
}
