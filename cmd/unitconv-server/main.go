package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ameliorater/unit-converter/internal/config"
	"github.com/ameliorater/unit-converter/internal/logging"
	"github.com/ameliorater/unit-converter/internal/server"
	"github.com/ameliorater/unit-converter/internal/table"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	tablePath := flag.String("table", "", "override table.path from the config file")
	logLevel := flag.String("log-level", "", "override log.level from the config file")
	logFormat := flag.String("log-format", "", "override log.format from the config file")
	flag.Parse()

	slog.SetDefault(logging.New(os.Stdout, config.DefaultLogLevel, config.DefaultLogFormat))
	slog.Info("unitconv-server starting", "config", *configPath)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err)
		os.Exit(1)
	}
	if *tablePath != "" {
		cfg.Table.Path = *tablePath
	}
	if *logLevel != "" {
		cfg.Log.Level = *logLevel
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}
	slog.SetDefault(logging.New(os.Stdout, cfg.Log.Level, cfg.Log.Format))

	slog.Info("config loaded",
		"table", cfg.Table.Path,
		"watch", cfg.Table.Watch,
		"http_port", cfg.Server.HTTPPort,
		"auth_mode", cfg.Server.Auth.Mode,
	)

	g, err := table.Load(cfg.Table.Path, unitgraph.Options{
		Strict:        cfg.Table.Strict,
		MatchDistance: cfg.Table.MatchDistance,
	})
	if err != nil {
		slog.Error("failed to load table", "path", cfg.Table.Path, "err", err)
		os.Exit(1)
	}
	slog.Info("table loaded", "units", g.Len(), "edges", g.EdgeCount(), "skipped", g.Skipped())

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := server.New(cfg, g).Run(ctx); err != nil {
		slog.Error("server stopped", "err", err)
		os.Exit(1)
	}
	slog.Info("unitconv-server shut down")
}
