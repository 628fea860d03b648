// Command unitconv answers unit conversions from an equivalence table,
// either once from its arguments or interactively.
//
//	unitconv -table table.txt 2.4 meters in mm
//	unitconv -table table.txt            # prompt
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ameliorater/unit-converter/internal/config"
	"github.com/ameliorater/unit-converter/internal/engine"
	"github.com/ameliorater/unit-converter/internal/logging"
	"github.com/ameliorater/unit-converter/internal/repl"
	"github.com/ameliorater/unit-converter/internal/table"
	"github.com/ameliorater/unit-converter/internal/unitgraph"
)

func main() {
	os.Exit(run())
}

func run() int {
	configPath := flag.String("config", "", "path to config file (optional)")
	tablePath := flag.String("table", config.DefaultTablePath, "path to the equivalence table")
	list := flag.Bool("list", false, "print every known unit and exit")
	strict := flag.Bool("strict", false, "fail on the first malformed table line")
	logLevel := flag.String("log-level", config.DefaultLogLevel, "log level: debug, info, warn, error")
	logFormat := flag.String("log-format", "text", "log format: text or json")
	maxDistance := flag.Int("max-distance", config.DefaultMaxDistance, "edit distance tolerated for misspelled units (0 disables)")
	flag.Usage = func() {
		out := flag.CommandLine.Output()
		fmt.Fprintf(out, "Usage: %s [options] [--] [QUERY...]\n\n", os.Args[0])
		fmt.Fprintf(out, "Put -- before a query that starts with a negative quantity:\n  %s -- -5 m to cm\n\nOptions:\n", os.Args[0])
		flag.PrintDefaults()
	}
	flag.Parse()

	cfg := config.Default()
	cfg.Log.Format = "text"
	if *configPath != "" {
		loaded, err := config.Load(*configPath)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
		cfg = loaded
	}

	// Explicit flags win over the config file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "table":
			cfg.Table.Path = *tablePath
		case "strict":
			cfg.Table.Strict = *strict
		case "log-level":
			cfg.Log.Level = *logLevel
		case "log-format":
			cfg.Log.Format = *logFormat
		case "max-distance":
			cfg.Resolver.MaxDistance = *maxDistance
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintln(os.Stderr, "unitconv:", err)
		return 2
	}

	// Logs go to stderr so answers on stdout stay clean.
	slog.SetDefault(logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format))

	g, err := table.Load(cfg.Table.Path, unitgraph.Options{
		Strict:        cfg.Table.Strict,
		MatchDistance: cfg.Table.MatchDistance,
	})
	if err != nil {
		slog.Error("failed to load table", "path", cfg.Table.Path, "err", err)
		return 1
	}
	eng := engine.New(g, engine.Options{MaxDistance: cfg.Resolver.MaxDistance})

	if *list {
		repl.PrintUnits(os.Stdout, eng.Units())
		return 0
	}

	if flag.NArg() > 0 {
		res, err := eng.Convert(strings.Join(flag.Args(), " "))
		if err != nil {
			fmt.Println(repl.Message(err))
			return 1
		}
		fmt.Println(res)
		return 0
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := repl.Run(ctx, eng, os.Stdin, os.Stdout); err != nil {
		slog.Error("prompt stopped", "err", err)
		return 1
	}
	return 0
}
