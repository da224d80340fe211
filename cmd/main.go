// Command equilift runs one salary-equity analysis batch: it generates or
// loads a population, classifies it against peer medians, costs the
// remediation strategies, runs the manager budget pass, and writes the full
// result to stdout.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"gopkg.in/yaml.v3"

	service "github.com/okian/equilift/internal/app"
	"github.com/okian/equilift/internal/config"
	"github.com/okian/equilift/pkg/logger"
)

func main() {
	os.Exit(run())
}

func run() int {
	format := flag.String("format", "json", "output format: json or yaml")
	flag.Parse()

	if err := logger.Init(); err != nil {
		// Use stderr directly since the logger isn't available yet.
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return 1
	}
	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load()
	if err != nil {
		log.Error(ctx, "failed to load config", logger.Error(err))
		return 1
	}

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info",
			logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc, err := service.New(cfg, service.WithLogger(log))
	if err != nil {
		log.Error(ctx, "failed to build service", logger.Error(err))
		return 1
	}

	result, err := svc.Run(ctx)
	if err != nil {
		log.Error(ctx, "analysis run failed", logger.Error(err))
		return 1
	}

	if err := write(result, *format); err != nil {
		log.Error(ctx, "failed to write result", logger.Error(err))
		return 1
	}
	return 0
}

func write(result *service.Result, format string) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		defer enc.Close() //nolint:errcheck
		return enc.Encode(result)
	default:
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}
}
