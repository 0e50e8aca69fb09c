package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/sophialabs/replayd/internal/app"
)

func main() {
	cfg := app.DefaultConfig()
	flag.StringVar(&cfg.RootDir, "root", cfg.RootDir, "directory of stub definition files (empty disables seeding)")
	flag.IntVar(&cfg.Port, "port", cfg.Port, "HTTP server port")
	flag.IntVar(&cfg.TraceSize, "trace-size", cfg.TraceSize, "number of request trace entries to keep")
	flag.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "log level (debug, info, warn, error)")
	flag.IntVar(&cfg.FallbackStatus, "fallback-status", cfg.FallbackStatus, "status code returned when no stub matches")
	flag.StringVar(&cfg.FallbackBody, "fallback-body", cfg.FallbackBody, "body returned when no stub matches")
	flag.Parse()

	a, err := app.New(cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize: %v\n", err)
		os.Exit(1)
	}

	if err := a.Run(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
