package main

import (
	"context"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/yourname/sleepreport/internal"
	"github.com/yourname/sleepreport/internal/app"
	"github.com/yourname/sleepreport/internal/cli"
	"github.com/yourname/sleepreport/internal/config"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Read(".env")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// Logs go to stderr and stay quiet unless LOG_LEVEL asks for more.
	logger := internal.NopLogger()
	if os.Getenv("LOG_LEVEL") != "" {
		if l, err := internal.NewLogger("development", cfg.LogLevel); err == nil {
			logger = l
		}
	}
	defer logger.Sync()

	ctx := context.Background()
	a, err := app.New(ctx, cfg, logger, app.Options{DisableEvents: true, DisableMetrics: true})
	if err != nil {
		return err
	}
	defer a.Close()

	root := cli.NewRootCmd(&cli.App{
		Reports: a.Reports(),
		IsTerminal: func() bool {
			return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
		},
	})
	return root.ExecuteContext(ctx)
}
