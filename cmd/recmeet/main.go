package main

import (
	"fmt"
	"os"

	"github.com/petems/recmeet/internal/cli"
	"github.com/petems/recmeet/internal/config"
	"github.com/petems/recmeet/internal/logging"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	deps := &cli.Dependencies{
		Config: cfg,
		Log:    logging.New(cfg.General.LogLevel),
	}

	return cli.NewRootCmd(deps).Execute()
}
