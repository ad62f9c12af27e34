package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/farcloser/spectag/internal/settings"
	"github.com/farcloser/spectag/version"
)

func main() {
	ctx := context.Background()

	if err := settings.Load(settings.Path()); err != nil {
		slog.Error("failed to load settings", "error", err)
		os.Exit(1)
	}

	appl := &cli.Command{
		Name:    version.Name() + "-report",
		Usage:   "Generate and summarize spectag batch reports",
		Version: version.Version() + " " + version.Commit(),
		Commands: []*cli.Command{
			reportCommand(),
			digestCommand(),
		},
	}

	if err := appl.Run(ctx, os.Args); err != nil {
		slog.Error("failed to run", "error", err)
		os.Exit(1)
	}
}
