package main

import (
	"context"
	"log"

	"burrow/internal/app"
	"burrow/pkg/config"
	"burrow/pkg/shutdown"
)

// build metadata - set via ldflags during build/release
var version = "dev"

func main() {
	flags := config.ParseConfigFlags()
	cfg, err := config.LoadEffective(flags)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	a, err := app.New(cfg, version)
	if err != nil {
		shutdown.Abort("startup failed", err, cfg.Server.DBPath)
	}

	ctx, cancel := shutdown.SetupSignalHandler(context.Background())
	defer cancel()

	if err := a.Run(ctx); err != nil {
		shutdown.Abort("server failed", err, cfg.Server.DBPath)
	}
}
