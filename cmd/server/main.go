package main

import (
	"context"
	"log"
	"os"

	"github.com/dmitrijs2005/newsinsight/internal/buildinfo"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/logging"
	"github.com/dmitrijs2005/newsinsight/internal/server"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	ctx := context.Background()
	cfg := config.LoadConfig()

	logger, err := logging.New(cfg.LogBackend)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := server.NewApp(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	if err := app.Run(ctx); err != nil {
		log.Printf("%v", err)
	}
}
