package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/newsinsight/internal/cli"
	"github.com/dmitrijs2005/newsinsight/internal/config"
	"github.com/dmitrijs2005/newsinsight/internal/flagx"
)

func main() {

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg := config.LoadConfig()

	// Configuration flags were consumed by LoadConfig; cobra sees the rest.
	args := flagx.StripArgs(os.Args[1:], append(append([]string{}, config.FlagNames...), flagx.ConfigFileFlagNames...))

	app := cli.NewApp(cfg, os.Stdin, os.Stdout, os.Stderr)
	err := app.Execute(ctx, args)
	if cerr := app.Close(); err == nil {
		err = cerr
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
