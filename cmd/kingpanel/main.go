package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aussiebroadwan/kingpanel/internal/kingpanel/app"
)

func main() {
	os.Exit(run())
}

func run() int {
	flags := flag.NewFlagSet("kingpanel", flag.ContinueOnError)
	configPath := flags.String("config", "", "path to a YAML config file (default $"+app.ConfigPathEnv+")")
	flags.Usage = func() {
		app.Usage(flags.Output())
		fmt.Fprintln(flags.Output(), "\nflags:")
		flags.PrintDefaults()
	}
	if err := flags.Parse(os.Args[1:]); err != nil {
		return 2
	}

	cfg, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kingpanel: %v\n", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	application, err := app.New(ctx, cfg, os.Stdout, os.Stderr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "kingpanel: failed to initialize: %v\n", err)
		return 1
	}
	defer func() {
		if err := application.Close(); err != nil {
			application.Logger().Error("shutdown failed", "error", err)
		}
	}()

	if err := application.Run(ctx, flags.Args()); err != nil {
		if errors.Is(err, app.ErrUsage) {
			fmt.Fprintf(os.Stderr, "kingpanel: %v\n\n", err)
			app.Usage(os.Stderr)
			return 2
		}
		application.Logger().Error("command failed", "error", err)
		return 1
	}

	return 0
}
