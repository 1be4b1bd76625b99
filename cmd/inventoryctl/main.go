package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const defaultAPIURL = "http://localhost:8080"

func main() {
	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})

	flags := pflag.NewFlagSet("inventoryctl", pflag.ExitOnError)
	flags.SetInterspersed(false)
	apiURL := flags.String("api", envOr("INVENTORY_API_URL", defaultAPIURL), "inventory API base URL")
	verbose := flags.BoolP("verbose", "v", false, "log debug output")
	flags.Usage = func() {
		fmt.Fprintln(os.Stderr, usage)
		flags.PrintDefaults()
	}
	_ = flags.Parse(os.Args[1:])

	if *verbose {
		log.SetLevel(logrus.DebugLevel)
	}

	args := flags.Args()
	if len(args) == 0 {
		flags.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tokens, err := defaultTokenStore()
	if err != nil {
		log.WithError(err).Fatal("Failed to locate token file")
	}

	app := newCLI(*apiURL, tokens, os.Stdin, os.Stdout, log)
	if err := app.run(ctx, args[0], args[1:]); err != nil {
		if errors.Is(err, errReported) {
			os.Exit(1)
		}
		log.WithError(err).WithField("command", args[0]).Error("Command failed")
		os.Exit(1)
	}
}

const usage = `usage: inventoryctl [--api URL] <command> [flags]

commands:
  login [--username NAME]
  logout
  list [--search TERM] [--page N]
  add NAME COUNT
  edit NAME [--name NEW] [--total N] [--add N] [--reduce N]
  delete NAME [--yes]
  browse`

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
