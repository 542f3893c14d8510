// Package main is the fakie server and admin CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"fakie/cmd/internal/command"
)

func main() { os.Exit(run()) }

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command.RootCommand().ExecuteContext(ctx); err != nil {
		return 1
	}
	return 0
}
