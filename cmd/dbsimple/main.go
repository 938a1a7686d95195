// Package main is the entry point for the dbsimple CLI.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/dbsimple/dbsimple-go/cmd/dbsimple/commands"
	"github.com/dbsimple/dbsimple-go/internal/ui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := commands.NewRootCommand().ExecuteContext(ctx); err != nil {
		ui.PrintError("%v", err)
		stop()
		os.Exit(1)
	}
}
