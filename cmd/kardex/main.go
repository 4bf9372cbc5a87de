// Package main provides the entry point for the kardex CLI tool.
package main

import (
	"context"
	"os"
	"time"

	"github.com/kardexlabs/kardex/cmd/kardex/app"
	"github.com/kardexlabs/kardex/cmd/kardex/cmd"
)

// Version information populated by goreleaser.
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	application, err := app.New(version, commit, date)
	if err != nil {
		app.ExitOnError(err)
	}

	ctx, cancel := app.ContextWithSignals(context.Background())
	defer cancel()

	rootCmd := cmd.NewRootCommand(application)
	rootCmd.SetArgs(os.Args[1:])
	runErr := rootCmd.ExecuteContext(ctx)

	// Always flush the session, with a fresh context in case the signal
	// context is already cancelled.
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := application.Shutdown(shutdownCtx); err != nil {
		application.Logger().Error().Err(err).Msg("shutdown error")
	}

	app.ExitOnError(runErr)
}
