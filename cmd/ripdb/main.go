// Package main is the entry point for the ripdb command.
//
// ripdb opens the SQLite store shared by the album ripper processes and runs
// one operation against it. Settings come from --config (YAML), a .env file,
// RIPDB_* environment variables and flags, in increasing precedence.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/roach88/ripdb/internal/cli"
)

func main() {
	os.Exit(run())
}

func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	err := cli.NewRootCommand().ExecuteContext(ctx)
	if err == nil {
		return cli.ExitSuccess
	}

	// Command failures were already reported through the output formatter.
	var exitErr *cli.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.Code
	}
	if errors.Is(err, context.Canceled) {
		return cli.ExitFailure
	}
	fmt.Fprintf(os.Stderr, "ripdb: %v\n", err)
	return cli.ExitCommandError
}
