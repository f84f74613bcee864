package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/roach88/rkc/internal/cli"
)

// main is the entrypoint for the rkc command.
func main() {
	// Commands install their own logger; this one covers startup.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelWarn,
	})))

	if err := run(os.Args[1:]); err != nil {
		var exitErr *cli.ExitError
		if errors.As(err, &exitErr) {
			// The command has already reported the failure.
			os.Exit(exitErr.Code)
		}
		// Flag and argument errors never reach a command's formatter.
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.ExitCommandError)
	}
}

// run builds the command tree and executes it with args.
func run(args []string) error {
	cmd := cli.NewRootCommand()
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
