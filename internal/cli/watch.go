package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/roach88/rkc/internal/database"
)

// WatchOptions holds flags for the watch command.
type WatchOptions struct {
	*RootOptions
	TermOptions
}

// NewWatchCommand creates the watch command.
func NewWatchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &WatchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "watch <database>",
		Short: "Recompile a mixing term whenever the database changes",
		Long: `Compile a mixing term, then recompile it each time a .cue file of the
database is written. Runs until interrupted.

Examples:
  rkc watch ./alni.cue --phase LIQUID --components AL,NI --type L
  rkc watch ./db --phase FCC_A1 --components AL,NI,VA`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runWatch(ctx, opts, args[0], cmd)
		},
	}

	addTermFlags(cmd, &opts.TermOptions, false)

	return cmd
}

func runWatch(ctx context.Context, opts *WatchOptions, path string, cmd *cobra.Command) error {
	w := cmd.OutOrStdout()
	logger := opts.logger(cmd)

	rebuild := func() error {
		term, err := assembleTerm(ctx, &opts.TermOptions, path, logger)
		if err != nil {
			fmt.Fprintf(w, "✗ %s: %v\n", errorCode(err), err)
			return err
		}
		fmt.Fprintf(w, "✓ %s: %d parameter(s), %d row(s), %d symbolic\n",
			term.Phase, len(term.Parameters), term.Matrix.Len(), len(term.Matrix.Symbolic))
		return nil
	}

	if err := watchDatabase(ctx, path, rebuild, logger); err != nil {
		return WrapExitError(ExitCommandError, database.ErrCodeGeneric, err)
	}
	return nil
}

// watchDatabase calls rebuild once, then again for every write to a .cue
// file under path. A failed rebuild is logged and watching continues.
// Returns nil when ctx is done.
func watchDatabase(ctx context.Context, path string, rebuild func() error, logger *slog.Logger) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	dir, only := path, ""
	if !info.IsDir() {
		dir, only = filepath.Dir(path), filepath.Clean(path)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return err
	}

	if err := rebuild(); err != nil {
		logger.Warn("build failed", "path", path, "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			if !strings.HasSuffix(event.Name, ".cue") {
				continue
			}
			if only != "" && filepath.Clean(event.Name) != only {
				continue
			}
			logger.Debug("database changed", "file", event.Name, "op", event.Op.String())
			if err := rebuild(); err != nil {
				logger.Warn("rebuild failed", "file", event.Name, "error", err)
			}
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watcher error", "error", err)
		}
	}
}
