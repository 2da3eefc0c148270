// Package cli exposes the roster screens as cobra commands.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/noah-isme/student-roster/internal/app"
	"github.com/noah-isme/student-roster/pkg/config"
	"github.com/noah-isme/student-roster/pkg/logger"
)

// Opener builds the application container for one command invocation.
type Opener func(ctx context.Context) (*app.App, error)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"

	open Opener
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// DefaultOpener loads configuration from the environment and opens the
// configured record store.
func DefaultOpener(ctx context.Context) (*app.App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	return app.New(ctx, cfg, logr)
}

// NewRootCommand creates the root command for the roster CLI.
func NewRootCommand(open Opener) *cobra.Command {
	if open == nil {
		open = DefaultOpener
	}
	opts := &RootOptions{open: open}

	cmd := &cobra.Command{
		Use:   "roster",
		Short: "Manage the student roster",
		Long:  "List, add, edit, delete and export students kept in the configured record store.",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewEditCommand(opts))
	cmd.AddCommand(NewDeleteCommand(opts))
	cmd.AddCommand(NewExportCommand(opts))
	cmd.AddCommand(NewServeCommand(opts))

	return cmd
}

func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}

// withApp opens the container, runs fn and releases the store afterwards.
func withApp(cmd *cobra.Command, opts *RootOptions, fn func(a *app.App, out *OutputFormatter) error) error {
	out := newFormatter(opts, cmd)
	a, err := opts.open(cmd.Context())
	if err != nil {
		_ = out.Error("STARTUP_ERROR", err.Error(), nil)
		return WrapExitError(ExitCommandError, "failed to open roster", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil {
			out.VerboseLog("close store: %v", cerr)
		}
		if a.Logger != nil {
			_ = a.Logger.Sync()
		}
	}()
	return fn(a, out)
}
