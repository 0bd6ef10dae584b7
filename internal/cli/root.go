// Package cli implements the papersearch command line.
package cli

import (
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// RootOptions holds global flags for all commands. Each may also come
// from the config file or a PAPERSEARCH_ environment variable; flags win.
type RootOptions struct {
	Verbose bool
	Format  string // "json" | "text"
	Config  string
	DB      string
	Conf    string
	User    string
	// QT is the default query type of the search command.
	QT string

	v *viper.Viper
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command for the papersearch CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{v: viper.New()}

	cmd := &cobra.Command{
		Use:   "papersearch",
		Short: "Search conference papers",
		Long: `papersearch compiles paper search queries such as

  #green OR (ti:graph -au:smith) THEN re:>2

into a liberal SQL query plus an exact per-paper test, and runs them
against a SQLite paper database as a given conference user.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.load(cmd.Root()); err != nil {
				return WrapExitError(ExitCommandError, "failed to load config", err)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			setupLogging(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	pf.StringVar(&opts.Format, "format", "text", "output format (json|text)")
	pf.StringVar(&opts.Config, "config", "", "config file (default ./papersearch.yaml if present)")
	pf.StringVar(&opts.DB, "db", "", "path to the SQLite paper database")
	pf.StringVar(&opts.Conf, "conf", "", "conference settings: a CUE file or directory")
	pf.StringVarP(&opts.User, "user", "u", "", "email of the acting user (empty: anonymous)")

	cmd.AddCommand(NewSearchCommand(opts))
	cmd.AddCommand(NewExplainCommand(opts))
	cmd.AddCommand(NewCanonicalCommand(opts))
	cmd.AddCommand(NewLoadCommand(opts))
	cmd.AddCommand(NewAssignCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}

// setupLogging installs the default text logger on w.
func setupLogging(w io.Writer, verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})))
}
