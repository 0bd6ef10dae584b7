package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/papersearch/internal/store"
)

// LoadResult is the output of the load command.
type LoadResult struct {
	Fixture  string `json:"fixture"`
	Contacts int    `json:"contacts"`
	Papers   int    `json:"papers"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "load <fixture.yaml>",
		Short: "Load contacts and papers into the database",
		Long: `Load a YAML fixture of contacts and papers, with their tags, conflicts
and reviews, into the database. The database is created if needed; rows
with the same ids are replaced.

Example:
  papersearch load --db conf.db testdata/conference.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runLoad(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())
	if opts.DB == "" {
		return f.Fail(ExitCommandError, ErrCodeNoDatabase, "no database: use --db or set db in the config file", nil)
	}

	st, err := store.Open(opts.DB, store.WithLogger(slog.Default()))
	if err != nil {
		return f.Fail(ExitCommandError, ErrCodeNoDatabase, "failed to open database", err)
	}
	defer st.Close()

	fixture, err := store.ReadFixtureFile(path)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeFixture, "failed to read fixture", err)
	}
	if err := st.LoadFixture(cmd.Context(), fixture); err != nil {
		return f.Fail(ExitFailure, ErrCodeFixture, "failed to load fixture", err)
	}
	return f.Success(&LoadResult{Fixture: path, Contacts: len(fixture.Contacts), Papers: len(fixture.Papers)})
}

func (r *LoadResult) String() string {
	return fmt.Sprintf("Loaded %d contact(s) and %d paper(s) from %s", r.Contacts, r.Papers, r.Fixture)
}
