package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
)

// ExplainResult is the output of the explain command.
type ExplainResult struct {
	Q     string          `json:"q"`
	Limit string          `json:"limit"`
	Term  json.RawMessage `json:"term"`
	// SQL is empty when the query cannot match and no statement would run.
	SQL  string `json:"sql,omitempty"`
	Args []any  `json:"args,omitempty"`
}

// NewExplainCommand creates the explain command.
func NewExplainCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "explain <query>",
		Short: "Show how a query compiles",
		Long: `Show the compiled term tree of a query, limit included, and the SQL
statement that fetches its candidate papers. Nothing is evaluated.

Example:
  papersearch explain --db conf.db -u chair@example.org -t s 'ti:graph OR #green'`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExplain(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.T, "limit", "t", "", "search limit (default: by role)")
	cmd.Flags().StringVar(&opts.QT, "qt", "", "fields a bare word searches")
	cmd.Flags().StringVar(&opts.Reviewer, "reviewer", "", "email of the PC member whose reviews the r limits use")

	return cmd
}

func runExplain(opts *SearchOptions, q string, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sess, err := openSession(cmd.Context(), opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	s := sess.newSearch(opts.params(q))
	term, err := s.Explain()
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeSearch, "explain failed", err)
	}
	result := &ExplainResult{Q: s.Q(), Limit: s.Limit(), Term: term}
	if stmt, ok := s.Statement(); ok {
		result.SQL, result.Args = stmt.SQL, stmt.Args
	}
	return f.SuccessWithToken(result, s.Token())
}

// RenderText prints the term tree, then the statement.
func (r *ExplainResult) RenderText(w io.Writer) {
	fmt.Fprintf(w, "q: %s\nlimit: %s\nterm: %s\n", r.Q, r.Limit, r.Term)
	if r.SQL == "" {
		fmt.Fprintln(w, "sql: (none, the query cannot match)")
		return
	}
	fmt.Fprintf(w, "sql: %s\n", r.SQL)
	if len(r.Args) > 0 {
		fmt.Fprintf(w, "args: %v\n", r.Args)
	}
}
