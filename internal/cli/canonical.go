package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/papersearch/internal/search"
)

// CanonicalOptions holds flags for the canonical command.
type CanonicalOptions struct {
	*RootOptions
	QA, QO, QX string
	QT         string
	T          string
	ListID     string
}

// CanonicalResult is the output of the canonical command.
type CanonicalResult struct {
	Q      string `json:"q"`
	T      string `json:"t,omitempty"`
	QT     string `json:"qt,omitempty"`
	Sort   string `json:"sort,omitempty"`
	ListID string `json:"list_id,omitempty"`
}

// NewCanonicalCommand creates the canonical command.
func NewCanonicalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CanonicalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "canonical",
		Short: "Combine advanced-search fields into one query",
		Long: `Combine the fields of an advanced search into one query string: all of
--qa, any of --qo and none of --qx. Bare words are qualified by --qt, and
a limit given with -t is written in as "in:".

With --list-id, decode a result list id such as "p/s/ti%3Agraph/sort=title"
instead. No database is needed.

Examples:
  papersearch canonical --qa 'a b' --qo 'c d' --qx e
  papersearch canonical --list-id 'p/s/%23green/sort=title'`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCanonical(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.QA, "qa", "", "words that must all match")
	cmd.Flags().StringVar(&opts.QO, "qo", "", "words of which any may match")
	cmd.Flags().StringVar(&opts.QX, "qx", "", "words that must not match")
	cmd.Flags().StringVar(&opts.QT, "qt", "", "fields a bare word searches")
	cmd.Flags().StringVarP(&opts.T, "limit", "t", "", "search limit to write into the query")
	cmd.Flags().StringVar(&opts.ListID, "list-id", "", "decode this list id instead")

	return cmd
}

func runCanonical(opts *CanonicalOptions, cmd *cobra.Command) error {
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	if opts.ListID != "" {
		args, ok := search.ParseListID(opts.ListID)
		if !ok {
			return f.Fail(ExitCommandError, ErrCodeGeneric, fmt.Sprintf("not a search list id: %q", opts.ListID), nil)
		}
		return f.Success(&CanonicalResult{Q: args.Q, T: args.T, QT: args.QT, Sort: args.Sort})
	}

	qt := opts.QT
	if qt == "" {
		qt = opts.RootOptions.QT
	}
	q := search.CanonicalQuery(opts.QA, opts.QO, opts.QX, qt, opts.T)
	s := search.NewPaperSearch(nil, search.Params{Q: q, QT: qt, T: "all"})
	return f.Success(&CanonicalResult{Q: q, ListID: s.ListID("")})
}

// RenderText prints the query, then the other fields that are set.
func (r *CanonicalResult) RenderText(w io.Writer) {
	fmt.Fprintln(w, r.Q)
	for _, kv := range [][2]string{{"t", r.T}, {"qt", r.QT}, {"sort", r.Sort}, {"list_id", r.ListID}} {
		if kv[1] != "" {
			fmt.Fprintf(w, "%s: %s\n", kv[0], kv[1])
		}
	}
}
