package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/papersearch/internal/search"
)

// SearchOptions holds flags for the search command.
type SearchOptions struct {
	*RootOptions
	T               string
	QT              string
	Reviewer        string
	Sort            string
	QA, QO, QX      string
	Unsorted        bool
	ExpandAutomatic bool
	AllowDeleted    bool
	MetricsFile     string
}

// SearchResult is the output of the search command.
type SearchResult struct {
	Q           string            `json:"q"`
	Limit       string            `json:"limit"`
	Description string            `json:"description"`
	ListID      string            `json:"list_id"`
	IDs         []int             `json:"ids"`
	Groups      []SearchGroup     `json:"groups,omitempty"`
	Highlights  map[int][]string  `json:"highlights,omitempty"`
	Fields      map[string]string `json:"field_highlighters,omitempty"`
	Messages    []SearchMessage   `json:"messages,omitempty"`
	// Alternate suggests another query when nothing matched.
	Alternate string `json:"alternate,omitempty"`

	titles map[int]string
}

// SearchGroup is one THEN group of results, in display order.
type SearchGroup struct {
	Legend string `json:"legend,omitempty"`
	Search string `json:"search,omitempty"`
	IDs    []int  `json:"ids"`
}

// SearchMessage is one warning or note about the query.
type SearchMessage struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Context string `json:"context,omitempty"`
	Pos1    int    `json:"pos1"`
	Pos2    int    `json:"pos2"`
	text    string
}

// NewSearchCommand creates the search command.
func NewSearchCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SearchOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Run a paper search",
		Long: `Run a paper search as the acting user and print the matching papers.

Results are listed in display order: by THEN group, then by any sort:
directives, then by paper number. Warnings about the query are printed
first, with the offending part underlined.

Examples:
  papersearch search --db conf.db -u chair@example.org '#green'
  papersearch search --db conf.db -u pat@example.org -t r 'ti:graph THEN re:>2'
  papersearch search --db conf.db --qa 'graph' --qx 'tree' --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			var q string
			if len(args) > 0 {
				q = args[0]
			}
			return runSearch(opts, q, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.T, "limit", "t", "", "search limit such as s, a, r, acc or all (default: by role)")
	cmd.Flags().StringVar(&opts.QT, "qt", "", "fields a bare word searches: ti, ab, au, ac, co, re, tag (default n)")
	cmd.Flags().StringVar(&opts.Reviewer, "reviewer", "", "email of the PC member whose reviews the r limits use")
	cmd.Flags().StringVar(&opts.Sort, "sort", "", "default sort, such as title or -#order")
	cmd.Flags().StringVar(&opts.QA, "qa", "", "with no query: words that must all match")
	cmd.Flags().StringVar(&opts.QO, "qo", "", "with no query: words of which any may match")
	cmd.Flags().StringVar(&opts.QX, "qx", "", "with no query: words that must not match")
	cmd.Flags().BoolVar(&opts.Unsorted, "unsorted", false, "list results by paper number only")
	cmd.Flags().BoolVar(&opts.ExpandAutomatic, "expand-automatic", false, "evaluate automatic tags live")
	cmd.Flags().BoolVar(&opts.AllowDeleted, "allow-deleted", false, "keep papers named by number even if they are gone")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "write search metrics to this file")

	return cmd
}

func (o *SearchOptions) params(q string) search.Params {
	qt := o.QT
	if qt == "" {
		qt = o.RootOptions.QT
	}
	return search.Params{
		Q:        q,
		T:        o.T,
		QT:       qt,
		Reviewer: o.Reviewer,
		QA:       o.QA,
		QO:       o.QO,
		QX:       o.QX,
		Sort:     o.Sort,
	}
}

func runSearch(opts *SearchOptions, q string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts.RootOptions, cmd.OutOrStdout(), cmd.ErrOrStderr())

	sess, err := openSession(ctx, opts.RootOptions, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	s := sess.newSearch(opts.params(q))
	if opts.ExpandAutomatic {
		s.SetExpandAutomatic(true)
	}
	if opts.AllowDeleted {
		if err := s.SetAllowDeleted(true); err != nil {
			return f.Fail(ExitFailure, ErrCodeSearch, "search failed", err)
		}
	}
	f.VerboseLog("Search %s: q=%q limit=%s", s.Token(), s.Q(), s.Limit())

	result, err := buildSearchResult(cmd, s, !opts.Unsorted)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeSearch, "search failed", err)
	}
	if err := sess.writeMetrics(opts.MetricsFile); err != nil {
		return f.Fail(ExitFailure, ErrCodeGeneric, "failed to write metrics", err)
	}
	return f.SuccessWithToken(result, s.Token())
}

// buildSearchResult evaluates s and collects everything the command
// prints.
func buildSearchResult(cmd *cobra.Command, s *search.PaperSearch, sorted bool) (*SearchResult, error) {
	ctx := cmd.Context()
	var ids []int
	var err error
	if sorted {
		ids, err = s.SortedPaperIDs(ctx)
	} else {
		ids, err = s.PaperIDs(ctx)
	}
	if err != nil {
		return nil, err
	}
	groupOf, err := s.GroupsByPaperID(ctx)
	if err != nil {
		return nil, err
	}
	highlights, err := s.HighlightsByPaperID(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := s.Rows(ctx)
	if err != nil {
		return nil, err
	}

	r := &SearchResult{
		Q:           s.Q(),
		Limit:       s.Limit(),
		Description: s.Description(""),
		ListID:      s.ListID(""),
		IDs:         ids,
		Highlights:  highlights,
		Fields:      s.FieldHighlighters(),
		titles:      make(map[int]string, len(rows)),
	}
	if len(ids) == 0 {
		if r.Alternate, err = s.AlternateQuery(ctx); err != nil {
			return nil, err
		}
	}
	for pid, row := range rows {
		r.titles[pid] = row.Title
	}

	legends := s.PaperGroups()
	if len(legends) > 0 {
		r.Groups = make([]SearchGroup, len(legends))
	}
	for i, g := range legends {
		r.Groups[i] = SearchGroup{Legend: g.Legend, Search: g.Search, IDs: []int{}}
	}
	for _, pid := range ids {
		g := groupOf[pid]
		if g >= 0 && g < len(r.Groups) {
			r.Groups[g].IDs = append(r.Groups[g].IDs, pid)
		}
	}

	for _, m := range s.Messages() {
		r.Messages = append(r.Messages, SearchMessage{
			Status:  m.Status.String(),
			Message: m.Message,
			Context: m.Context,
			Pos1:    m.Pos1,
			Pos2:    m.Pos2,
			text:    m.String(),
		})
	}
	return r, nil
}

// RenderText prints messages, then each group with its papers, then a
// summary line.
func (r *SearchResult) RenderText(w io.Writer) {
	for _, m := range r.Messages {
		fmt.Fprintln(w, m.text)
	}
	if len(r.Messages) > 0 {
		fmt.Fprintln(w)
	}
	if len(r.IDs) == 0 {
		fmt.Fprintf(w, "No matching papers (%s).\n", r.Description)
		if r.Alternate != "" {
			fmt.Fprintf(w, "Did you mean %s?\n", r.Alternate)
		}
		return
	}
	groups := r.Groups
	if len(groups) == 0 {
		groups = []SearchGroup{{IDs: r.IDs}}
	}
	for _, g := range groups {
		if len(groups) > 1 || g.Legend != "" {
			fmt.Fprintf(w, "== %s ==\n", g.Legend)
		}
		for _, pid := range g.IDs {
			line := fmt.Sprintf("#%d\t%s", pid, r.titles[pid])
			if colors := r.Highlights[pid]; len(colors) > 0 {
				line += "\t[" + strings.Join(colors, " ") + "]"
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintf(w, "%d paper(s): %s\n", len(r.IDs), r.Description)
}
