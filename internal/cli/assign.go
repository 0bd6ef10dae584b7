package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/papersearch/internal/assign"
)

// AssignResult is the output of the assign command.
type AssignResult struct {
	Lines   int            `json:"lines"`
	Changes []AssignChange `json:"changes"`
}

// AssignChange is one tag written or removed.
type AssignChange struct {
	PaperID int     `json:"paper_id"`
	Tag     string  `json:"tag"`
	Value   float64 `json:"value"`
	Delete  bool    `json:"delete,omitempty"`
}

// NewAssignCommand creates the assign command.
func NewAssignCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "assign <batch.csv|->",
		Short: "Apply a batch of tag assignments",
		Long: `Apply a CSV batch of tag assignments as the acting user, who must be
a PC member. The header row names the columns: paper and tag are
required, action (tag, cleartag, nexttag, seqnexttag) and index are
optional. Use - to read the batch from standard input.

Example:
  printf 'paper,tag\n3 9 13 17,green\n' | papersearch assign --db conf.db -u chair@example.org -`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAssign(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runAssign(opts *RootOptions, path string, cmd *cobra.Command) error {
	ctx := cmd.Context()
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	var in io.Reader = cmd.InOrStdin()
	if path != "-" {
		fh, err := os.Open(path)
		if err != nil {
			return f.Fail(ExitCommandError, ErrCodeAssign, "failed to open batch", err)
		}
		defer fh.Close()
		in = fh
	}

	sess, err := openSession(ctx, opts, f)
	if err != nil {
		return err
	}
	defer sess.Close()

	batch, err := assign.Parse(in, sess.user, assign.WithLogger(slog.Default()))
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeAssign, "invalid batch", err)
	}
	changes, err := batch.Execute(ctx, sess.store)
	if err != nil {
		return f.Fail(ExitFailure, ErrCodeAssign, "failed to apply batch", err)
	}

	result := &AssignResult{Lines: len(batch.Assignments()), Changes: make([]AssignChange, len(changes))}
	for i, c := range changes {
		result.Changes[i] = AssignChange{PaperID: c.PaperID, Tag: c.Tag, Value: c.Value, Delete: c.Delete}
	}
	return f.Success(result)
}

// RenderText prints one line per change.
func (r *AssignResult) RenderText(w io.Writer) {
	for _, c := range r.Changes {
		if c.Delete {
			fmt.Fprintf(w, "#%d\t-%s\n", c.PaperID, c.Tag)
		} else {
			fmt.Fprintf(w, "#%d\t%s#%v\n", c.PaperID, c.Tag, c.Value)
		}
	}
	fmt.Fprintf(w, "%d line(s), %d change(s)\n", r.Lines, len(r.Changes))
}
