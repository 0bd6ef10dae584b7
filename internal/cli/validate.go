package cli

import (
	"errors"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/papersearch/internal/confspec"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/search"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid    bool              `json:"valid"`
	Name     string            `json:"name,omitempty"`
	Errors   []ValidationIssue `json:"errors,omitempty"`
	Warnings []ValidationIssue `json:"warnings,omitempty"`
}

// ValidationIssue is one problem found in the settings.
type ValidationIssue struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
	Line    int    `json:"line,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <settings>",
		Short: "Validate conference settings",
		Long: `Validate conference settings written in CUE: a single file or a
directory holding one CUE package.

The settings are checked against the settings schema, then for rules the
schema cannot express. Every named search and automatic tag search is
also compiled; their query warnings are reported without failing.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}
	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	f := newFormatter(opts, cmd.OutOrStdout(), cmd.ErrOrStderr())

	conf, err := loadConf(path)
	if err != nil {
		result := &ValidationResult{Errors: []ValidationIssue{settingsIssue(err)}}
		if outErr := f.Success(result); outErr != nil {
			return outErr
		}
		return WrapExitError(ExitFailure, "settings are invalid", err)
	}
	f.VerboseLog("Compiled settings %q", conf.Name)

	result := &ValidationResult{Valid: true, Name: conf.Name, Warnings: checkSearches(conf)}
	return f.Success(result)
}

// settingsIssue converts a load error, keeping its CUE position.
func settingsIssue(err error) ValidationIssue {
	var cErr *confspec.CompileError
	if errors.As(err, &cErr) {
		issue := ValidationIssue{Field: cErr.Field, Message: cErr.Message, Code: ErrCodeSettings}
		if cErr.Pos.IsValid() {
			issue.Line = cErr.Pos.Line()
		}
		return issue
	}
	return ValidationIssue{Field: "settings", Message: err.Error(), Code: ErrCodeSettings}
}

// checkSearches compiles the named searches and automatic tag searches
// of conf as the site contact and collects their warnings.
func checkSearches(conf *ir.Conf) []ValidationIssue {
	var issues []ValidationIssue
	check := func(field, q string) {
		s := search.NewPaperSearch(ir.SiteContact(), search.Params{Q: q, T: "all"}, search.WithConf(conf))
		for _, m := range s.Messages() {
			if m.Status == search.StatusWarning {
				issues = append(issues, ValidationIssue{Field: field, Message: m.Message})
			}
		}
	}
	for i, ns := range conf.NamedSearches {
		check(fmt.Sprintf("named_searches[%d]", i), ns.Q)
	}
	for i, t := range conf.Tags {
		if t.IsAutomatic() {
			check(fmt.Sprintf("tags[%d].automatic", i), t.Automatic)
		}
	}
	return issues
}

// RenderText prints the verdict and any problems.
func (r *ValidationResult) RenderText(w io.Writer) {
	for _, e := range r.Errors {
		if e.Line > 0 {
			fmt.Fprintf(w, "✗ [%s] %s (line %d): %s\n", e.Code, e.Field, e.Line, e.Message)
		} else {
			fmt.Fprintf(w, "✗ [%s] %s: %s\n", e.Code, e.Field, e.Message)
		}
	}
	for _, e := range r.Warnings {
		fmt.Fprintf(w, "! %s: %s\n", e.Field, e.Message)
	}
	if r.Valid {
		fmt.Fprintf(w, "✓ Settings valid: %s\n", r.Name)
	}
}
