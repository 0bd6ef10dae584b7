package confspec

import (
	"fmt"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/search"
	"github.com/roach88/papersearch/internal/tags"
)

// Validation error codes (E200-E299)
const (
	ErrDuplicateDecision    = "E201" // two decisions share an id or name
	ErrDuplicateSearch      = "E202" // two named searches share a name
	ErrInvalidTag           = "E203" // tag annotation names an invalid tag
	ErrDuplicateTag         = "E204" // tag annotated twice
	ErrInvalidLimit         = "E205" // named search limit is unknown
	ErrDuplicateRound       = "E206" // round named twice
	ErrDuplicateReviewField = "E207" // review field id or keyword reused
	ErrAutomaticOrder       = "E208" // automatic tag also marked as order tag
)

// ValidationError is one rule violation in decoded settings.
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code"`
}

// Error implements the error interface.
func (e ValidationError) Error() string {
	return fmt.Sprintf("[%s] %s: %s", e.Code, e.Field, e.Message)
}

// Validate checks settings for rules the schema cannot express. It
// returns every violation found.
func Validate(conf *ir.Conf) []ValidationError {
	var errs []ValidationError
	add := func(code, field, format string, args ...any) {
		errs = append(errs, ValidationError{Field: field, Message: fmt.Sprintf(format, args...), Code: code})
	}

	ids := map[int]bool{}
	names := map[string]bool{}
	for i, d := range conf.Decisions {
		field := fmt.Sprintf("decisions[%d]", i)
		if ids[d.ID] {
			add(ErrDuplicateDecision, field, "decision id %d is used twice", d.ID)
		}
		if names[strings.ToLower(d.Name)] {
			add(ErrDuplicateDecision, field, "decision %q is named twice", d.Name)
		}
		ids[d.ID], names[strings.ToLower(d.Name)] = true, true
	}

	searches := map[string]bool{}
	for i, ns := range conf.NamedSearches {
		field := fmt.Sprintf("named_searches[%d]", i)
		key := strings.ToLower(ns.Name)
		if searches[key] {
			add(ErrDuplicateSearch, field, "search %q is defined twice", ns.Name)
		}
		searches[key] = true
		if ns.T != "" && search.CanonicalLimit(ns.T) == "" {
			add(ErrInvalidLimit, field, "unknown limit %q", ns.T)
		}
	}

	annotated := map[string]bool{}
	for i, t := range conf.Tags {
		field := fmt.Sprintf("tags[%d]", i)
		if !tags.CheckTag(t.Tag, false) || strings.Contains(t.Tag, "~") {
			add(ErrInvalidTag, field, "invalid tag %q", t.Tag)
		}
		key := strings.ToLower(t.Tag)
		if annotated[key] {
			add(ErrDuplicateTag, field, "tag %q is annotated twice", t.Tag)
		}
		annotated[key] = true
		if t.IsAutomatic() && t.Order {
			add(ErrAutomaticOrder, field, "automatic tag %q cannot be an order tag", t.Tag)
		}
	}

	rounds := map[string]bool{"unnamed": true}
	for i, r := range conf.Rounds {
		key := strings.ToLower(r)
		if rounds[key] {
			add(ErrDuplicateRound, fmt.Sprintf("rounds[%d]", i), "round %q is named twice", r)
		}
		rounds[key] = true
	}

	fields := map[string]bool{}
	for i, f := range conf.ReviewFields {
		field := fmt.Sprintf("review_fields[%d]", i)
		for _, key := range []string{"id:" + strings.ToLower(f.ID), "kw:" + f.Search} {
			if fields[key] {
				add(ErrDuplicateReviewField, field, "review field %q is defined twice", strings.SplitN(key, ":", 2)[1])
			}
			fields[key] = true
		}
	}

	return errs
}
