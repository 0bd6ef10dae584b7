// Package assign applies batches of tag assignments to the paper store.
//
// A batch is CSV with a header row naming its columns:
//
//	paper,action,tag,index
//	1 2 3,tag,green
//	all,cleartag,red
//	4,nexttag,order
//
// The paper column holds space-separated paper numbers or "all". The
// action column is optional and defaults to "tag". A value can follow the
// tag after "#" or come from the index column; "tag#clear" removes the tag.
package assign

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/store"
	"github.com/roach88/papersearch/internal/tags"
)

// Action is what an assignment does to its tag.
type Action string

const (
	ActionTag        Action = "tag"
	ActionClearTag   Action = "cleartag"
	ActionNextTag    Action = "nexttag"
	ActionSeqNextTag Action = "seqnexttag"
)

func parseAction(s string) (Action, bool) {
	switch a := Action(strings.ToLower(strings.TrimSpace(s))); a {
	case "", "settag":
		return ActionTag, true
	case ActionTag, ActionClearTag, ActionNextTag, ActionSeqNextTag:
		return a, true
	case "untag", "deltag":
		return ActionClearTag, true
	}
	return "", false
}

// Assignment is one parsed line of a batch.
type Assignment struct {
	Line   int
	Action Action
	// Papers is nil when the line names every paper.
	Papers []int
	Tag    string
	Value  float64
	// HasValue is set when the line gives an explicit value.
	HasValue bool
}

// Error reports a bad line in a batch.
type Error struct {
	Line    int
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Message)
}

// TagStore is the part of the paper store a batch writes to.
type TagStore interface {
	PaperIDs(ctx context.Context) ([]int, error)
	TagValues(ctx context.Context, tag string) (map[int]float64, error)
	ApplyTagChanges(ctx context.Context, changes []store.TagChange) error
}

// Batch is a parsed assignment batch acting for one user.
type Batch struct {
	user        *ir.Contact
	assignments []Assignment
	logger      *slog.Logger
}

// Option configures a Batch.
type Option func(*Batch)

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(b *Batch) {
		b.logger = logger
	}
}

// Parse reads a batch. Every bad line is reported; the batch is returned
// only when all lines parse.
func Parse(r io.Reader, user *ir.Contact, opts ...Option) (*Batch, error) {
	if user == nil || !user.IsPC() {
		return nil, errors.New("parse assignments: user cannot assign tags")
	}
	b := &Batch{user: user, logger: slog.Default()}
	for _, opt := range opts {
		opt(b)
	}

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	header, err := cr.Read()
	if err == io.EOF {
		return b, nil
	}
	if err != nil {
		return nil, fmt.Errorf("parse assignments: %w", err)
	}
	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	if _, ok := cols["paper"]; !ok {
		return nil, &Error{Line: 1, Message: "missing “paper” column"}
	}
	if _, ok := cols["tag"]; !ok {
		return nil, &Error{Line: 1, Message: "missing “tag” column"}
	}

	var errs []error
	for line := 2; ; line++ {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse assignments: %w", err)
		}
		field := func(name string) string {
			if i, ok := cols[name]; ok && i < len(rec) {
				return strings.TrimSpace(rec[i])
			}
			return ""
		}
		if strings.Join(rec, "") == "" {
			continue
		}
		a, err := b.parseLine(line, field)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		b.assignments = append(b.assignments, a)
	}
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return b, nil
}

func (b *Batch) parseLine(line int, field func(string) string) (Assignment, error) {
	a := Assignment{Line: line}
	var ok bool
	if a.Action, ok = parseAction(field("action")); !ok {
		return a, &Error{Line: line, Message: fmt.Sprintf("unknown action “%s”", field("action"))}
	}

	papers := field("paper")
	if !strings.EqualFold(papers, "all") {
		for _, w := range strings.Fields(papers) {
			pid, err := strconv.Atoi(strings.TrimPrefix(w, "#"))
			if err != nil || pid <= 0 {
				return a, &Error{Line: line, Message: fmt.Sprintf("bad paper number “%s”", w)}
			}
			a.Papers = append(a.Papers, pid)
		}
		if len(a.Papers) == 0 {
			return a, &Error{Line: line, Message: "no papers"}
		}
	}

	tag := strings.TrimPrefix(field("tag"), "#")
	if base, v, found := strings.Cut(tag, "#"); found {
		tag = base
		switch strings.ToLower(v) {
		case "clear", "none":
			if a.Action != ActionTag && a.Action != ActionClearTag {
				return a, &Error{Line: line, Message: fmt.Sprintf("“%s” cannot clear a tag", a.Action)}
			}
			a.Action = ActionClearTag
		default:
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return a, &Error{Line: line, Message: fmt.Sprintf("bad tag value “%s”", v)}
			}
			a.Value, a.HasValue = f, true
		}
	}
	if idx := field("index"); idx != "" {
		f, err := strconv.ParseFloat(idx, 64)
		if err != nil {
			return a, &Error{Line: line, Message: fmt.Sprintf("bad tag value “%s”", idx)}
		}
		a.Value, a.HasValue = f, true
	}

	tag, err := b.resolveTag(tag)
	if err != nil {
		return a, &Error{Line: line, Message: err.Error()}
	}
	a.Tag = tag
	if a.Action == ActionClearTag {
		a.Value, a.HasValue = 0, false
	}
	return a, nil
}

// resolveTag expands "~tag" to the acting user's private tag and checks
// that the user may write it.
func (b *Batch) resolveTag(tag string) (string, error) {
	if tag == "" {
		return "", errors.New("missing tag")
	}
	if strings.HasPrefix(tag, "~") && !strings.HasPrefix(tag, "~~") {
		tag = strconv.Itoa(b.user.ContactID) + tag
	}
	if !tags.CheckTag(tag, false) {
		return "", fmt.Errorf("invalid tag “%s”", tag)
	}
	if b.user.PrivChair() {
		return tag, nil
	}
	if strings.HasPrefix(tag, "~~") {
		return "", fmt.Errorf("only chairs can change tag “%s”", tag)
	}
	if owner, _, ok := strings.Cut(tag, "~"); ok && owner != strconv.Itoa(b.user.ContactID) {
		return "", fmt.Errorf("you cannot change another user's tag “%s”", tag)
	}
	return tag, nil
}

// Assignments returns the parsed lines.
func (b *Batch) Assignments() []Assignment {
	return b.assignments
}

// Execute applies the batch in one transaction and returns the changes
// made. nexttag appends each paper after the tag's current highest value;
// seqnexttag continues from the previous seqnexttag line for the same tag.
func (b *Batch) Execute(ctx context.Context, st TagStore) ([]store.TagChange, error) {
	ex := &executor{
		st:     st,
		values: make(map[string]map[int]float64),
		seq:    make(map[string]float64),
	}
	for _, a := range b.assignments {
		if err := ex.apply(ctx, a); err != nil {
			return nil, err
		}
	}
	if len(ex.changes) == 0 {
		return nil, nil
	}
	if err := st.ApplyTagChanges(ctx, ex.changes); err != nil {
		return nil, fmt.Errorf("execute assignments: %w", err)
	}
	b.logger.Debug("assignments executed",
		"user", b.user.Email,
		"lines", len(b.assignments),
		"changes", len(ex.changes))
	return ex.changes, nil
}

type executor struct {
	st      TagStore
	all     []int
	values  map[string]map[int]float64
	seq     map[string]float64
	changes []store.TagChange
}

func (ex *executor) papers(ctx context.Context, a Assignment) ([]int, error) {
	if a.Papers != nil {
		return a.Papers, nil
	}
	if ex.all == nil {
		ids, err := ex.st.PaperIDs(ctx)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", a.Line, err)
		}
		ex.all = ids
	}
	return ex.all, nil
}

// tagValues returns the working values of tag: stored values updated by
// the batch so far.
func (ex *executor) tagValues(ctx context.Context, tag string) (map[int]float64, error) {
	key := strings.ToLower(tag)
	if v, ok := ex.values[key]; ok {
		return v, nil
	}
	v, err := ex.st.TagValues(ctx, tag)
	if err != nil {
		return nil, err
	}
	if v == nil {
		v = make(map[int]float64)
	}
	ex.values[key] = v
	return v, nil
}

func (ex *executor) apply(ctx context.Context, a Assignment) error {
	pids, err := ex.papers(ctx, a)
	if err != nil {
		return err
	}
	values, err := ex.tagValues(ctx, a.Tag)
	if err != nil {
		return fmt.Errorf("line %d: %w", a.Line, err)
	}
	key := strings.ToLower(a.Tag)
	for _, pid := range pids {
		switch a.Action {
		case ActionClearTag:
			if _, ok := values[pid]; !ok {
				continue
			}
			delete(values, pid)
			ex.changes = append(ex.changes, store.TagChange{PaperID: pid, Tag: a.Tag, Delete: true})
			continue
		case ActionTag:
			if a.HasValue {
				values[pid] = a.Value
			} else if _, ok := values[pid]; !ok {
				values[pid] = 0
			}
		case ActionNextTag:
			v := a.Value
			if !a.HasValue {
				v = nextValue(values, pid)
			}
			values[pid] = v
		case ActionSeqNextTag:
			v, ok := ex.seq[key]
			if a.HasValue {
				v = a.Value
			} else if !ok {
				v = nextValue(values, pid)
			}
			values[pid] = v
			ex.seq[key] = v + 1
		}
		ex.changes = append(ex.changes, store.TagChange{PaperID: pid, Tag: a.Tag, Value: values[pid]})
	}
	return nil
}

// nextValue is one past the highest value among the other papers, or 1
// when no other paper has the tag.
func nextValue(values map[int]float64, pid int) float64 {
	next, found := 1.0, false
	for p, v := range values {
		if p != pid && (!found || v+1 > next) {
			next, found = v+1, true
		}
	}
	return next
}
