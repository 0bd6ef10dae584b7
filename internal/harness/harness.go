package harness

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/roach88/papersearch/internal/assign"
	"github.com/roach88/papersearch/internal/confspec"
	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/search"
	"github.com/roach88/papersearch/internal/store"
	"github.com/roach88/papersearch/internal/testutil"
)

// Harness holds the state of one scenario run.
type Harness struct {
	store    *store.Store
	conf     *ir.Conf
	contacts *search.ContactList
	clock    *testutil.DeterministicClock
	tokens   *testutil.FixedTokenGenerator
	logger   *slog.Logger
}

// Run executes a scenario and returns the result.
//
// Each scenario runs in a fresh in-memory database. Errors are returned
// for scenarios that cannot run at all, such as a missing fixture or an
// unknown user; failed expectations are reported in the result.
//
// Execution flow:
// 1. Create a fresh in-memory database and load the fixture
// 2. Load conference settings
// 3. Apply setup assignments
// 4. Run flow searches, checking expect clauses
// 5. Evaluate assertions
func Run(scenario *Scenario) (*Result, error) {
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil)) // Suppress logs in tests

	st, err := store.Open(":memory:", store.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("failed to create in-memory store: %w", err)
	}
	defer st.Close()

	if scenario.Fixture != "" {
		if err := st.LoadFixtureFile(ctx, scenario.Fixture); err != nil {
			return nil, err
		}
	}
	if len(scenario.Contacts) > 0 || len(scenario.Papers) > 0 {
		f := &store.Fixture{Contacts: scenario.Contacts, Papers: scenario.Papers}
		if err := st.LoadFixture(ctx, f); err != nil {
			return nil, err
		}
	}

	conf := &ir.Conf{Name: scenario.Name}
	if scenario.Conf != "" {
		if conf, err = confspec.LoadFile(scenario.Conf); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}

	contacts, err := st.LoadContacts(ctx)
	if err != nil {
		return nil, err
	}

	h := &Harness{
		store:    st,
		conf:     conf,
		contacts: search.NewContactList(contacts),
		clock:    testutil.NewDeterministicClock(),
		tokens:   testutil.NewFixedTokenGenerator(scenario.SearchToken),
		logger:   logger,
	}

	result := NewResult()
	if err := h.executeSetup(ctx, scenario.Setup, result); err != nil {
		return nil, fmt.Errorf("failed to execute setup: %w", err)
	}
	if err := h.executeFlow(ctx, scenario.Flow, result); err != nil {
		return nil, fmt.Errorf("failed to execute flow: %w", err)
	}

	actx := &AssertionContext{Store: st, Ctx: ctx}
	for _, msg := range EvaluateAssertions(result, scenario.Assertions, actx) {
		result.AddError(msg)
	}
	return result, nil
}

// user resolves an acting user by email. "" is the anonymous visitor.
func (h *Harness) user(email string) (*ir.Contact, error) {
	if email == "" {
		return nil, nil
	}
	c := h.contacts.ByEmail(email)
	if c == nil {
		return nil, fmt.Errorf("unknown user %q", email)
	}
	return c, nil
}

func (h *Harness) executeSetup(ctx context.Context, steps []SetupStep, result *Result) error {
	for i, step := range steps {
		if err := h.assign(ctx, step.As, step.Assign, result); err != nil {
			return fmt.Errorf("setup[%d]: %w", i, err)
		}
	}
	return nil
}

// assign applies one batch as user email and records it.
func (h *Harness) assign(ctx context.Context, email, batchCSV string, result *Result) error {
	user, err := h.user(email)
	if err != nil {
		return err
	}
	batch, err := assign.Parse(strings.NewReader(batchCSV), user, assign.WithLogger(h.logger))
	if err != nil {
		return err
	}
	changes, err := batch.Execute(ctx, h.store)
	if err != nil {
		return err
	}
	result.AddEvent(TraceEvent{
		Type:    EventAssign,
		Seq:     h.clock.Next(),
		User:    user.Email,
		Changes: len(changes),
	})
	return nil
}

func (h *Harness) executeFlow(ctx context.Context, steps []FlowStep, result *Result) error {
	for i, step := range steps {
		if step.Assign != "" {
			if err := h.assign(ctx, step.As, step.Assign, result); err != nil {
				return fmt.Errorf("flow[%d]: %w", i, err)
			}
			continue
		}
		user, err := h.user(step.As)
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}
		s := search.NewPaperSearch(user, search.Params{
			Q:        step.Q,
			T:        step.T,
			QT:       step.QT,
			Reviewer: step.Reviewer,
			Sort:     step.Sort,
		},
			search.WithConf(h.conf),
			search.WithContacts(h.contacts),
			search.WithRowSource(h.store),
			search.WithLogger(h.logger),
			search.WithTokenGenerator(h.tokens))

		var ids []int
		if step.Sorted {
			ids, err = s.SortedPaperIDs(ctx)
		} else {
			ids, err = s.PaperIDs(ctx)
		}
		if err != nil {
			return fmt.Errorf("flow[%d]: %w", i, err)
		}

		event := TraceEvent{
			Type:  EventSearch,
			Seq:   h.clock.Next(),
			Q:     step.Q,
			Limit: s.Limit(),
			IDs:   ids,
		}
		if user != nil {
			event.User = user.Email
		}
		for _, m := range s.Messages() {
			if m.Status == search.StatusWarning {
				event.Warnings = append(event.Warnings, m.Message)
			}
		}
		result.AddEvent(event)

		if step.Expect != nil {
			for _, msg := range checkExpect(step.Expect, event) {
				result.AddError(fmt.Sprintf("flow[%d] %q: %s", i, step.Q, msg))
			}
		}
	}
	return nil
}

func checkExpect(x *ExpectClause, e TraceEvent) []string {
	var errs []string
	if x.IDs != nil && !slices.Equal(x.IDs, e.IDs) && !(len(x.IDs) == 0 && len(e.IDs) == 0) {
		errs = append(errs, fmt.Sprintf("expected ids %v, got %v", x.IDs, e.IDs))
	}
	if x.Limit != "" && x.Limit != e.Limit {
		errs = append(errs, fmt.Sprintf("expected limit %q, got %q", x.Limit, e.Limit))
	}
	for _, w := range x.Warnings {
		if !slices.ContainsFunc(e.Warnings, func(got string) bool { return strings.Contains(got, w) }) {
			errs = append(errs, fmt.Sprintf("expected a warning containing %q, got %q", w, e.Warnings))
		}
	}
	if x.NoWarnings && len(e.Warnings) > 0 {
		errs = append(errs, fmt.Sprintf("expected no warnings, got %q", e.Warnings))
	}
	return errs
}
