package store

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/papersearch/internal/ir"
)

// ScoreColumns are the PaperReview columns that hold review scores. Review
// fields must use one of them as their id.
var ScoreColumns = []string{"overAllMerit", "reviewerQualification", "novelty", "technicalMerit"}

// InsertContact adds or replaces a contact.
func (s *Store) InsertContact(ctx context.Context, c *ir.Contact) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO ContactInfo (contactId, email, firstName, lastName, affiliation, roles, contactTags)
		VALUES (:contactId, :email, :firstName, :lastName, :affiliation, :roles, :contactTags)
		ON CONFLICT(contactId) DO UPDATE SET
			email = excluded.email,
			firstName = excluded.firstName,
			lastName = excluded.lastName,
			affiliation = excluded.affiliation,
			roles = excluded.roles,
			contactTags = excluded.contactTags
	`, c)
	if err != nil {
		return fmt.Errorf("insert contact %q: %w", c.Email, err)
	}
	return nil
}

// InsertPaper adds or replaces a paper's own columns. Tags, conflicts and
// reviews are written separately; a replaced paper keeps them.
func (s *Store) InsertPaper(ctx context.Context, p *ir.PaperRow) error {
	_, err := s.db.NamedExecContext(ctx, `
		INSERT INTO Paper
		(paperId, title, abstract, authorInformation, collaborators, timeSubmitted, timeWithdrawn,
		 outcome, leadContactId, shepherdContactId, managerContactId, paperStorageId, size, blind)
		VALUES
		(:paperId, :title, :abstract, :authorInformation, :collaborators, :timeSubmitted, :timeWithdrawn,
		 :outcome, :leadContactId, :shepherdContactId, :managerContactId, :paperStorageId, :size, :blind)
		ON CONFLICT(paperId) DO UPDATE SET
			title = excluded.title,
			abstract = excluded.abstract,
			authorInformation = excluded.authorInformation,
			collaborators = excluded.collaborators,
			timeSubmitted = excluded.timeSubmitted,
			timeWithdrawn = excluded.timeWithdrawn,
			outcome = excluded.outcome,
			leadContactId = excluded.leadContactId,
			shepherdContactId = excluded.shepherdContactId,
			managerContactId = excluded.managerContactId,
			paperStorageId = excluded.paperStorageId,
			size = excluded.size,
			blind = excluded.blind
	`, p)
	if err != nil {
		return fmt.Errorf("insert paper %d: %w", p.PaperID, err)
	}
	return nil
}

// SetConflict records contact cid's conflict on paper pid. A conflict type
// of 0 removes it.
func (s *Store) SetConflict(ctx context.Context, pid, cid, conflictType int) error {
	var err error
	if conflictType == 0 {
		_, err = s.db.ExecContext(ctx, `DELETE FROM PaperConflict WHERE paperId = ? AND contactId = ?`, pid, cid)
	} else {
		_, err = s.db.ExecContext(ctx, `
			INSERT INTO PaperConflict (paperId, contactId, conflictType)
			VALUES (?, ?, ?)
			ON CONFLICT(paperId, contactId) DO UPDATE SET conflictType = excluded.conflictType
		`, pid, cid, conflictType)
	}
	if err != nil {
		return fmt.Errorf("set conflict %d/%d: %w", pid, cid, err)
	}
	return nil
}

// InsertReview adds or replaces review r of paper pid. wordCount is
// stored when positive. Scores for columns outside ScoreColumns are
// rejected.
func (s *Store) InsertReview(ctx context.Context, pid int, r ir.ReviewInfo, wordCount int) error {
	cols := []string{"reviewId", "paperId", "contactId", "reviewType", "reviewRound", "reviewSubmitted", "requestedBy", "reviewWordCount"}
	var submitted, words any
	if r.Submitted {
		submitted = 1
	}
	if wordCount > 0 {
		words = wordCount
	}
	args := []any{r.ReviewID, pid, r.ContactID, r.ReviewType, r.Round, submitted, r.RequestedBy, words}

	fields := make([]string, 0, len(r.Scores))
	for f := range r.Scores {
		if !slices.Contains(ScoreColumns, f) {
			return fmt.Errorf("insert review %d: unknown score field %q", r.ReviewID, f)
		}
		fields = append(fields, f)
	}
	slices.Sort(fields)
	for _, f := range fields {
		cols = append(cols, f)
		args = append(args, r.Scores[f])
	}

	query := "INSERT OR REPLACE INTO PaperReview (" + strings.Join(cols, ", ") + ") VALUES (" +
		strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("insert review %d: %w", r.ReviewID, err)
	}
	return nil
}

// SetTag sets tag on paper pid to value, adding it if absent.
func (s *Store) SetTag(ctx context.Context, pid int, tag string, value float64) error {
	return setTag(ctx, s.db, pid, tag, value)
}

// DeleteTag removes tag from paper pid. Removing an absent tag is not an
// error.
func (s *Store) DeleteTag(ctx context.Context, pid int, tag string) error {
	return deleteTag(ctx, s.db, pid, tag)
}

// TagChange is one tag update applied by ApplyTagChanges.
type TagChange struct {
	PaperID int
	Tag     string
	Value   float64
	Delete  bool
}

// ApplyTagChanges applies changes in order in one transaction. Either
// all changes are applied or none.
func (s *Store) ApplyTagChanges(ctx context.Context, changes []TagChange) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tag changes: %w", err)
	}
	defer tx.Rollback()

	for _, c := range changes {
		if c.Delete {
			err = deleteTag(ctx, tx, c.PaperID, c.Tag)
		} else {
			err = setTag(ctx, tx, c.PaperID, c.Tag, c.Value)
		}
		if err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tag changes: %w", err)
	}
	s.logger.Debug("tags changed", "changes", len(changes))
	return nil
}

func setTag(ctx context.Context, db sqlx.ExecerContext, pid int, tag string, value float64) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO PaperTag (paperId, tag, tagIndex)
		VALUES (?, ?, ?)
		ON CONFLICT(paperId, tag) DO UPDATE SET tagIndex = excluded.tagIndex
	`, pid, tag, value)
	if err != nil {
		return fmt.Errorf("set tag %d#%s: %w", pid, tag, err)
	}
	return nil
}

func deleteTag(ctx context.Context, db sqlx.ExecerContext, pid int, tag string) error {
	_, err := db.ExecContext(ctx, `DELETE FROM PaperTag WHERE paperId = ? AND tag = ?`, pid, tag)
	if err != nil {
		return fmt.Errorf("delete tag %d#%s: %w", pid, tag, err)
	}
	return nil
}
