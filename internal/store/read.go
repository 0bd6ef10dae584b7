package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// QueryPapers runs a planned search statement. Statements project
// different columns depending on the query, so scanning ignores columns
// PaperRow does not name, and fields of unprojected columns stay zero.
//
// Returns an empty slice (not nil) if no paper matches.
func (s *Store) QueryPapers(ctx context.Context, stmt querysql.Statement) ([]*ir.PaperRow, error) {
	rows, err := s.db.Unsafe().QueryxContext(ctx, stmt.SQL, stmt.Args...)
	if err != nil {
		return nil, fmt.Errorf("query papers: %w", err)
	}
	defer rows.Close()

	out := []*ir.PaperRow{}
	for rows.Next() {
		var row ir.PaperRow
		if err := rows.StructScan(&row); err != nil {
			return nil, fmt.Errorf("scan paper: %w", err)
		}
		out = append(out, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate papers: %w", err)
	}

	s.logger.Debug("papers queried", "rows", len(out))
	return out, nil
}

// PapersExist reports whether any of ids names a paper, whatever its
// status.
func (s *Store) PapersExist(ctx context.Context, ids []int) (bool, error) {
	if len(ids) == 0 {
		return false, nil
	}
	query, args, err := sqlx.In(`SELECT EXISTS (SELECT 1 FROM Paper WHERE paperId IN (?))`, ids)
	if err != nil {
		return false, fmt.Errorf("papers exist: %w", err)
	}
	var exists bool
	if err := s.db.GetContext(ctx, &exists, s.db.Rebind(query), args...); err != nil {
		return false, fmt.Errorf("papers exist: %w", err)
	}
	return exists, nil
}

// TagExists reports whether any paper carries tag. Tags compare
// case-insensitively.
func (s *Store) TagExists(ctx context.Context, tag string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS (SELECT 1 FROM PaperTag WHERE tag = ?)`, tag)
	if err != nil {
		return false, fmt.Errorf("tag exists %q: %w", tag, err)
	}
	return exists, nil
}

// TagValues returns the value of tag on every paper that carries it.
func (s *Store) TagValues(ctx context.Context, tag string) (map[int]float64, error) {
	var rows []struct {
		PaperID  int     `db:"paperId"`
		TagIndex float64 `db:"tagIndex"`
	}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT paperId, tagIndex
		FROM PaperTag
		WHERE tag = ?
		ORDER BY paperId ASC
	`, tag)
	if err != nil {
		return nil, fmt.Errorf("tag values %q: %w", tag, err)
	}
	out := make(map[int]float64, len(rows))
	for _, r := range rows {
		out[r.PaperID] = r.TagIndex
	}
	return out, nil
}

// PaperIDs returns every paper id in ascending order.
func (s *Store) PaperIDs(ctx context.Context) ([]int, error) {
	ids := []int{}
	if err := s.db.SelectContext(ctx, &ids, `SELECT paperId FROM Paper ORDER BY paperId ASC`); err != nil {
		return nil, fmt.Errorf("paper ids: %w", err)
	}
	return ids, nil
}

const contactColumns = `contactId, email, firstName, lastName, affiliation, roles, contactTags`

// LoadContacts returns the contact directory ordered by contact id.
func (s *Store) LoadContacts(ctx context.Context) ([]*ir.Contact, error) {
	out := []*ir.Contact{}
	err := s.db.SelectContext(ctx, &out, `
		SELECT `+contactColumns+`
		FROM ContactInfo
		ORDER BY contactId ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("load contacts: %w", err)
	}
	return out, nil
}

// ContactByEmail looks up one contact. ok is false when none matches.
func (s *Store) ContactByEmail(ctx context.Context, email string) (*ir.Contact, bool, error) {
	var c ir.Contact
	rows, err := s.db.QueryxContext(ctx, `
		SELECT `+contactColumns+`
		FROM ContactInfo
		WHERE email = ?
	`, email)
	if err != nil {
		return nil, false, fmt.Errorf("contact %q: %w", email, err)
	}
	defer rows.Close()
	if !rows.Next() {
		return nil, false, rows.Err()
	}
	if err := rows.StructScan(&c); err != nil {
		return nil, false, fmt.Errorf("scan contact %q: %w", email, err)
	}
	return &c, true, nil
}

// MatchContacts returns the contacts whose email or name contains text,
// case-insensitively. With pcOnly set only PC members are returned.
func (s *Store) MatchContacts(ctx context.Context, text string, pcOnly bool) ([]*ir.Contact, error) {
	like := "%" + querysql.LikeEscape(strings.TrimSpace(text)) + "%"
	query := `
		SELECT ` + contactColumns + `
		FROM ContactInfo
		WHERE (email LIKE ? ESCAPE '\'
			OR firstName LIKE ? ESCAPE '\'
			OR lastName LIKE ? ESCAPE '\'
			OR (firstName || ' ' || lastName) LIKE ? ESCAPE '\')`
	args := []any{like, like, like, like}
	if pcOnly {
		query += ` AND (roles & ?) != 0`
		args = append(args, ir.RolePC|ir.RoleAdmin|ir.RoleChair)
	}
	query += ` ORDER BY contactId ASC`

	out := []*ir.Contact{}
	if err := s.db.SelectContext(ctx, &out, query, args...); err != nil {
		return nil, fmt.Errorf("match contacts %q: %w", text, err)
	}
	return out, nil
}
