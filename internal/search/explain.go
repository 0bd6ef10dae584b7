package search

import (
	"fmt"

	"github.com/roach88/papersearch/internal/ir"
	"github.com/roach88/papersearch/internal/querysql"
)

// Explain renders the compiled query, limit included, as canonical JSON.
// Identical queries render identically.
func (s *PaperSearch) Explain() ([]byte, error) {
	b, err := ir.MarshalCanonical(s.FullTerm().debug())
	if err != nil {
		return nil, fmt.Errorf("explain %q: %w", s.q, err)
	}
	return b, nil
}

// Statement returns the SQL that fetches candidate rows. ok is false when
// the search cannot match anything and no query would be run.
func (s *PaperSearch) Statement() (querysql.Statement, bool) {
	return s.plan()
}
