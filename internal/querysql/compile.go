package querysql

import (
	"strings"
)

// Statement is a compiled search query.
type Statement struct {
	SQL  string
	Args []any
}

// Compile assembles the statement for filter. Columns come first in
// registration order, then joins in registration order, then the filter.
// Arguments follow the same order as their placeholders.
//
// MANDATORY: Every statement groups and orders by Paper.paperId.
func (q *QueryInfo) Compile(filter Expr) Statement {
	var b strings.Builder
	var args []any

	b.WriteString("select ")
	if len(q.columns) == 0 {
		b.WriteString("Paper.paperId paperId")
	}
	for i, c := range q.columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(c.expr.SQL)
		b.WriteByte(' ')
		b.WriteString(c.name)
		args = append(args, c.expr.Args...)
	}

	b.WriteString("\n    from ")
	for _, t := range q.tables {
		if t.join == nil {
			b.WriteString(t.alias)
			continue
		}
		joiners := []string{t.alias + ".paperId=Paper.paperId"}
		for _, cond := range t.join.Conds {
			if cond.SQL == "" {
				continue
			}
			joiners = append(joiners, "("+strings.ReplaceAll(cond.SQL, "{}", t.alias)+")")
			args = append(args, cond.Args...)
		}
		b.WriteString("\n    ")
		b.WriteString(string(t.join.Type))
		b.WriteByte(' ')
		b.WriteString(t.join.Table)
		b.WriteString(" as ")
		b.WriteString(t.alias)
		b.WriteString(" on (")
		b.WriteString(strings.Join(joiners, "\n        and "))
		b.WriteByte(')')
	}

	where := filter
	if where.SQL == "" {
		where = True
	}
	b.WriteString("\n    where ")
	b.WriteString(where.SQL)
	args = append(args, where.Args...)

	b.WriteString("\n    group by Paper.paperId\n    order by Paper.paperId")
	return Statement{SQL: b.String(), Args: args}
}
