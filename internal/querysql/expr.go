package querysql

import (
	"strings"
)

// Expr is a parameterized SQL fragment. Values are never interpolated into
// SQL; they travel in Args, one per "?" placeholder, in textual order.
type Expr struct {
	SQL  string
	Args []any
}

// True and False are the constant predicates. Combinators short-circuit on
// them so that generated WHERE clauses stay small.
var (
	True  = Expr{SQL: "true"}
	False = Expr{SQL: "false"}
)

// Raw builds an expression from SQL text and its arguments.
func Raw(sql string, args ...any) Expr {
	return Expr{SQL: sql, Args: args}
}

// IsTrue reports whether e is the constant true.
func (e Expr) IsTrue() bool {
	return e.SQL == "true"
}

// IsFalse reports whether e is the constant false.
func (e Expr) IsFalse() bool {
	return e.SQL == "false"
}

// And joins exprs with "and". True operands drop out; any False operand
// makes the result False.
func And(exprs ...Expr) Expr {
	return join(exprs, " and ", True, False)
}

// Or joins exprs with "or". False operands drop out; any True operand makes
// the result True.
func Or(exprs ...Expr) Expr {
	return join(exprs, " or ", False, True)
}

func join(exprs []Expr, sep string, identity, absorb Expr) Expr {
	var parts []Expr
	for _, e := range exprs {
		if e.SQL == absorb.SQL {
			return absorb
		}
		if e.SQL != identity.SQL && e.SQL != "" {
			parts = append(parts, e)
		}
	}
	switch len(parts) {
	case 0:
		return identity
	case 1:
		return parts[0]
	}
	var b strings.Builder
	var args []any
	b.WriteByte('(')
	for i, p := range parts {
		if i > 0 {
			b.WriteString(sep)
		}
		b.WriteByte('(')
		b.WriteString(p.SQL)
		b.WriteByte(')')
		args = append(args, p.Args...)
	}
	b.WriteByte(')')
	return Expr{SQL: b.String(), Args: args}
}

// Not negates e.
func Not(e Expr) Expr {
	switch {
	case e.IsTrue():
		return False
	case e.IsFalse():
		return True
	}
	return Expr{SQL: "not (" + e.SQL + ")", Args: e.Args}
}

// InInts builds "column in (?, ...)". An empty list is False.
func InInts(column string, vals []int) Expr {
	if len(vals) == 0 {
		return False
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return Expr{SQL: column + " in (" + placeholders(len(vals)) + ")", Args: args}
}

// InStrings builds "column in (?, ...)". An empty list is False.
func InStrings(column string, vals []string) Expr {
	if len(vals) == 0 {
		return False
	}
	args := make([]any, len(vals))
	for i, v := range vals {
		args[i] = v
	}
	return Expr{SQL: column + " in (" + placeholders(len(vals)) + ")", Args: args}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// LikeEscape escapes s for use inside a LIKE pattern with escape '\'.
func LikeEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
