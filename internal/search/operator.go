package search

import (
	"strings"
	"sync"
)

// Operator is one entry of the operator table. Higher precedence binds
// tighter.
type Operator struct {
	Op         string
	Unary      bool
	Precedence int
	// Opinfo carries an operator argument, such as the color in
	// "HIGHLIGHT:pink".
	Opinfo string
}

// Unparse returns the canonical spelling of the operator.
func (o *Operator) Unparse() string {
	x := strings.ToUpper(o.Op)
	if o.Opinfo != "" {
		x += ":" + o.Opinfo
	}
	return x
}

var (
	operatorsOnce sync.Once
	operators     map[string]*Operator
)

func loadOperators() {
	operators = make(map[string]*Operator)
	add := func(op string, unary bool, prec int, names ...string) {
		o := &Operator{Op: op, Unary: unary, Precedence: prec}
		for _, n := range names {
			operators[n] = o
		}
	}
	add("(", true, 0, "(")
	add(")", true, 0, ")")
	add("not", true, 8, "NOT", "-", "!")
	add("+", true, 8, "+")
	add("space", false, 7, "SPACE")
	add("and", false, 6, "AND", "&", "&&")
	add("xor", false, 5, "XOR", "^")
	add("or", false, 4, "OR", "|", "||")
	add("or", false, 3, "SPACEOR")
	add("then", false, 2, "THEN")
	add("highlight", false, 1, "HIGHLIGHT")
}

// LookupOperator returns the operator spelled name (upper case for word
// operators), or nil. The table is built once and never modified; callers
// that need an Opinfo must copy the result.
func LookupOperator(name string) *Operator {
	operatorsOnce.Do(loadOperators)
	return operators[name]
}
