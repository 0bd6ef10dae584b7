package search

// prepareParam carries context down the term tree before evaluation. A
// param is shared by the terms of one nesting level and copied when a
// deeper level begins, so state set below a negation or disjunction never
// reaches the top.
type prepareParam struct {
	srch      *PaperSearch
	level     int
	thenCount int
	thenTerm  *ThenTerm
}

// nestLevel ranks operator contexts: conjunctions keep the top level, THEN
// is a grouping level, other operators are nested and NOT is negated.
func nestLevel(typ string) int {
	switch typ {
	case "and", "space":
		return 0
	case "then":
		return 1
	case "not":
		return 3
	default:
		return 2
	}
}

func (p *prepareParam) nest(typ string) *prepareParam {
	level := nestLevel(typ)
	if level <= p.level && (level != 1 || p.level != 1) {
		return p
	}
	c := *p
	c.level = level
	return &c
}

// setThenTerm records t as the grouping term when it is the only THEN at
// the grouping level.
func (p *prepareParam) setThenTerm(t *ThenTerm) {
	if p.level > 1 {
		return
	}
	p.thenCount++
	if p.thenCount == 1 {
		p.thenTerm = t
	} else {
		p.thenTerm = nil
	}
}

func (p *prepareParam) toplevel() bool {
	return p.level == 0
}

func (p *prepareParam) wantFieldHighlighter() bool {
	return p.level <= 2
}
