package parser

// Expression parsing, loosest binding first:
//
//	expr      → and {OR and}
//	and       → not {AND not}
//	not       → NOT not | predicate
//	predicate → concat [compare concat | [NOT] BETWEEN concat AND concat
//	            | [NOT] IN "(" (query | expr {"," expr}) ")" | [NOT] LIKE concat [ESCAPE concat]
//	            | IS [NOT] (NULL | EMPTY) | [NOT] MEMBER [OF] path]
//	concat    → additive {"||" additive}
//	additive  → term {("+" | "-") term}
//	term      → unary {("*" | "/" | "%") unary}
//	unary     → ("-" | "+") unary | postfix
//	postfix   → primary {"[" expr "]" | "." ident}

import (
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
)

var comparisonOps = map[string]bool{
	"=": true, "<>": true, "!=": true, "<": true, "<=": true, ">": true, ">=": true,
}

func (p *parser) parseExpr() (ast.Expr, error) {
	start := p.peek().pos
	lhs, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.match("or") {
		rhs, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Kind: "BinaryExpr", Op: "or", LHS: lhs, RHS: rhs, Loc: p.loc(start)}
	}
	return lhs, nil
}

func (p *parser) parseExprList() ([]ast.Expr, error) {
	var exprs []ast.Expr
	for {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		exprs = append(exprs, e)
		if !p.match(",") {
			return exprs, nil
		}
	}
}

func (p *parser) parseAnd() (ast.Expr, error) {
	start := p.peek().pos
	lhs, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.match("and") {
		rhs, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Kind: "BinaryExpr", Op: "and", LHS: lhs, RHS: rhs, Loc: p.loc(start)}
	}
	return lhs, nil
}

func (p *parser) parseNot() (ast.Expr, error) {
	start := p.peek().pos
	if p.match("not") {
		operand, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: "not", Operand: operand, Loc: p.loc(start)}, nil
	}
	return p.parsePredicate()
}

func (p *parser) parsePredicate() (ast.Expr, error) {
	start := p.peek().pos
	lhs, err := p.parseConcat()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ == tokOp && comparisonOps[tok.text] {
		p.next()
		rhs, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &ast.BinaryExpr{Kind: "BinaryExpr", Op: tok.text, LHS: lhs, RHS: rhs, Loc: p.loc(start)}, nil
	}
	if p.match("is") {
		not := p.match("not")
		switch {
		case p.match("null"):
			return &ast.IsNullExpr{Kind: "IsNullExpr", Not: not, Expr: lhs, Loc: p.loc(start)}, nil
		case p.match("empty"):
			return &ast.IsEmptyExpr{Kind: "IsEmptyExpr", Not: not, Expr: lhs, Loc: p.loc(start)}, nil
		}
		return nil, p.errorf("expected NULL or EMPTY after IS")
	}
	not := false
	if p.peek().is("not") {
		switch next := p.peekAt(1); {
		case next.is("between"), next.is("in"), next.is("like"), next.is("member"):
			p.next()
			not = true
		}
	}
	switch {
	case p.match("between"):
		lower, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		if err := p.expect("and"); err != nil {
			return nil, err
		}
		upper, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		return &ast.BetweenExpr{Kind: "BetweenExpr", Not: not, Expr: lhs, Lower: lower, Upper: upper, Loc: p.loc(start)}, nil
	case p.match("in"):
		return p.parseIn(start, lhs, not)
	case p.match("like"):
		pattern, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		like := &ast.LikeExpr{Kind: "LikeExpr", Not: not, Expr: lhs, Pattern: pattern}
		if p.match("escape") {
			if like.Escape, err = p.parseConcat(); err != nil {
				return nil, err
			}
		}
		like.Loc = p.loc(start)
		return like, nil
	case p.match("member"):
		p.match("of")
		collection, err := p.parsePathOnly()
		if err != nil {
			return nil, err
		}
		return &ast.MemberOfExpr{Kind: "MemberOfExpr", Not: not, Expr: lhs, Collection: collection, Loc: p.loc(start)}, nil
	}
	return lhs, nil
}

func (p *parser) parseIn(start int, lhs ast.Expr, not bool) (ast.Expr, error) {
	if err := p.expect("("); err != nil {
		return nil, err
	}
	in := &ast.InExpr{Kind: "InExpr", Not: not, Expr: lhs}
	if p.peek().is("select") || p.peek().is("from") {
		query, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		in.Subquery = query
	} else {
		list, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		in.List = list
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	in.Loc = p.loc(start)
	return in, nil
}

func (p *parser) parseConcat() (ast.Expr, error) {
	return p.parseBinary([]string{"||"}, p.parseAdditive)
}

func (p *parser) parseAdditive() (ast.Expr, error) {
	return p.parseBinary([]string{"+", "-"}, p.parseTerm)
}

func (p *parser) parseTerm() (ast.Expr, error) {
	return p.parseBinary([]string{"*", "/", "%"}, p.parseUnary)
}

func (p *parser) parseBinary(ops []string, operand func() (ast.Expr, error)) (ast.Expr, error) {
	start := p.peek().pos
	lhs, err := operand()
	if err != nil {
		return nil, err
	}
	for {
		tok := p.peek()
		if tok.typ != tokOp || !contains(ops, tok.text) {
			return lhs, nil
		}
		p.next()
		rhs, err := operand()
		if err != nil {
			return nil, err
		}
		lhs = &ast.BinaryExpr{Kind: "BinaryExpr", Op: tok.text, LHS: lhs, RHS: rhs, Loc: p.loc(start)}
	}
}

func contains(ops []string, op string) bool {
	for _, o := range ops {
		if o == op {
			return true
		}
	}
	return false
}

func (p *parser) parseUnary() (ast.Expr, error) {
	start := p.peek().pos
	if p.match("-") || p.match("+") {
		op := p.toks[p.k-1].text
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return &ast.UnaryExpr{Kind: "UnaryExpr", Op: op, Operand: operand, Loc: p.loc(start)}, nil
	}
	return p.parsePostfix()
}

func (p *parser) parsePostfix() (ast.Expr, error) {
	start := p.peek().pos
	e, err := p.parsePrimary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.peek().is("["):
			p.next()
			index, err := p.parseExpr()
			if err != nil {
				return nil, err
			}
			if err := p.expect("]"); err != nil {
				return nil, err
			}
			e = &ast.IndexExpr{Kind: "IndexExpr", Expr: e, Index: index, Loc: p.loc(start)}
		case p.peek().is(".") && p.peekAt(1).typ == tokIdent:
			p.next()
			id := p.parseID()
			if path, ok := e.(*ast.Path); ok {
				path.Parts = append(path.Parts, id)
				path.Loc = p.loc(start)
			} else {
				e = &ast.Path{Kind: "Path", Head: e, Parts: []*ast.ID{id}, Loc: p.loc(start)}
			}
		default:
			return e, nil
		}
	}
}

func (p *parser) parsePrimary() (ast.Expr, error) {
	tok := p.peek()
	start := tok.pos
	switch tok.typ {
	case tokString:
		p.next()
		return &ast.Literal{Kind: "Literal", Type: "string", Text: tok.text, Loc: p.loc(start)}, nil
	case tokNumber:
		p.next()
		return &ast.Literal{Kind: "Literal", Type: tok.lit, Text: tok.text, Loc: p.loc(start)}, nil
	case tokNamedParam:
		p.next()
		return &ast.NamedParam{Kind: "NamedParam", Name: tok.text, Loc: p.loc(start)}, nil
	case tokPositionalParam:
		p.next()
		return &ast.PositionalParam{Kind: "PositionalParam", Position: tok.text, Loc: p.loc(start)}, nil
	case tokOp:
		switch tok.text {
		case "(":
			return p.parseParen()
		case "{":
			return p.parseTemporal()
		}
		return nil, p.errorf("unexpected %s", tok)
	case tokEOF:
		return nil, p.errorf("unexpected end of input")
	}
	switch strings.ToLower(tok.text) {
	case "true", "false":
		p.next()
		return &ast.Literal{Kind: "Literal", Type: "boolean", Text: strings.ToLower(tok.text), Loc: p.loc(start)}, nil
	case "null":
		p.next()
		return &ast.Literal{Kind: "Literal", Type: "null", Text: "null", Loc: p.loc(start)}, nil
	case "case":
		return p.parseCase()
	case "new":
		if p.peekAt(1).typ == tokIdent {
			return p.parseNew()
		}
	case "cast":
		if p.peekAt(1).is("(") {
			return p.parseCast()
		}
	case "trim":
		if p.peekAt(1).is("(") {
			return p.parseTrim()
		}
	case "exists":
		if p.peekAt(1).is("(") {
			p.next()
			p.next()
			query, err := p.parseQuery()
			if err != nil {
				return nil, err
			}
			if err := p.expect(")"); err != nil {
				return nil, err
			}
			return &ast.ExistsExpr{Kind: "ExistsExpr", Subquery: query, Loc: p.loc(start)}, nil
		}
	case "current_date", "current_time", "current_timestamp":
		if !p.peekAt(1).is("(") {
			p.next()
			return &ast.CallExpr{Kind: "CallExpr", Name: strings.ToLower(tok.text), Loc: p.loc(start)}, nil
		}
	}
	if clauseKeywords[strings.ToLower(tok.text)] && !p.peekAt(1).is("(") {
		return nil, p.errorf("unexpected %s", tok)
	}
	if p.peekAt(1).is("(") {
		return p.parseCall()
	}
	p.next()
	id := &ast.ID{Kind: "ID", Name: tok.text, Loc: ast.NewLoc(tok.pos, tok.end-1)}
	return &ast.Path{Kind: "Path", Parts: []*ast.ID{id}, Loc: p.loc(start)}, nil
}

func (p *parser) parseParen() (ast.Expr, error) {
	start := p.next().pos
	if p.peek().is("select") || p.peek().is("from") {
		query, err := p.parseQuery()
		if err != nil {
			return nil, err
		}
		if err := p.expect(")"); err != nil {
			return nil, err
		}
		return &ast.SubqueryExpr{Kind: "SubqueryExpr", Query: query, Loc: p.loc(start)}, nil
	}
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return e, nil
}

// parseTemporal parses the escape syntax {d 'yyyy-mm-dd'}, {t 'hh:mm:ss'}
// and {ts 'yyyy-mm-dd hh:mm:ss'}.
func (p *parser) parseTemporal() (ast.Expr, error) {
	start := p.next().pos
	var typ string
	switch {
	case p.match("d"):
		typ = "date"
	case p.match("t"):
		typ = "time"
	case p.match("ts"):
		typ = "timestamp"
	default:
		return nil, p.errorf("expected d, t or ts in temporal literal")
	}
	tok := p.peek()
	if tok.typ != tokString {
		return nil, p.errorf("expected string in temporal literal but found %s", tok)
	}
	p.next()
	if err := p.expect("}"); err != nil {
		return nil, err
	}
	return &ast.Literal{Kind: "Literal", Type: typ, Text: tok.text, Loc: p.loc(start)}, nil
}

func (p *parser) parseCase() (ast.Expr, error) {
	start := p.next().pos
	c := &ast.CaseExpr{Kind: "CaseExpr"}
	if !p.peek().is("when") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Expr = e
	}
	for p.peek().is("when") {
		wstart := p.next().pos
		cond, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if err := p.expect("then"); err != nil {
			return nil, err
		}
		then, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Whens = append(c.Whens, &ast.When{Kind: "When", Cond: cond, Then: then, Loc: p.loc(wstart)})
	}
	if len(c.Whens) == 0 {
		return nil, p.errorf("expected WHEN in CASE expression")
	}
	if p.match("else") {
		e, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		c.Else = e
	}
	if err := p.expect("end"); err != nil {
		return nil, err
	}
	c.Loc = p.loc(start)
	return c, nil
}

func (p *parser) parseNew() (ast.Expr, error) {
	start := p.next().pos
	target, err := p.parseEntityName()
	if err != nil {
		return nil, err
	}
	n := &ast.NewExpr{Kind: "NewExpr", Target: target.Name}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		n.Args = append(n.Args, item)
		if !p.match(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	n.Loc = p.loc(start)
	return n, nil
}

func (p *parser) parseCast() (ast.Expr, error) {
	start := p.next().pos
	p.next()
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if err := p.expect("as"); err != nil {
		return nil, err
	}
	tok := p.peek()
	if tok.typ != tokIdent {
		return nil, p.errorf("expected type name but found %s", tok)
	}
	p.next()
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	return &ast.CastExpr{Kind: "CastExpr", Expr: e, Type: tok.text, Loc: p.loc(start)}, nil
}

// parseTrim parses "trim([[leading|trailing|both] [char] from] expr)".
func (p *parser) parseTrim() (ast.Expr, error) {
	start := p.next().pos
	p.next()
	trim := &ast.TrimExpr{Kind: "TrimExpr"}
	for _, spec := range []string{"leading", "trailing", "both"} {
		if p.match(spec) {
			trim.Spec = spec
			break
		}
	}
	if !p.peek().is("from") {
		e, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		trim.Expr = e
	}
	if p.match("from") {
		trim.Char = trim.Expr
		e, err := p.parseConcat()
		if err != nil {
			return nil, err
		}
		trim.Expr = e
	} else if trim.Spec != "" || trim.Expr == nil {
		return nil, p.errorf("expected FROM in TRIM")
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	trim.Loc = p.loc(start)
	return trim, nil
}

func (p *parser) parseCall() (ast.Expr, error) {
	tok := p.next()
	start := tok.pos
	p.next()
	call := &ast.CallExpr{Kind: "CallExpr", Name: tok.text}
	switch {
	case p.peek().is("*"):
		p.next()
		call.Star = true
	case p.peek().is(")"):
	default:
		call.Distinct = p.match("distinct")
		args, err := p.parseExprList()
		if err != nil {
			return nil, err
		}
		call.Args = args
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	call.Loc = p.loc(start)
	return call, nil
}
