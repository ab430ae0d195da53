package parser

// Statement and clause parsing.
//
// Grammar:
//
//	statement    → select | insert | update | delete
//	select       → query
//	query        → [select_clause] from_clause [WHERE expr] [GROUP BY expr {"," expr}]
//	               [HAVING expr] [ORDER BY sort {"," sort}] [LIMIT expr] [OFFSET expr]
//	from_clause  → FROM space {"," space}
//	space        → entity [[AS] alias] {join}
//	join         → CROSS JOIN entity [[AS] alias]
//	             | [INNER | LEFT [OUTER] | RIGHT [OUTER] | FULL [OUTER]] JOIN [FETCH]
//	               path [[AS] alias] [(ON | WITH) expr]
//	insert       → INSERT INTO entity "(" path {"," path} ")" query
//	update       → UPDATE [VERSIONED] entity [[AS] alias] SET path "=" expr {"," ...} [WHERE expr]
//	delete       → DELETE [FROM] entity [[AS] alias] [WHERE expr]

import (
	"fmt"
	"strings"

	"github.com/brimdata/sqm/compiler/ast"
)

// clauseKeywords cannot be used as an alias without "as".
var clauseKeywords = map[string]bool{
	"and": true, "as": true, "asc": true, "between": true, "by": true,
	"cross": true, "desc": true, "else": true, "end": true, "escape": true,
	"fetch": true, "from": true, "full": true, "group": true, "having": true,
	"in": true, "inner": true, "is": true, "join": true, "left": true,
	"like": true, "limit": true, "member": true, "not": true, "nulls": true,
	"of": true, "offset": true, "on": true, "or": true, "order": true,
	"outer": true, "right": true, "select": true, "set": true, "then": true,
	"union": true, "when": true, "where": true, "with": true,
}

type parser struct {
	toks []token
	k    int
	// prevEnd is the end offset of the last consumed token.
	prevEnd int
}

// Error is a parse error at an offset in the query text.
type Error struct {
	Msg string
	Pos int
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s at offset %d", e.Msg, e.Pos)
}

func newParser(src string) (*parser, error) {
	toks, err := scan(src)
	if err != nil {
		se := err.(*scanError)
		return nil, &Error{se.msg, se.pos}
	}
	return &parser{toks: toks}, nil
}

func (p *parser) peek() token {
	return p.toks[p.k]
}

func (p *parser) peekAt(n int) token {
	if p.k+n >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.k+n]
}

func (p *parser) next() token {
	tok := p.toks[p.k]
	if tok.typ != tokEOF {
		p.k++
		p.prevEnd = tok.end
	}
	return tok
}

// match consumes the next token if it is kw.
func (p *parser) match(kw string) bool {
	if p.peek().is(kw) {
		p.next()
		return true
	}
	return false
}

func (p *parser) expect(kw string) error {
	if !p.match(kw) {
		return p.errorf("expected %q but found %s", kw, p.peek())
	}
	return nil
}

func (p *parser) errorf(format string, args ...any) error {
	return &Error{fmt.Sprintf(format, args...), p.peek().pos}
}

func (p *parser) loc(start int) ast.Loc {
	return ast.NewLoc(start, p.prevEnd-1)
}

func (p *parser) parseStatement() (ast.Statement, error) {
	var stmt ast.Statement
	var err error
	switch tok := p.peek(); {
	case tok.is("insert"):
		stmt, err = p.parseInsert()
	case tok.is("update"):
		stmt, err = p.parseUpdate()
	case tok.is("delete"):
		stmt, err = p.parseDelete()
	default:
		start := tok.pos
		var query *ast.QuerySpec
		query, err = p.parseQuery()
		if err == nil {
			stmt = &ast.SelectStatement{Kind: "SelectStatement", Query: query, Loc: p.loc(start)}
		}
	}
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokEOF {
		return nil, p.errorf("unexpected %s", tok)
	}
	return stmt, nil
}

func (p *parser) parseQuery() (*ast.QuerySpec, error) {
	start := p.peek().pos
	query := &ast.QuerySpec{Kind: "QuerySpec"}
	if p.peek().is("select") {
		sel, err := p.parseSelectClause()
		if err != nil {
			return nil, err
		}
		query.Select = sel
	}
	from, err := p.parseFromClause()
	if err != nil {
		return nil, err
	}
	query.From = from
	if p.match("where") {
		if query.Where, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if p.match("group") {
		if err := p.expect("by"); err != nil {
			return nil, err
		}
		if query.GroupBy, err = p.parseExprList(); err != nil {
			return nil, err
		}
	}
	if p.match("having") {
		if query.Having, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if p.match("order") {
		if err := p.expect("by"); err != nil {
			return nil, err
		}
		for {
			item, err := p.parseSortItem()
			if err != nil {
				return nil, err
			}
			query.OrderBy = append(query.OrderBy, item)
			if !p.match(",") {
				break
			}
		}
	}
	if p.match("limit") {
		if query.Limit, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	if p.match("offset") {
		if query.Offset, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	query.Loc = p.loc(start)
	return query, nil
}

func (p *parser) parseSelectClause() (*ast.SelectClause, error) {
	start := p.next().pos
	sel := &ast.SelectClause{Kind: "SelectClause"}
	sel.Distinct = p.match("distinct")
	for {
		item, err := p.parseSelectItem()
		if err != nil {
			return nil, err
		}
		sel.Items = append(sel.Items, item)
		if !p.match(",") {
			break
		}
	}
	sel.Loc = p.loc(start)
	return sel, nil
}

func (p *parser) parseSelectItem() (*ast.SelectItem, error) {
	start := p.peek().pos
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	alias, err := p.parseAlias()
	if err != nil {
		return nil, err
	}
	return &ast.SelectItem{Kind: "SelectItem", Expr: e, Alias: alias, Loc: p.loc(start)}, nil
}

func (p *parser) parseSortItem() (*ast.SortItem, error) {
	start := p.peek().pos
	e, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	item := &ast.SortItem{Kind: "SortItem", Expr: e}
	switch {
	case p.match("asc"):
		item.Order = "asc"
	case p.match("desc"):
		item.Order = "desc"
	}
	if p.match("nulls") {
		switch {
		case p.match("first"):
			item.Nulls = "first"
		case p.match("last"):
			item.Nulls = "last"
		default:
			return nil, p.errorf("expected FIRST or LAST after NULLS")
		}
	}
	item.Loc = p.loc(start)
	return item, nil
}

// parseAlias parses an optional "[as] alias".  Without "as", clause
// keywords end the construct instead of naming an alias.
func (p *parser) parseAlias() (*ast.ID, error) {
	if p.match("as") {
		tok := p.peek()
		if tok.typ != tokIdent {
			return nil, p.errorf("expected alias after AS but found %s", tok)
		}
		return p.parseID(), nil
	}
	if tok := p.peek(); tok.typ == tokIdent && !clauseKeywords[strings.ToLower(tok.text)] {
		return p.parseID(), nil
	}
	return nil, nil
}

func (p *parser) parseID() *ast.ID {
	tok := p.next()
	return &ast.ID{Kind: "ID", Name: tok.text, Loc: ast.NewLoc(tok.pos, tok.end-1)}
}

func (p *parser) parseEntityName() (*ast.EntityName, error) {
	tok := p.peek()
	if tok.typ != tokIdent {
		return nil, p.errorf("expected entity name but found %s", tok)
	}
	start := tok.pos
	parts := []string{p.next().text}
	for p.peek().is(".") && p.peekAt(1).typ == tokIdent {
		p.next()
		parts = append(parts, p.next().text)
	}
	return &ast.EntityName{Kind: "EntityName", Name: strings.Join(parts, "."), Loc: p.loc(start)}, nil
}

func (p *parser) parseFromClause() (*ast.FromClause, error) {
	start := p.peek().pos
	if err := p.expect("from"); err != nil {
		return nil, err
	}
	from := &ast.FromClause{Kind: "FromClause"}
	for {
		space, err := p.parseFromSpace()
		if err != nil {
			return nil, err
		}
		from.Spaces = append(from.Spaces, space)
		if !p.match(",") {
			break
		}
	}
	from.Loc = p.loc(start)
	return from, nil
}

func (p *parser) parseFromSpace() (*ast.FromSpace, error) {
	start := p.peek().pos
	entity, err := p.parseEntityName()
	if err != nil {
		return nil, err
	}
	alias, err := p.parseAlias()
	if err != nil {
		return nil, err
	}
	space := &ast.FromSpace{
		Kind: "FromSpace",
		Root: &ast.Root{Kind: "Root", Entity: entity, Alias: alias, Loc: p.loc(start)},
	}
	for {
		join, err := p.parseJoin()
		if err != nil {
			return nil, err
		}
		if join == nil {
			break
		}
		space.Joins = append(space.Joins, join)
	}
	space.Loc = p.loc(start)
	return space, nil
}

func (p *parser) parseJoin() (ast.Join, error) {
	start := p.peek().pos
	if p.match("cross") {
		if err := p.expect("join"); err != nil {
			return nil, err
		}
		entity, err := p.parseEntityName()
		if err != nil {
			return nil, err
		}
		alias, err := p.parseAlias()
		if err != nil {
			return nil, err
		}
		return &ast.CrossJoin{Kind: "CrossJoin", Entity: entity, Alias: alias, Loc: p.loc(start)}, nil
	}
	typ := "inner"
	switch {
	case p.match("inner"):
	case p.match("left"):
		typ = "left"
		p.match("outer")
	case p.match("right"):
		typ = "right"
		p.match("outer")
	case p.match("full"):
		typ = "full"
		p.match("outer")
	case p.match("outer"):
		typ = "outer"
	case p.peek().is("join"):
	default:
		return nil, nil
	}
	if err := p.expect("join"); err != nil {
		return nil, err
	}
	join := &ast.QualifiedJoin{Kind: "QualifiedJoin", Type: typ}
	join.Fetch = p.match("fetch")
	target, err := p.parsePathOnly()
	if err != nil {
		return nil, err
	}
	join.Target = target
	if join.Alias, err = p.parseAlias(); err != nil {
		return nil, err
	}
	if p.match("on") || p.match("with") {
		if join.On, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	join.Loc = p.loc(start)
	return join, nil
}

// parsePathOnly parses a plain dotted path.
func (p *parser) parsePathOnly() (*ast.Path, error) {
	start := p.peek().pos
	if p.peek().typ != tokIdent {
		return nil, p.errorf("expected path but found %s", p.peek())
	}
	path := &ast.Path{Kind: "Path", Parts: []*ast.ID{p.parseID()}}
	for p.peek().is(".") && p.peekAt(1).typ == tokIdent {
		p.next()
		path.Parts = append(path.Parts, p.parseID())
	}
	path.Loc = p.loc(start)
	return path, nil
}

func (p *parser) parseInsert() (*ast.InsertStatement, error) {
	start := p.next().pos
	if err := p.expect("into"); err != nil {
		return nil, err
	}
	target, err := p.parseEntityName()
	if err != nil {
		return nil, err
	}
	stmt := &ast.InsertStatement{Kind: "InsertStatement", Target: target}
	if err := p.expect("("); err != nil {
		return nil, err
	}
	for {
		path, err := p.parsePathOnly()
		if err != nil {
			return nil, err
		}
		stmt.Fields = append(stmt.Fields, path)
		if !p.match(",") {
			break
		}
	}
	if err := p.expect(")"); err != nil {
		return nil, err
	}
	if stmt.Query, err = p.parseQuery(); err != nil {
		return nil, err
	}
	stmt.Loc = p.loc(start)
	return stmt, nil
}

func (p *parser) parseUpdate() (*ast.UpdateStatement, error) {
	start := p.next().pos
	stmt := &ast.UpdateStatement{Kind: "UpdateStatement"}
	stmt.Versioned = p.match("versioned")
	var err error
	if stmt.Target, err = p.parseEntityName(); err != nil {
		return nil, err
	}
	if stmt.Alias, err = p.parseAlias(); err != nil {
		return nil, err
	}
	if err := p.expect("set"); err != nil {
		return nil, err
	}
	for {
		astart := p.peek().pos
		lhs, err := p.parsePathOnly()
		if err != nil {
			return nil, err
		}
		if err := p.expect("="); err != nil {
			return nil, err
		}
		rhs, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		stmt.Set = append(stmt.Set, &ast.Assignment{Kind: "Assignment", LHS: lhs, RHS: rhs, Loc: p.loc(astart)})
		if !p.match(",") {
			break
		}
	}
	if p.match("where") {
		if stmt.Where, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	stmt.Loc = p.loc(start)
	return stmt, nil
}

func (p *parser) parseDelete() (*ast.DeleteStatement, error) {
	start := p.next().pos
	p.match("from")
	stmt := &ast.DeleteStatement{Kind: "DeleteStatement"}
	var err error
	if stmt.Target, err = p.parseEntityName(); err != nil {
		return nil, err
	}
	if stmt.Alias, err = p.parseAlias(); err != nil {
		return nil, err
	}
	if p.match("where") {
		if stmt.Where, err = p.parseExpr(); err != nil {
			return nil, err
		}
	}
	stmt.Loc = p.loc(start)
	return stmt, nil
}
