package semantic

import (
	"fmt"
	"regexp"
	"unicode/utf8"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
	"github.com/shellyln/go-sql-like-expr/likeexpr"
)

// predicate resolves an expression used as a condition.  A boolean-valued
// expression that is not itself a predicate is wrapped in a BooleanExpr.
func (a *analyzer) predicate(sc scope, e ast.Expr) (sqm.Predicate, error) {
	x, err := a.expr(sc, e)
	if err != nil {
		return nil, err
	}
	if p, ok := x.(sqm.Predicate); ok {
		return p, nil
	}
	t := x.Type()
	if t == nil {
		imply(x, a.basic(metamodel.HostBoolean))
	} else if b := basicOf(t); b == nil || b.Host != metamodel.HostBoolean {
		return nil, semanticErrorf(e, "expression of type %s is not a predicate", t.TypeName())
	}
	return &sqm.BooleanExpr{Node: e, Expr: x}, nil
}

func (a *analyzer) optionalPredicate(sc scope, e ast.Expr) (sqm.Predicate, error) {
	if e == nil {
		return nil, nil
	}
	return a.predicate(sc, e)
}

func (a *analyzer) comparison(sc scope, e *ast.BinaryExpr) (sqm.Expr, error) {
	lhs, err := a.expr(sc, e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := a.expr(sc, e.RHS)
	if err != nil {
		return nil, err
	}
	imply(lhs, rhs.Type())
	imply(rhs, lhs.Type())
	op := e.Op
	if op == "!=" {
		op = "<>"
	}
	return &sqm.Comparison{Node: e, Op: op, LHS: lhs, RHS: rhs}, nil
}

func (a *analyzer) predicateExpr(sc scope, e ast.Expr) (sqm.Expr, error) {
	switch e := e.(type) {
	case *ast.BetweenExpr:
		x, err := a.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		lower, err := a.expr(sc, e.Lower)
		if err != nil {
			return nil, err
		}
		upper, err := a.expr(sc, e.Upper)
		if err != nil {
			return nil, err
		}
		propagate(x, lower, upper)
		return &sqm.Between{Node: e, Not: e.Not, Expr: x, Lower: lower, Upper: upper}, nil
	case *ast.InExpr:
		return a.in(sc, e)
	case *ast.LikeExpr:
		return a.like(sc, e)
	case *ast.IsNullExpr:
		x, err := a.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		return &sqm.IsNull{Node: e, Not: e.Not, Expr: x}, nil
	case *ast.IsEmptyExpr:
		collection, err := a.pluralPath(sc, e.Expr, "is empty")
		if err != nil {
			return nil, err
		}
		return &sqm.IsEmpty{Node: e, Not: e.Not, Collection: collection}, nil
	case *ast.MemberOfExpr:
		x, err := a.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		collection, err := a.pluralPath(sc, e.Collection, "member of")
		if err != nil {
			return nil, err
		}
		imply(x, collection.Attribute.ElementType)
		return &sqm.MemberOf{Node: e, Not: e.Not, Expr: x, Collection: collection}, nil
	case *ast.ExistsExpr:
		sub, err := a.subquery(sc, e, e.Subquery)
		if err != nil {
			return nil, err
		}
		return &sqm.Exists{Node: e, Not: e.Not, Subquery: sub}, nil
	}
	return nil, &ParsingError{Msg: fmt.Sprintf("unexpected predicate %T", e), Loc: locOf(e)}
}

// in resolves an in predicate.  A parameter that is the only element of
// the list may be bound to several values.
func (a *analyzer) in(sc scope, e *ast.InExpr) (sqm.Expr, error) {
	x, err := a.expr(sc, e.Expr)
	if err != nil {
		return nil, err
	}
	if e.Subquery != nil {
		sub, err := a.subquery(sc, e, e.Subquery)
		if err != nil {
			return nil, err
		}
		imply(x, sub.Type())
		return &sqm.InSubquery{Node: e, Not: e.Not, Expr: x, Subquery: sub}, nil
	}
	if len(e.List) == 0 {
		return nil, semanticErrorf(e, "in list is empty")
	}
	listScope := sc.allowMultiValued(len(e.List) == 1)
	list, err := a.exprs(listScope, e.List)
	if err != nil {
		return nil, err
	}
	propagate(append([]sqm.Expr{x}, list...)...)
	return &sqm.InList{Node: e, Not: e.Not, Expr: x, List: list}, nil
}

func (a *analyzer) like(sc scope, e *ast.LikeExpr) (sqm.Expr, error) {
	str := a.basic(metamodel.HostString)
	x, err := a.expr(sc, e.Expr)
	if err != nil {
		return nil, err
	}
	pattern, err := a.expr(sc, e.Pattern)
	if err != nil {
		return nil, err
	}
	imply(x, str)
	imply(pattern, str)
	out := &sqm.Like{Node: e, Not: e.Not, Expr: x, Pattern: pattern}
	var escape rune
	if e.Escape != nil {
		if out.Escape, err = a.expr(sc, e.Escape); err != nil {
			return nil, err
		}
		imply(out.Escape, a.basic(metamodel.HostCharacter))
		if lit, ok := out.Escape.(*sqm.Literal); ok {
			if lit.Kind != sqm.StringLiteral && lit.Kind != sqm.CharacterLiteral || utf8.RuneCountInString(lit.Text) != 1 {
				return nil, semanticErrorf(e.Escape, "like escape must be a single character")
			}
			escape, _ = utf8.DecodeRuneInString(lit.Text)
		}
	}
	if lit, ok := pattern.(*sqm.Literal); ok && lit.Kind == sqm.StringLiteral {
		re := "(?s)" + likeexpr.ToRegexp(lit.Text, escape, false)
		if _, err := regexp.Compile(re); err != nil {
			return nil, semanticErrorf(e.Pattern, "invalid like pattern %q: %s", lit.Text, err)
		}
		out.PatternRegexp = re
	}
	return out, nil
}
