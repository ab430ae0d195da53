package semantic

import (
	"fmt"

	"github.com/brimdata/sqm/compiler/ast"
	"github.com/brimdata/sqm/compiler/semantic/sqm"
	"github.com/brimdata/sqm/metamodel"
)

var arithmeticOps = map[string]metamodel.ArithmeticOperator{
	"+": metamodel.Add,
	"-": metamodel.Subtract,
	"*": metamodel.Multiply,
	"/": metamodel.Divide,
	"%": metamodel.Modulo,
}

func (a *analyzer) expr(sc scope, e ast.Expr) (sqm.Expr, error) {
	switch e := e.(type) {
	case nil:
		return nil, &ParsingError{Msg: "missing expression", Loc: locOf(nil)}
	case *ast.Path:
		return a.path(sc, e)
	case *ast.Literal:
		return a.literal(e)
	case *ast.NamedParam:
		return a.namedParam(sc, e)
	case *ast.PositionalParam:
		return a.positionalParam(sc, e)
	case *ast.BinaryExpr:
		return a.binary(sc, e)
	case *ast.UnaryExpr:
		return a.unary(sc, e)
	case *ast.BetweenExpr, *ast.InExpr, *ast.LikeExpr, *ast.IsNullExpr,
		*ast.IsEmptyExpr, *ast.MemberOfExpr, *ast.ExistsExpr:
		return a.predicateExpr(sc, e)
	case *ast.CaseExpr:
		return a.caseExpr(sc, e)
	case *ast.CallExpr:
		return a.call(sc, e)
	case *ast.TrimExpr:
		return a.trim(sc, e)
	case *ast.CastExpr:
		operand, err := a.expr(sc, e.Expr)
		if err != nil {
			return nil, err
		}
		target := a.ctx.model.ResolveCastTargetType(e.Type)
		if target == nil {
			return nil, semanticErrorf(e, "unknown cast target type %q", e.Type)
		}
		return &sqm.Cast{Node: e, Expr: operand, Target: target}, nil
	case *ast.SubqueryExpr:
		return a.subquery(sc, e, e.Query)
	case *ast.NewExpr:
		return nil, semanticErrorf(e, "dynamic instantiation is only allowed in the select clause")
	case *ast.IndexExpr:
		return a.indexAccess(sc, e)
	}
	return nil, &ParsingError{Msg: fmt.Sprintf("unexpected expression %T", e), Loc: locOf(e)}
}

func (a *analyzer) exprs(sc scope, exprs []ast.Expr) ([]sqm.Expr, error) {
	out := make([]sqm.Expr, 0, len(exprs))
	for _, e := range exprs {
		x, err := a.expr(sc, e)
		if err != nil {
			return nil, err
		}
		out = append(out, x)
	}
	return out, nil
}

func (a *analyzer) binary(sc scope, e *ast.BinaryExpr) (sqm.Expr, error) {
	switch e.Op {
	case "and", "or":
		lhs, err := a.predicate(sc, e.LHS)
		if err != nil {
			return nil, err
		}
		rhs, err := a.predicate(sc, e.RHS)
		if err != nil {
			return nil, err
		}
		return &sqm.Junction{Node: e, Op: e.Op, LHS: lhs, RHS: rhs}, nil
	case "=", "<>", "!=", "<", "<=", ">", ">=":
		return a.comparison(sc, e)
	}
	lhs, err := a.expr(sc, e.LHS)
	if err != nil {
		return nil, err
	}
	rhs, err := a.expr(sc, e.RHS)
	if err != nil {
		return nil, err
	}
	if e.Op == "||" {
		str := a.basic(metamodel.HostString)
		imply(lhs, str)
		imply(rhs, str)
		return &sqm.Concat{Node: e, LHS: lhs, RHS: rhs, Inferred: str}, nil
	}
	op, ok := arithmeticOps[e.Op]
	if !ok {
		return nil, &ParsingError{Msg: fmt.Sprintf("unknown binary operator %q", e.Op), Loc: locOf(e)}
	}
	propagate(lhs, rhs)
	lt, err := numeric(e.LHS, lhs)
	if err != nil {
		return nil, err
	}
	rt, err := numeric(e.RHS, rhs)
	if err != nil {
		return nil, err
	}
	var typ metamodel.Type
	if lt != nil || rt != nil || op == metamodel.Divide {
		typ = typeOf(a.ctx.model.ResolveArithmeticResultType(lt, rt, op))
	}
	return &sqm.BinaryArithmetic{Node: e, Op: op, LHS: lhs, RHS: rhs, Inferred: typ}, nil
}

func (a *analyzer) unary(sc scope, e *ast.UnaryExpr) (sqm.Expr, error) {
	if e.Op == "not" {
		pred, err := a.predicate(sc, e.Operand)
		if err != nil {
			return nil, err
		}
		return &sqm.Negated{Node: e, Pred: pred}, nil
	}
	operand, err := a.expr(sc, e.Operand)
	if err != nil {
		return nil, err
	}
	b, err := numeric(e.Operand, operand)
	if err != nil {
		return nil, err
	}
	typ := typeOf(metamodel.UnaryResultType(b, a.basicFunc))
	return &sqm.UnaryOperation{Node: e, Op: e.Op, Operand: operand, Inferred: typ}, nil
}

func (a *analyzer) caseExpr(sc scope, e *ast.CaseExpr) (sqm.Expr, error) {
	var operand sqm.Expr
	if e.Expr != nil {
		var err error
		if operand, err = a.expr(sc, e.Expr); err != nil {
			return nil, err
		}
	}
	whens := make([]sqm.CaseWhen, 0, len(e.Whens))
	results := make([]sqm.Expr, 0, len(e.Whens)+1)
	for _, w := range e.Whens {
		var cond sqm.Expr
		var err error
		if operand != nil {
			cond, err = a.expr(sc, w.Cond)
			if err == nil {
				propagate(operand, cond)
			}
		} else {
			cond, err = a.predicate(sc, w.Cond)
		}
		if err != nil {
			return nil, err
		}
		then, err := a.expr(sc, w.Then)
		if err != nil {
			return nil, err
		}
		whens = append(whens, sqm.CaseWhen{When: cond, Then: then})
		results = append(results, then)
	}
	var els sqm.Expr
	if e.Else != nil {
		var err error
		if els, err = a.expr(sc, e.Else); err != nil {
			return nil, err
		}
		results = append(results, els)
	}
	typ := propagate(results...)
	if operand != nil {
		return &sqm.CaseSimple{Node: e, Operand: operand, Whens: whens, Else: els, Inferred: typ}, nil
	}
	return &sqm.CaseSearched{Node: e, Whens: whens, Else: els, Inferred: typ}, nil
}

func (a *analyzer) trim(sc scope, e *ast.TrimExpr) (sqm.Expr, error) {
	str := a.basic(metamodel.HostString)
	spec := e.Spec
	if spec == "" {
		spec = "both"
	}
	out := &sqm.Trim{Node: e, Spec: spec, Inferred: str}
	if e.Char != nil {
		char, err := a.expr(sc, e.Char)
		if err != nil {
			return nil, err
		}
		if lit, ok := char.(*sqm.Literal); ok && lit.Kind == sqm.StringLiteral {
			if n := len([]rune(lit.Text)); n != 1 {
				return nil, semanticErrorf(e.Char, "trim character must be a single character")
			}
		}
		imply(char, a.basic(metamodel.HostCharacter))
		out.Char = char
	}
	operand, err := a.expr(sc, e.Expr)
	if err != nil {
		return nil, err
	}
	imply(operand, str)
	out.Expr = operand
	return out, nil
}

func (a *analyzer) subquery(sc scope, n ast.Node, spec *ast.QuerySpec) (*sqm.Subquery, error) {
	q, err := a.query(sc, n, spec, true)
	if err != nil {
		return nil, err
	}
	out := &sqm.Subquery{Node: n, Query: q}
	if sels := q.Select.Selections; len(sels) == 1 {
		out.Inferred = sels[0].Expr.Type()
	}
	return out, nil
}
